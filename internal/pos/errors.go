package pos

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation: entrada malformada (ej. efectivo inicial negativo).
	ErrValidation = errors.New("entrada inválida")
	// ErrConflict: el estado existente contradice la operación (ej. ya hay un turno abierto).
	ErrConflict = errors.New("conflicto con el estado actual")
	// ErrPrecondition: invariante del flujo violada (carrito vacío, sin turno abierto).
	ErrPrecondition = errors.New("precondición no cumplida")
	// ErrShiftClosed: el turno ya fue cerrado.
	ErrShiftClosed = errors.New("el turno ya está cerrado")
	// ErrShiftLedgerCorrupt: más de un turno abierto para el mismo trabajador.
	// Es una violación de integridad de datos; nunca se resuelve en silencio.
	ErrShiftLedgerCorrupt = errors.New("más de un turno abierto para el trabajador")
	// ErrStoreUnavailable: fallo de infraestructura hablando con la base de datos.
	ErrStoreUnavailable = errors.New("almacenamiento no disponible")
)

// InsufficientStockError indica qué producto no tiene stock suficiente.
type InsufficientStockError struct {
	ProductID uint
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %q: disponible %d, solicitado %d",
		e.Name, e.Available, e.Requested)
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
