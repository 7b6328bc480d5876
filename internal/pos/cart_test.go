package pos

import (
	"errors"
	"testing"
)

func TestCartAddAndTotals(t *testing.T) {
	cart := NewCart()

	pan := CartProduct{ID: 1, Name: "Pan", Price: 1500, Stock: 10}
	leche := CartProduct{ID: 2, Name: "Leche", Price: 990, Stock: 4}

	if err := cart.Add(pan, 2); err != nil {
		t.Fatalf("Add pan: %v", err)
	}
	if err := cart.Add(leche, 1); err != nil {
		t.Fatalf("Add leche: %v", err)
	}
	// Agregar el mismo producto suma sobre la línea existente.
	if err := cart.Add(pan, 1); err != nil {
		t.Fatalf("Add pan otra vez: %v", err)
	}

	if got := cart.TotalItems(); got != 4 {
		t.Errorf("TotalItems = %d, esperado 4", got)
	}
	if got := cart.TotalPrice(); got != 3*1500+990 {
		t.Errorf("TotalPrice = %d, esperado %d", got, 3*1500+990)
	}
	if len(cart.Lines()) != 2 {
		t.Errorf("Lines = %d, esperado 2", len(cart.Lines()))
	}
}

func TestCartAddRejectsOverSnapshot(t *testing.T) {
	cart := NewCart()
	p := CartProduct{ID: 1, Name: "Pan", Price: 1500, Stock: 3}

	if err := cart.Add(p, 3); err != nil {
		t.Fatalf("Add hasta el stock: %v", err)
	}

	err := cart.Add(p, 1)
	var insuf *InsufficientStockError
	if !errors.As(err, &insuf) {
		t.Fatalf("esperaba InsufficientStockError, got %v", err)
	}
	if insuf.ProductID != 1 || insuf.Available != 3 || insuf.Requested != 4 {
		t.Errorf("detalle del error incorrecto: %+v", insuf)
	}

	// El rechazo no modifica la línea.
	if got := cart.TotalItems(); got != 3 {
		t.Errorf("TotalItems = %d tras rechazo, esperado 3", got)
	}
}

func TestCartAddRejectsInvalidQuantity(t *testing.T) {
	cart := NewCart()
	p := CartProduct{ID: 1, Name: "Pan", Price: 1500, Stock: 3}

	if err := cart.Add(p, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("Add qty 0: esperaba ErrValidation, got %v", err)
	}
	if err := cart.Add(p, -2); !errors.Is(err, ErrValidation) {
		t.Errorf("Add qty -2: esperaba ErrValidation, got %v", err)
	}
}

func TestCartSetQuantity(t *testing.T) {
	cart := NewCart()
	p := CartProduct{ID: 7, Name: "Café", Price: 4990, Stock: 8}

	if err := cart.Add(p, 2); err != nil {
		t.Fatal(err)
	}

	if err := cart.SetQuantity(7, 5); err != nil {
		t.Fatalf("SetQuantity 5: %v", err)
	}
	if got := cart.TotalItems(); got != 5 {
		t.Errorf("TotalItems = %d, esperado 5", got)
	}
	if got := cart.TotalPrice(); got != 5*4990 {
		t.Errorf("TotalPrice = %d, esperado %d", got, 5*4990)
	}

	// Por encima del stock conocido se rechaza.
	var insuf *InsufficientStockError
	if err := cart.SetQuantity(7, 9); !errors.As(err, &insuf) {
		t.Errorf("SetQuantity 9: esperaba InsufficientStockError, got %v", err)
	}

	// Cero elimina la línea.
	if err := cart.SetQuantity(7, 0); err != nil {
		t.Fatalf("SetQuantity 0: %v", err)
	}
	if !cart.Empty() {
		t.Error("el carrito debería quedar vacío")
	}
	if got := cart.TotalPrice(); got != 0 {
		t.Errorf("TotalPrice = %d tras vaciar, esperado 0", got)
	}

	// Producto inexistente.
	if err := cart.SetQuantity(99, 1); !errors.Is(err, ErrValidation) {
		t.Errorf("SetQuantity producto desconocido: esperaba ErrValidation, got %v", err)
	}
}

func TestCartRemoveAndClear(t *testing.T) {
	cart := NewCart()
	a := CartProduct{ID: 1, Name: "A", Price: 100, Stock: 10}
	b := CartProduct{ID: 2, Name: "B", Price: 200, Stock: 10}

	_ = cart.Add(a, 1)
	_ = cart.Add(b, 2)

	cart.Remove(1)
	if got := cart.TotalItems(); got != 2 {
		t.Errorf("TotalItems tras Remove = %d, esperado 2", got)
	}

	cart.Clear()
	if !cart.Empty() || cart.TotalItems() != 0 || cart.TotalPrice() != 0 {
		t.Error("Clear debe dejar el carrito vacío")
	}
}

func TestCartLinesSortedByProduct(t *testing.T) {
	cart := NewCart()
	_ = cart.Add(CartProduct{ID: 30, Name: "C", Price: 1, Stock: 9}, 1)
	_ = cart.Add(CartProduct{ID: 10, Name: "A", Price: 1, Stock: 9}, 1)
	_ = cart.Add(CartProduct{ID: 20, Name: "B", Price: 1, Stock: 9}, 1)

	lines := cart.Lines()
	for i := 1; i < len(lines); i++ {
		if lines[i-1].Product.ID >= lines[i].Product.ID {
			t.Fatalf("líneas fuera de orden: %v", lines)
		}
	}
}
