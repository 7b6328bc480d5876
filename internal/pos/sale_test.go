package pos

import (
	"errors"
	"testing"

	"tienda-backend/internal/models"
)

func openShiftFor(t *testing.T, shifts *ShiftService, fx fixture, float int64) *models.Shift {
	t.Helper()
	shift, err := shifts.Open(fx.worker.ID, fx.branch.ID, float)
	if err != nil {
		t.Fatalf("Open shift: %v", err)
	}
	return shift
}

func cartWith(t *testing.T, fx fixture, qty, knownStock int) *Cart {
	t.Helper()
	cart := NewCart()
	snapshot := CartProduct{
		ID:    fx.product.ID,
		Name:  fx.product.Name,
		Price: fx.product.Price,
		Stock: knownStock,
	}
	if err := cart.Add(snapshot, qty); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return cart
}

// Escenario completo: stock 10, venta de 4 en efectivo.
func TestProcessSale(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 10)

	shifts := NewShiftService(db)
	sales := NewSaleService(db, shifts)
	openShiftFor(t, shifts, fx, 0)

	cart := cartWith(t, fx, 4, 10)

	sale, err := sales.Process(cart, fx.worker.ID, fx.branch.ID, models.PayEfectivo)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if sale.Total != 4*fx.product.Price {
		t.Errorf("Total = %d, esperado %d", sale.Total, 4*fx.product.Price)
	}
	if sale.Kind != models.SaleFisica || sale.WorkerID == nil || *sale.WorkerID != fx.worker.ID {
		t.Errorf("venta mal atribuida: %+v", sale)
	}

	var lines []models.SaleLine
	db.Where("sale_id = ?", sale.ID).Find(&lines)
	if len(lines) != 1 || lines[0].Quantity != 4 || lines[0].ProductID != fx.product.ID {
		t.Errorf("detalles = %+v, esperaba una línea de 4 unidades", lines)
	}
	if lines[0].UnitPrice != fx.product.Price {
		t.Errorf("UnitPrice = %d, esperado %d", lines[0].UnitPrice, fx.product.Price)
	}

	if got := stockOf(t, db, fx.product.ID, fx.branch.ID); got != 6 {
		t.Errorf("stock = %d, esperado 6", got)
	}

	var movement models.StockMovement
	if err := db.Where("sale_id = ?", sale.ID).First(&movement).Error; err != nil {
		t.Fatalf("movimiento de stock no registrado: %v", err)
	}
	if movement.Delta != -4 || movement.StockBefore != 10 || movement.StockAfter != 6 {
		t.Errorf("movimiento = %+v", movement)
	}
}

func TestProcessRequiresOpenShift(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 10)

	shifts := NewShiftService(db)
	sales := NewSaleService(db, shifts)

	cart := cartWith(t, fx, 1, 10)
	if _, err := sales.Process(cart, fx.worker.ID, fx.branch.ID, models.PayEfectivo); !errors.Is(err, ErrPrecondition) {
		t.Errorf("esperaba ErrPrecondition sin turno, got %v", err)
	}
}

func TestProcessRequiresNonEmptyCart(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 10)

	shifts := NewShiftService(db)
	sales := NewSaleService(db, shifts)
	openShiftFor(t, shifts, fx, 0)

	if _, err := sales.Process(NewCart(), fx.worker.ID, fx.branch.ID, models.PayEfectivo); !errors.Is(err, ErrPrecondition) {
		t.Errorf("esperaba ErrPrecondition con carrito vacío, got %v", err)
	}
}

func TestProcessRejectsInvalidMethod(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 10)

	shifts := NewShiftService(db)
	sales := NewSaleService(db, shifts)
	openShiftFor(t, shifts, fx, 0)

	cart := cartWith(t, fx, 1, 10)
	if _, err := sales.Process(cart, fx.worker.ID, fx.branch.ID, models.PaymentMethod("bitcoin")); !errors.Is(err, ErrValidation) {
		t.Errorf("esperaba ErrValidation, got %v", err)
	}
}

// La foto del carrito está vieja: pide 5 pero quedan 3. La operación
// falla completa y no escribe nada.
func TestProcessFailsOnStaleStockWithoutWrites(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 10)

	shifts := NewShiftService(db)
	sales := NewSaleService(db, shifts)
	openShiftFor(t, shifts, fx, 0)

	// Carrito armado cuando había 10.
	cart := cartWith(t, fx, 5, 10)

	// Otra venta/ajuste dejó el stock real en 3.
	db.Model(&models.BranchStock{}).
		Where("product_id = ? AND branch_id = ?", fx.product.ID, fx.branch.ID).
		Update("stock", 3)

	_, err := sales.Process(cart, fx.worker.ID, fx.branch.ID, models.PayEfectivo)
	var insuf *InsufficientStockError
	if !errors.As(err, &insuf) {
		t.Fatalf("esperaba InsufficientStockError, got %v", err)
	}
	if insuf.ProductID != fx.product.ID || insuf.Available != 3 || insuf.Requested != 5 {
		t.Errorf("detalle del error: %+v", insuf)
	}

	// Cero escrituras: ni venta, ni detalles, ni stock, ni movimientos.
	var saleCount, lineCount, movementCount int64
	db.Model(&models.Sale{}).Count(&saleCount)
	db.Model(&models.SaleLine{}).Count(&lineCount)
	db.Model(&models.StockMovement{}).Count(&movementCount)
	if saleCount != 0 || lineCount != 0 || movementCount != 0 {
		t.Errorf("escrituras tras fallo: sales=%d lines=%d movements=%d", saleCount, lineCount, movementCount)
	}
	if got := stockOf(t, db, fx.product.ID, fx.branch.ID); got != 3 {
		t.Errorf("stock = %d, esperado 3 sin cambios", got)
	}
}

// Dos ventas compitiendo por el mismo stock: la que llega segunda no
// puede sobrevender y el stock final cuadra con lo efectivamente vendido.
func TestProcessNeverOversells(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 3)

	shifts := NewShiftService(db)
	sales := NewSaleService(db, shifts)
	openShiftFor(t, shifts, fx, 0)

	// Ambos carritos se armaron viendo stock 3.
	first := cartWith(t, fx, 2, 3)
	second := cartWith(t, fx, 2, 3)

	if _, err := sales.Process(first, fx.worker.ID, fx.branch.ID, models.PayEfectivo); err != nil {
		t.Fatalf("primera venta: %v", err)
	}

	_, err := sales.Process(second, fx.worker.ID, fx.branch.ID, models.PayEfectivo)
	var insuf *InsufficientStockError
	if !errors.As(err, &insuf) {
		t.Fatalf("segunda venta: esperaba InsufficientStockError, got %v", err)
	}

	// Stock final = inicial - vendido en ventas confirmadas.
	if got := stockOf(t, db, fx.product.ID, fx.branch.ID); got != 1 {
		t.Errorf("stock = %d, esperado 1", got)
	}
	var committed int64
	db.Model(&models.Sale{}).Count(&committed)
	if committed != 1 {
		t.Errorf("ventas confirmadas = %d, esperado 1", committed)
	}
}

func TestProcessOnline(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 8)

	shifts := NewShiftService(db)
	sales := NewSaleService(db, shifts)

	customer := models.User{Name: "Clara", Email: "clara@correo.cl", PasswordHash: "x", Role: models.RoleCliente}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatal(err)
	}

	items := []CheckoutItem{{ProductID: fx.product.ID, Quantity: 3}}
	order, err := sales.ProcessOnline(customer.ID, fx.branch.ID, items, models.PayWebpay)
	if err != nil {
		t.Fatalf("ProcessOnline: %v", err)
	}

	if order.Status != models.OrderPreparacion {
		t.Errorf("Status = %s, esperado preparacion", order.Status)
	}
	if order.Sale == nil || order.Sale.Kind != models.SaleOnline || order.Sale.WorkerID != nil {
		t.Errorf("venta online mal formada: %+v", order.Sale)
	}
	if order.Sale.Total != 3*fx.product.Price {
		t.Errorf("Total = %d, esperado %d", order.Sale.Total, 3*fx.product.Price)
	}
	if got := stockOf(t, db, fx.product.ID, fx.branch.ID); got != 5 {
		t.Errorf("stock = %d, esperado 5", got)
	}

	var orderLines []models.OrderLine
	db.Where("order_id = ?", order.ID).Find(&orderLines)
	if len(orderLines) != 1 || orderLines[0].Quantity != 3 {
		t.Errorf("líneas del pedido = %+v", orderLines)
	}
}

func TestProcessOnlineInsufficientStock(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 2)

	shifts := NewShiftService(db)
	sales := NewSaleService(db, shifts)

	items := []CheckoutItem{{ProductID: fx.product.ID, Quantity: 5}}
	_, err := sales.ProcessOnline(1, fx.branch.ID, items, models.PayWebpay)
	var insuf *InsufficientStockError
	if !errors.As(err, &insuf) {
		t.Fatalf("esperaba InsufficientStockError, got %v", err)
	}

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 0 {
		t.Errorf("pedidos tras fallo = %d, esperado 0", orderCount)
	}
	if got := stockOf(t, db, fx.product.ID, fx.branch.ID); got != 2 {
		t.Errorf("stock = %d, esperado 2 sin cambios", got)
	}
}

func TestVoidRestocksOnce(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 10)

	shifts := NewShiftService(db)
	sales := NewSaleService(db, shifts)
	openShiftFor(t, shifts, fx, 0)

	cart := cartWith(t, fx, 4, 10)
	sale, err := sales.Process(cart, fx.worker.ID, fx.branch.ID, models.PayTarjeta)
	if err != nil {
		t.Fatal(err)
	}
	if got := stockOf(t, db, fx.product.ID, fx.branch.ID); got != 6 {
		t.Fatalf("stock tras venta = %d", got)
	}

	voided, err := sales.Void(sale.ID, "cliente se arrepintió")
	if err != nil {
		t.Fatalf("Void: %v", err)
	}
	if !voided.Voided || voided.VoidReason == "" {
		t.Errorf("venta no marcada como anulada: %+v", voided)
	}
	if got := stockOf(t, db, fx.product.ID, fx.branch.ID); got != 10 {
		t.Errorf("stock tras anular = %d, esperado 10", got)
	}

	// Anular dos veces no repone dos veces.
	if _, err := sales.Void(sale.ID, "de nuevo"); !errors.Is(err, ErrConflict) {
		t.Fatalf("segunda anulación: esperaba ErrConflict, got %v", err)
	}
	if got := stockOf(t, db, fx.product.ID, fx.branch.ID); got != 10 {
		t.Errorf("stock tras doble anulación = %d, esperado 10", got)
	}

	var movement models.StockMovement
	if err := db.Where("sale_id = ? AND kind = ?", sale.ID, models.MovementAnulacion).
		First(&movement).Error; err != nil {
		t.Fatalf("movimiento de anulación no registrado: %v", err)
	}
	if movement.Delta != 4 {
		t.Errorf("Delta = %d, esperado 4", movement.Delta)
	}
}
