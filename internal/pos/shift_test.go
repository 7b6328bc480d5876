package pos

import (
	"errors"
	"testing"
	"time"

	"tienda-backend/internal/models"
)

func TestOpenShift(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 10)
	shifts := NewShiftService(db)

	shift, err := shifts.Open(fx.worker.ID, fx.branch.ID, 1000)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if shift.OpeningFloat != 1000 || shift.ClosedAt != nil {
		t.Errorf("turno abierto mal formado: %+v", shift)
	}

	open, err := shifts.GetOpen(fx.worker.ID)
	if err != nil {
		t.Fatalf("GetOpen: %v", err)
	}
	if open == nil || open.ID != shift.ID {
		t.Errorf("GetOpen devolvió %+v, esperaba el turno %d", open, shift.ID)
	}
}

func TestOpenShiftRejectsNegativeFloat(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 10)
	shifts := NewShiftService(db)

	if _, err := shifts.Open(fx.worker.ID, fx.branch.ID, -1); !errors.Is(err, ErrValidation) {
		t.Errorf("esperaba ErrValidation, got %v", err)
	}
}

func TestOpenShiftTwiceConflicts(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 10)
	shifts := NewShiftService(db)

	if _, err := shifts.Open(fx.worker.ID, fx.branch.ID, 500); err != nil {
		t.Fatalf("primer Open: %v", err)
	}
	if _, err := shifts.Open(fx.worker.ID, fx.branch.ID, 500); !errors.Is(err, ErrConflict) {
		t.Errorf("segundo Open: esperaba ErrConflict, got %v", err)
	}

	var count int64
	db.Model(&models.Shift{}).
		Where("worker_id = ? AND closed_at IS NULL", fx.worker.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("turnos abiertos = %d, esperado 1", count)
	}
}

func TestGetOpenWithoutShift(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 10)
	shifts := NewShiftService(db)

	open, err := shifts.GetOpen(fx.worker.ID)
	if err != nil {
		t.Fatalf("GetOpen: %v", err)
	}
	if open != nil {
		t.Errorf("esperaba nil, got %+v", open)
	}
}

func TestGetOpenDetectsCorruptLedger(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 10)
	shifts := NewShiftService(db)

	// Dos turnos abiertos insertados a mano: violación de integridad.
	for i := 0; i < 2; i++ {
		s := models.Shift{
			WorkerID:     fx.worker.ID,
			BranchID:     fx.branch.ID,
			OpeningFloat: 0,
			OpenedAt:     time.Now(),
		}
		if err := db.Create(&s).Error; err != nil {
			t.Fatal(err)
		}
	}

	if _, err := shifts.GetOpen(fx.worker.ID); !errors.Is(err, ErrShiftLedgerCorrupt) {
		t.Errorf("esperaba ErrShiftLedgerCorrupt, got %v", err)
	}
}

func TestCloseShiftComputesCashFloat(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 100)

	shifts := NewShiftService(db)
	sales := NewSaleService(db, shifts)

	shift, err := shifts.Open(fx.worker.ID, fx.branch.ID, 1000)
	if err != nil {
		t.Fatal(err)
	}

	// Dos ventas en efectivo (500 y 300) y una con tarjeta (200).
	sell := func(total int64, method models.PaymentMethod) {
		t.Helper()
		cart := NewCart()
		// Precio controlado por línea para fijar el total exacto.
		if err := cart.Add(CartProduct{ID: fx.product.ID, Name: fx.product.Name, Price: total, Stock: 100}, 1); err != nil {
			t.Fatal(err)
		}
		if _, err := sales.Process(cart, fx.worker.ID, fx.branch.ID, method); err != nil {
			t.Fatalf("Process(%d, %s): %v", total, method, err)
		}
	}
	sell(500, models.PayEfectivo)
	sell(300, models.PayEfectivo)
	sell(200, models.PayTarjeta)

	closed, err := shifts.Close(shift.ID)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed.ClosingFloat == nil || *closed.ClosingFloat != 1800 {
		t.Errorf("ClosingFloat = %v, esperado 1800 (la tarjeta no cuenta)", closed.ClosingFloat)
	}
	if closed.ClosedAt == nil {
		t.Error("ClosedAt debe quedar seteado")
	}
}

func TestCloseShiftTwice(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 10)
	shifts := NewShiftService(db)

	shift, err := shifts.Open(fx.worker.ID, fx.branch.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := shifts.Close(shift.ID); err != nil {
		t.Fatalf("primer Close: %v", err)
	}
	if _, err := shifts.Close(shift.ID); !errors.Is(err, ErrShiftClosed) {
		t.Errorf("segundo Close: esperaba ErrShiftClosed, got %v", err)
	}
}

func TestCloseShiftExcludesVoidedCashSales(t *testing.T) {
	db := testDB(t)
	fx := seed(t, db, 100)

	shifts := NewShiftService(db)
	sales := NewSaleService(db, shifts)

	shift, err := shifts.Open(fx.worker.ID, fx.branch.ID, 1000)
	if err != nil {
		t.Fatal(err)
	}

	cart := NewCart()
	if err := cart.Add(CartProduct{ID: fx.product.ID, Name: fx.product.Name, Price: 700, Stock: 100}, 1); err != nil {
		t.Fatal(err)
	}
	sale, err := sales.Process(cart, fx.worker.ID, fx.branch.ID, models.PayEfectivo)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sales.Void(sale.ID, "error de digitación"); err != nil {
		t.Fatalf("Void: %v", err)
	}

	closed, err := shifts.Close(shift.ID)
	if err != nil {
		t.Fatal(err)
	}
	if closed.ClosingFloat == nil || *closed.ClosingFloat != 1000 {
		t.Errorf("ClosingFloat = %v, esperado 1000 (la venta anulada queda fuera)", closed.ClosingFloat)
	}
}
