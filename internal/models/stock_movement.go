package models

import "time"

type StockMovementKind string

const (
	MovementVenta     StockMovementKind = "venta"
	MovementAjuste    StockMovementKind = "ajuste"
	MovementAnulacion StockMovementKind = "anulacion"
)

// StockMovement registra cada cambio de stock. Los registros son
// inmutables; una anulación crea el movimiento inverso, nunca borra.
type StockMovement struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	BranchID  uint `gorm:"index;not null"`
	Branch    Branch
	Kind      StockMovementKind `gorm:"size:20;not null"`
	// Delta > 0 entrada, < 0 salida.
	Delta       int `gorm:"not null"`
	StockBefore int `gorm:"not null"`
	StockAfter  int `gorm:"not null"`
	SaleID      *uint
	CreatedAt   time.Time
}
