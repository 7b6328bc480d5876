package models

import "time"

type OrderStatus string

const (
	OrderPreparacion OrderStatus = "preparacion"
	OrderEnCamino    OrderStatus = "en_camino"
	OrderEntregado   OrderStatus = "entregado"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPreparacion, OrderEnCamino, OrderEntregado:
		return true
	}
	return false
}

// Order (pedido) es una compra online de un cliente, despachada desde
// una sucursal. Se crea junto con su Sale en la misma transacción.
type Order struct {
	ID          uint `gorm:"primaryKey"`
	CustomerID  uint `gorm:"index;not null"`
	Customer    User `gorm:"foreignKey:CustomerID"`
	BranchID    uint `gorm:"index;not null"`
	Branch      Branch
	Status      OrderStatus `gorm:"size:20;not null"`
	SaleID      *uint
	Sale        *Sale
	DeliveredAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Lines []OrderLine
}

type OrderLine struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	Quantity  int `gorm:"not null"`
	CreatedAt time.Time
}
