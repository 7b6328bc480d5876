package models

import "time"

type PaymentMethod string

const (
	PayEfectivo      PaymentMethod = "efectivo"
	PayTarjeta       PaymentMethod = "tarjeta"
	PayTransferencia PaymentMethod = "transferencia"
	PayWebpay        PaymentMethod = "webpay"
	PayOtro          PaymentMethod = "otro"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayEfectivo, PayTarjeta, PayTransferencia, PayWebpay, PayOtro:
		return true
	}
	return false
}

type SaleKind string

const (
	SaleFisica SaleKind = "fisica"
	SaleOnline SaleKind = "online"
)

// Sale es inmutable tras su creación, salvo la anulación administrativa.
type Sale struct {
	ID uint `gorm:"primaryKey"`
	// WorkerID es NULL en ventas online.
	WorkerID   *uint `gorm:"index"`
	Worker     *User `gorm:"foreignKey:WorkerID"`
	BranchID   uint  `gorm:"index;not null"`
	Branch     Branch
	Total      int64         `gorm:"not null"`
	Method     PaymentMethod `gorm:"size:20;not null"`
	Kind       SaleKind      `gorm:"size:10;not null"`
	Voided     bool          `gorm:"not null;default:false"`
	VoidReason string        `gorm:"size:255"`
	Date       time.Time     `gorm:"index;not null"`
	CreatedAt  time.Time

	Lines []SaleLine
}

type SaleLine struct {
	ID        uint `gorm:"primaryKey"`
	SaleID    uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	Quantity  int `gorm:"not null"`
	// Precio unitario al momento de la venta.
	UnitPrice int64 `gorm:"not null"`
	CreatedAt time.Time
}
