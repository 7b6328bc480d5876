package models

import "time"

// BranchStock: cantidad disponible de un producto en una sucursal.
// Invariante: Stock >= 0 siempre; los descuentos se hacen con un
// UPDATE relativo con guardia (ver internal/pos y internal/admin).
type BranchStock struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_branch_stock_product_branch"`
	Product   Product
	BranchID  uint `gorm:"not null;uniqueIndex:idx_branch_stock_product_branch"`
	Branch    Branch
	Stock     int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
