package models

import "time"

type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;not null;unique"`
}

type MediaKind string

const (
	MediaFoto  MediaKind = "foto"
	MediaVideo MediaKind = "video"
)

type Product struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"size:1000"`
	// Precio en unidades enteras (la moneda no tiene subunidades).
	Price      int64 `gorm:"not null"`
	CategoryID uint  `gorm:"index;not null"`
	Category   Category
	Featured   bool `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Media []ProductMedia
	Stock []BranchStock
}

type ProductMedia struct {
	ID        uint      `gorm:"primaryKey"`
	ProductID uint      `gorm:"index;not null"`
	Kind      MediaKind `gorm:"size:10;not null"`
	URL       string    `gorm:"size:500;not null"`
	CreatedAt time.Time
}
