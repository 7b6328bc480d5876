package models

import "time"

// CartItem es el carrito persistente del cliente en la tienda online.
// Vive en la base de datos para sobrevivir sesiones y dispositivos.
type CartItem struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_product"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_user_product"`
	Product   Product
	Quantity  int `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type WishlistItem struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_wishlist_user_product"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_wishlist_user_product"`
	Product   Product
	CreatedAt time.Time
}
