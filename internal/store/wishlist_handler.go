package store

import (
	"errors"

	"tienda-backend/internal/auth"
	"tienda-backend/internal/database"
	"tienda-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// -------------------------------------------------
// GET /api/cliente/wishlist
// -------------------------------------------------
func ListWishlistHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var items []models.WishlistItem
		if err := database.DB.
			Preload("Product").Preload("Product.Category").Preload("Product.Media").
			Where("user_id = ?", userID).
			Order("created_at desc").
			Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar la lista de deseos")
		}

		res := make([]fiber.Map, 0, len(items))
		for _, item := range items {
			res = append(res, fiber.Map{
				"producto_id": item.ProductID,
				"nombre":      item.Product.Name,
				"precio":      item.Product.Price,
				"categoria":   item.Product.Category.Name,
			})
		}
		return c.JSON(res)
	}
}

// -------------------------------------------------
// POST /api/cliente/wishlist
// -------------------------------------------------
func AddWishlistItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body struct {
			ProductoID uint `json:"producto_id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		var product models.Product
		if err := database.DB.First(&product, body.ProductoID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
		}

		var existing models.WishlistItem
		err = database.DB.
			Where("user_id = ? AND product_id = ?", userID, product.ID).
			First(&existing).Error
		if err == nil {
			// Ya estaba: idempotente.
			return c.SendStatus(fiber.StatusNoContent)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo agregar a la lista de deseos")
		}

		item := models.WishlistItem{UserID: userID, ProductID: product.ID}
		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo agregar a la lista de deseos")
		}
		return c.SendStatus(fiber.StatusCreated)
	}
}

// -------------------------------------------------
// DELETE /api/cliente/wishlist/:productId
// -------------------------------------------------
func RemoveWishlistItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		productID, err := c.ParamsInt("productId")
		if err != nil || productID < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "Id de producto inválido")
		}

		if err := database.DB.
			Where("user_id = ? AND product_id = ?", userID, productID).
			Delete(&models.WishlistItem{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar de la lista de deseos")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
