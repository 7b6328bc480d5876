package store

import (
	"errors"

	"tienda-backend/internal/auth"
	"tienda-backend/internal/database"
	"tienda-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CartItemResponse struct {
	ProductoID uint   `json:"producto_id"`
	Nombre     string `json:"nombre"`
	Precio     int64  `json:"precio"`
	Cantidad   int    `json:"cantidad"`
	Subtotal   int64  `json:"subtotal"`
}

type CartSummaryResponse struct {
	Items      []CartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	Total      int64              `json:"total"`
}

func cartSummary(userID uint) (CartSummaryResponse, error) {
	var items []models.CartItem
	if err := database.DB.Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return CartSummaryResponse{}, err
	}

	res := CartSummaryResponse{Items: make([]CartItemResponse, 0, len(items))}
	for _, item := range items {
		subtotal := item.Product.Price * int64(item.Quantity)
		res.Items = append(res.Items, CartItemResponse{
			ProductoID: item.ProductID,
			Nombre:     item.Product.Name,
			Precio:     item.Product.Price,
			Cantidad:   item.Quantity,
			Subtotal:   subtotal,
		})
		res.TotalItems += item.Quantity
		res.Total += subtotal
	}
	return res, nil
}

// -------------------------------------------------
// GET /api/cliente/cart
// -------------------------------------------------
func GetCartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		res, err := cartSummary(userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar el carrito")
		}
		return c.JSON(res)
	}
}

// -------------------------------------------------
// POST /api/cliente/cart — agrega o suma cantidad
// -------------------------------------------------
func AddCartItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body struct {
			ProductoID uint `json:"producto_id"`
			Cantidad   int  `json:"cantidad"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.Cantidad < 1 {
			body.Cantidad = 1
		}

		var product models.Product
		if err := database.DB.First(&product, body.ProductoID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
		}

		var item models.CartItem
		err = database.DB.
			Where("user_id = ? AND product_id = ?", userID, product.ID).
			First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{UserID: userID, ProductID: product.ID, Quantity: body.Cantidad}
			if err := database.DB.Create(&item).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo agregar al carrito")
			}
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo agregar al carrito")
		default:
			item.Quantity += body.Cantidad
			if err := database.DB.Save(&item).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo agregar al carrito")
			}
		}

		res, err := cartSummary(userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar el carrito")
		}
		return c.JSON(res)
	}
}

// -------------------------------------------------
// PUT /api/cliente/cart/:productId — fija la cantidad (0 elimina)
// -------------------------------------------------
func SetCartQuantityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		productID, err := c.ParamsInt("productId")
		if err != nil || productID < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "Id de producto inválido")
		}

		var body struct {
			Cantidad int `json:"cantidad"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		if body.Cantidad <= 0 {
			database.DB.Where("user_id = ? AND product_id = ?", userID, productID).
				Delete(&models.CartItem{})
		} else {
			res := database.DB.Model(&models.CartItem{}).
				Where("user_id = ? AND product_id = ?", userID, productID).
				Update("quantity", body.Cantidad)
			if res.Error != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el carrito")
			}
			if res.RowsAffected == 0 {
				return fiber.NewError(fiber.StatusNotFound, "El producto no está en el carrito")
			}
		}

		summary, err := cartSummary(userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar el carrito")
		}
		return c.JSON(summary)
	}
}

// -------------------------------------------------
// DELETE /api/cliente/cart — vacía el carrito
// -------------------------------------------------
func ClearCartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		if err := database.DB.Where("user_id = ?", userID).
			Delete(&models.CartItem{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo vaciar el carrito")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
