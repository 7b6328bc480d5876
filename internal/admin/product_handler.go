package admin

import (
	"strings"

	"tienda-backend/internal/database"
	"tienda-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateProductRequest struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	Precio      int64  `json:"precio"`
	CategoriaID uint   `json:"categoria_id"`
	Destacado   bool   `json:"destacado"`
}

type UpdateProductRequest struct {
	Nombre      *string `json:"nombre"`
	Descripcion *string `json:"descripcion"`
	Precio      *int64  `json:"precio"`
	CategoriaID *uint   `json:"categoria_id"`
	Destacado   *bool   `json:"destacado"`
}

type AddMediaRequest struct {
	Tipo string `json:"tipo"` // "foto" | "video"
	URL  string `json:"url"`
}

// ----------------------------------------
// CRUD de productos (solo admin)
// ----------------------------------------

func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		body.Nombre = strings.TrimSpace(body.Nombre)
		if body.Nombre == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre del producto no puede estar vacío")
		}
		if body.Precio < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "El precio no puede ser negativo")
		}

		var category models.Category
		if err := database.DB.First(&category, body.CategoriaID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "La categoría no existe")
		}

		product := models.Product{
			Name:        body.Nombre,
			Description: body.Descripcion,
			Price:       body.Precio,
			CategoryID:  body.CategoriaID,
			Featured:    body.Destacado,
		}
		if err := database.DB.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el producto")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":     product.ID,
			"nombre": product.Name,
			"precio": product.Price,
		})
	}
}

func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var product models.Product
		if err := database.DB.First(&product, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		if body.Nombre != nil {
			name := strings.TrimSpace(*body.Nombre)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede estar vacío")
			}
			product.Name = name
		}
		if body.Descripcion != nil {
			product.Description = *body.Descripcion
		}
		if body.Precio != nil {
			if *body.Precio < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "El precio no puede ser negativo")
			}
			product.Price = *body.Precio
		}
		if body.CategoriaID != nil {
			var category models.Category
			if err := database.DB.First(&category, *body.CategoriaID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "La categoría no existe")
			}
			product.CategoryID = *body.CategoriaID
		}
		if body.Destacado != nil {
			product.Featured = *body.Destacado
		}

		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el producto")
		}

		return c.JSON(fiber.Map{
			"id":     product.ID,
			"nombre": product.Name,
			"precio": product.Price,
		})
	}
}

func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var count int64
		database.DB.Model(&models.SaleLine{}).Where("product_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "El producto tiene ventas asociadas, no se puede eliminar")
		}

		if err := database.DB.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el producto")
		}

		database.DB.Where("product_id = ?", id).Delete(&models.BranchStock{})
		database.DB.Where("product_id = ?", id).Delete(&models.ProductMedia{})

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/products/:id/media
func AddProductMediaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "Id inválido")
		}

		var product models.Product
		if err := database.DB.First(&product, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
		}

		var body AddMediaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}
		kind := models.MediaKind(body.Tipo)
		if kind != models.MediaFoto && kind != models.MediaVideo {
			return fiber.NewError(fiber.StatusBadRequest, "Tipo inválido (foto|video)")
		}
		if strings.TrimSpace(body.URL) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "La URL es obligatoria")
		}

		media := models.ProductMedia{
			ProductID: product.ID,
			Kind:      kind,
			URL:       body.URL,
		}
		if err := database.DB.Create(&media).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar el medio")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": media.ID, "url": media.URL})
	}
}

// DELETE /api/admin/products/:id/media/:mediaId
func DeleteProductMediaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := database.DB.
			Where("id = ? AND product_id = ?", c.Params("mediaId"), c.Params("id")).
			Delete(&models.ProductMedia{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el medio")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// Categorías
// ----------------------------------------

func CreateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Nombre string `json:"nombre"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		body.Nombre = strings.TrimSpace(body.Nombre)
		if body.Nombre == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede estar vacío")
		}

		category := models.Category{Name: body.Nombre}
		if err := database.DB.Create(&category).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Ya existe una categoría con ese nombre")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": category.ID, "nombre": category.Name})
	}
}

func DeleteCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var count int64
		database.DB.Model(&models.Product{}).Where("category_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "La categoría tiene productos asociados")
		}

		if err := database.DB.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar la categoría")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
