package catalog

import (
	"strings"

	"tienda-backend/internal/database"
	"tienda-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type MediaResponse struct {
	ID   uint   `json:"id"`
	Tipo string `json:"tipo"`
	URL  string `json:"url"`
}

type StockResponse struct {
	SucursalID uint `json:"sucursal_id"`
	Stock      int  `json:"stock"`
}

type ProductResponse struct {
	ID          uint            `json:"id"`
	Nombre      string          `json:"nombre"`
	Descripcion string          `json:"descripcion"`
	Precio      int64           `json:"precio"`
	CategoriaID uint            `json:"categoria_id"`
	Categoria   string          `json:"categoria"`
	Destacado   bool            `json:"destacado"`
	Medios      []MediaResponse `json:"medios"`
	Stock       []StockResponse `json:"stock"`
}

func productResponse(p models.Product) ProductResponse {
	res := ProductResponse{
		ID:          p.ID,
		Nombre:      p.Name,
		Descripcion: p.Description,
		Precio:      p.Price,
		CategoriaID: p.CategoryID,
		Categoria:   p.Category.Name,
		Destacado:   p.Featured,
		Medios:      make([]MediaResponse, 0, len(p.Media)),
		Stock:       make([]StockResponse, 0, len(p.Stock)),
	}
	for _, m := range p.Media {
		res.Medios = append(res.Medios, MediaResponse{ID: m.ID, Tipo: string(m.Kind), URL: m.URL})
	}
	for _, s := range p.Stock {
		res.Stock = append(res.Stock, StockResponse{SucursalID: s.BranchID, Stock: s.Stock})
	}
	return res
}

// -------------------------------------------------
// GET /api/products?q=&categoria_id=&destacado=true
// -------------------------------------------------
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{}).
			Preload("Category").Preload("Media").Preload("Stock")

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + strings.ToLower(q) + "%"
			dbq = dbq.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
		if catID := c.QueryInt("categoria_id"); catID > 0 {
			dbq = dbq.Where("category_id = ?", catID)
		}
		if c.Query("destacado") == "true" {
			dbq = dbq.Where("featured = ?", true)
		}

		var products []models.Product
		if err := dbq.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los productos")
		}

		res := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			res = append(res, productResponse(p))
		}
		return c.JSON(res)
	}
}

// -------------------------------------------------
// GET /api/products/:id
// -------------------------------------------------
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "Id inválido")
		}

		var product models.Product
		if err := database.DB.
			Preload("Category").Preload("Media").Preload("Stock").
			First(&product, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
		}
		return c.JSON(productResponse(product))
	}
}

// -------------------------------------------------
// GET /api/categories
// -------------------------------------------------
func ListCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categories []models.Category
		if err := database.DB.Order("name asc").Find(&categories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las categorías")
		}

		res := make([]fiber.Map, 0, len(categories))
		for _, cat := range categories {
			res = append(res, fiber.Map{"id": cat.ID, "nombre": cat.Name})
		}
		return c.JSON(res)
	}
}

// -------------------------------------------------
// GET /api/branches
// -------------------------------------------------
func ListBranchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var branches []models.Branch
		if err := database.DB.Order("name asc").Find(&branches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las sucursales")
		}

		res := make([]fiber.Map, 0, len(branches))
		for _, b := range branches {
			res = append(res, fiber.Map{"id": b.ID, "nombre": b.Name, "direccion": b.Address})
		}
		return c.JSON(res)
	}
}
