package main

import (
	"log"
	"strings"

	"tienda-backend/internal/admin"
	"tienda-backend/internal/audit"
	"tienda-backend/internal/auth"
	"tienda-backend/internal/catalog"
	"tienda-backend/internal/config"
	"tienda-backend/internal/dashboard"
	"tienda-backend/internal/database"
	"tienda-backend/internal/media"
	"tienda-backend/internal/models"
	"tienda-backend/internal/pos"
	"tienda-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	shifts := pos.NewShiftService(database.DB)
	sales := pos.NewSaleService(database.DB, shifts)
	sessions := pos.NewSessionStore()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Error inesperado:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error inesperado del servidor",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	// Fotos y videos de productos
	app.Static("/media", cfg.MediaPath)

	api := app.Group("/api")

	// Auth pública
	api.Post("/auth/register", auth.RegisterHandler())
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Catálogo público
	api.Get("/products", catalog.ListProductsHandler())
	api.Get("/products/:id", catalog.GetProductHandler())
	api.Get("/categories", catalog.ListCategoriesHandler())
	api.Get("/branches", catalog.ListBranchesHandler())

	// Rutas protegidas
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// POS: trabajadores y admins
	posRoutes := protected.Group("/pos")
	posRoutes.Use(auth.RequireRole(models.RoleTrabajador, models.RoleAdmin))

	posRoutes.Get("/shift", pos.GetShiftHandler(shifts))
	posRoutes.Post("/shift/open", pos.OpenShiftHandler(shifts))
	posRoutes.Post("/shift/close", pos.CloseShiftHandler(shifts, sessions))
	posRoutes.Get("/products", pos.ListPOSProductsHandler())
	posRoutes.Get("/cart", pos.GetCartHandler(sessions))
	posRoutes.Post("/cart", pos.AddCartItemHandler(sessions))
	posRoutes.Put("/cart/:productId", pos.SetCartQuantityHandler(sessions))
	posRoutes.Delete("/cart", pos.ClearCartHandler(sessions))
	posRoutes.Post("/checkout", pos.CheckoutHandler(sessions, sales))

	// Pedidos: estado actualizable por trabajadores y admins
	protected.Put("/orders/:id/status",
		auth.RequireRole(models.RoleTrabajador, models.RoleAdmin),
		store.UpdateOrderStatusHandler())

	// Tienda online: clientes
	clienteRoutes := protected.Group("/cliente")
	clienteRoutes.Use(auth.RequireRole(models.RoleCliente))

	clienteRoutes.Get("/cart", store.GetCartHandler())
	clienteRoutes.Post("/cart", store.AddCartItemHandler())
	clienteRoutes.Put("/cart/:productId", store.SetCartQuantityHandler())
	clienteRoutes.Delete("/cart", store.ClearCartHandler())
	clienteRoutes.Get("/wishlist", store.ListWishlistHandler())
	clienteRoutes.Post("/wishlist", store.AddWishlistItemHandler())
	clienteRoutes.Delete("/wishlist/:productId", store.RemoveWishlistItemHandler())
	clienteRoutes.Post("/checkout", store.CheckoutHandler(sales))
	clienteRoutes.Get("/orders", store.ListOrdersHandler())

	// Administración
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Sucursales
	adminRoutes.Post("/branches", admin.CreateBranchHandler())
	adminRoutes.Get("/branches", admin.ListBranchesHandler())
	adminRoutes.Get("/branches/:id", admin.GetBranchHandler())
	adminRoutes.Put("/branches/:id", admin.UpdateBranchHandler())
	adminRoutes.Delete("/branches/:id", admin.DeleteBranchHandler())

	// Usuarios
	adminRoutes.Post("/users", admin.CreateUserHandler())
	adminRoutes.Get("/users", admin.ListUsersHandler())
	adminRoutes.Put("/users/:id", admin.UpdateUserHandler())
	adminRoutes.Delete("/users/:id", admin.DeleteUserHandler())

	// Productos y categorías
	adminRoutes.Post("/products", admin.CreateProductHandler())
	adminRoutes.Put("/products/:id", admin.UpdateProductHandler())
	adminRoutes.Delete("/products/:id", admin.DeleteProductHandler())
	adminRoutes.Post("/products/:id/media", admin.AddProductMediaHandler())
	adminRoutes.Delete("/products/:id/media/:mediaId", admin.DeleteProductMediaHandler())
	adminRoutes.Post("/categories", admin.CreateCategoryHandler())
	adminRoutes.Delete("/categories/:id", admin.DeleteCategoryHandler())

	// Stock
	adminRoutes.Get("/stock", admin.ListStockHandler())
	adminRoutes.Put("/stock", admin.SetStockHandler())
	adminRoutes.Post("/stock/adjust", admin.AdjustStockHandler())
	adminRoutes.Get("/stock/movements", admin.ListStockMovementsHandler())

	// Ventas
	adminRoutes.Get("/sales", admin.ListSalesHandler())
	adminRoutes.Get("/sales/export", admin.ExportSalesHandler())
	adminRoutes.Get("/sales/:id", admin.GetSaleHandler())
	adminRoutes.Post("/sales/:id/void", admin.VoidSaleHandler(sales))

	// Dashboard y auditoría
	adminRoutes.Get("/stats", dashboard.StatsHandler())
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler())

	// Subida de medios
	adminRoutes.Post("/media", media.UploadHandler(cfg))
	adminRoutes.Delete("/media/:filename", media.DeleteHandler(cfg))

	log.Println("Servidor escuchando en el puerto:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
