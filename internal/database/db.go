package database

import (
	"log"

	"tienda-backend/internal/config"
	"tienda-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("No se pudo conectar a la base de datos: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Error en AutoMigrate: %v", err)
	}

	log.Println("Conexión a la base de datos OK. Migración completada.")
}

// Migrate corre AutoMigrate sobre cualquier *gorm.DB; los tests lo usan
// contra sqlite en memoria.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Branch{},
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ProductMedia{},
		&models.BranchStock{},
		&models.StockMovement{},
		&models.Shift{},
		&models.Sale{},
		&models.SaleLine{},
		&models.Order{},
		&models.OrderLine{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.AuditLog{},
	)
}
