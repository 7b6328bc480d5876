package pos

import (
	"fmt"
	"testing"

	"tienda-backend/internal/database"
	"tienda-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB abre una base sqlite en memoria con el esquema completo.
// cache=shared mantiene la base viva entre conexiones del pool.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("no se pudo abrir sqlite en memoria: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migración: %v", err)
	}
	return db
}

type fixture struct {
	branch  models.Branch
	worker  models.User
	product models.Product
}

// seed crea sucursal, trabajador y un producto con stock inicial.
func seed(t *testing.T, db *gorm.DB, stock int) fixture {
	t.Helper()

	branch := models.Branch{Name: "Sucursal Centro", Address: "Av. Principal 123"}
	if err := db.Create(&branch).Error; err != nil {
		t.Fatalf("seed branch: %v", err)
	}

	worker := models.User{
		Name:         "Ana",
		Email:        fmt.Sprintf("ana+%s@tienda.cl", t.Name()),
		PasswordHash: "x",
		Role:         models.RoleTrabajador,
		BranchID:     &branch.ID,
	}
	if err := db.Create(&worker).Error; err != nil {
		t.Fatalf("seed worker: %v", err)
	}

	category := models.Category{Name: "General " + t.Name()}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	product := models.Product{Name: "Polera", Price: 9990, CategoryID: category.ID}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	bs := models.BranchStock{ProductID: product.ID, BranchID: branch.ID, Stock: stock}
	if err := db.Create(&bs).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	return fixture{branch: branch, worker: worker, product: product}
}

func stockOf(t *testing.T, db *gorm.DB, productID, branchID uint) int {
	t.Helper()
	var bs models.BranchStock
	if err := db.Where("product_id = ? AND branch_id = ?", productID, branchID).First(&bs).Error; err != nil {
		t.Fatalf("leyendo stock: %v", err)
	}
	return bs.Stock
}
