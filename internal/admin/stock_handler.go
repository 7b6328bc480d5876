package admin

import (
	"fmt"

	"tienda-backend/internal/audit"
	"tienda-backend/internal/auth"
	"tienda-backend/internal/database"
	"tienda-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StockRowResponse struct {
	ProductoID uint   `json:"producto_id"`
	Producto   string `json:"producto"`
	SucursalID uint   `json:"sucursal_id"`
	Sucursal   string `json:"sucursal"`
	Stock      int    `json:"stock"`
}

type SetStockRequest struct {
	ProductoID uint `json:"producto_id"`
	SucursalID uint `json:"sucursal_id"`
	Stock      int  `json:"stock"`
}

type AdjustStockRequest struct {
	ProductoID uint `json:"producto_id"`
	SucursalID uint `json:"sucursal_id"`
	Delta      int  `json:"delta"`
}

// Usuario autenticado para el log de auditoría
func currentActor(c *fiber.Ctx) (uint, string, error) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return 0, "", err
	}
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Usuario no encontrado")
	}
	return userID, user.Name, nil
}

// ----------------------------------------
// Stock por sucursal (solo admin)
// ----------------------------------------

// GET /api/admin/stock?sucursal_id=&producto_id=
func ListStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.BranchStock{}).
			Preload("Product").Preload("Branch")

		if branchID := c.QueryInt("sucursal_id"); branchID > 0 {
			dbq = dbq.Where("branch_id = ?", branchID)
		}
		if productID := c.QueryInt("producto_id"); productID > 0 {
			dbq = dbq.Where("product_id = ?", productID)
		}

		var rows []models.BranchStock
		if err := dbq.Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar el stock")
		}

		res := make([]StockRowResponse, 0, len(rows))
		for _, r := range rows {
			res = append(res, StockRowResponse{
				ProductoID: r.ProductID,
				Producto:   r.Product.Name,
				SucursalID: r.BranchID,
				Sucursal:   r.Branch.Name,
				Stock:      r.Stock,
			})
		}
		return c.JSON(res)
	}
}

// PUT /api/admin/stock — fija el stock absoluto de (producto, sucursal),
// creando la fila si no existe.
func SetStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SetStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}
		if body.Stock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "El stock no puede ser negativo")
		}

		var product models.Product
		if err := database.DB.First(&product, body.ProductoID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "El producto no existe")
		}
		var branch models.Branch
		if err := database.DB.First(&branch, body.SucursalID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "La sucursal no existe")
		}

		userID, userName, err := currentActor(c)
		if err != nil {
			return err
		}

		var after models.BranchStock
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var bs models.BranchStock
			err := tx.Where("product_id = ? AND branch_id = ?", body.ProductoID, body.SucursalID).
				First(&bs).Error
			if err == gorm.ErrRecordNotFound {
				bs = models.BranchStock{ProductID: body.ProductoID, BranchID: body.SucursalID}
				if err := tx.Create(&bs).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			before := bs.Stock
			bs.Stock = body.Stock
			if err := tx.Save(&bs).Error; err != nil {
				return err
			}

			movement := models.StockMovement{
				ProductID:   body.ProductoID,
				BranchID:    body.SucursalID,
				Kind:        models.MovementAjuste,
				Delta:       body.Stock - before,
				StockBefore: before,
				StockAfter:  body.Stock,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}

			after = bs
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el stock")
		}

		_ = audit.WriteLog(audit.LogOptions{
			BranchID:    &body.SucursalID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "branch_stock",
			EntityID:    after.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Stock de %s fijado en %d", product.Name, body.Stock),
			After:       fiber.Map{"stock": after.Stock},
		})

		return c.JSON(StockRowResponse{
			ProductoID: after.ProductID,
			Producto:   product.Name,
			SucursalID: after.BranchID,
			Sucursal:   branch.Name,
			Stock:      after.Stock,
		})
	}
}

// POST /api/admin/stock/adjust — ajuste relativo con guardia: un delta
// negativo que dejaría el stock bajo cero se rechaza, no se aplica a medias.
func AdjustStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AdjustStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}
		if body.Delta == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "El delta no puede ser cero")
		}

		var product models.Product
		if err := database.DB.First(&product, body.ProductoID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "El producto no existe")
		}

		userID, userName, err := currentActor(c)
		if err != nil {
			return err
		}

		var after models.BranchStock
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			dbq := tx.Model(&models.BranchStock{}).
				Where("product_id = ? AND branch_id = ?", body.ProductoID, body.SucursalID)
			if body.Delta < 0 {
				dbq = dbq.Where("stock >= ?", -body.Delta)
			}
			res := dbq.UpdateColumn("stock", gorm.Expr("stock + ?", body.Delta))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				if body.Delta > 0 {
					// Primera entrada de stock para ese par producto/sucursal.
					bs := models.BranchStock{
						ProductID: body.ProductoID,
						BranchID:  body.SucursalID,
						Stock:     body.Delta,
					}
					if err := tx.Create(&bs).Error; err != nil {
						return err
					}
				} else {
					return fiber.NewError(fiber.StatusConflict, "El ajuste dejaría el stock negativo")
				}
			}

			if err := tx.Where("product_id = ? AND branch_id = ?", body.ProductoID, body.SucursalID).
				First(&after).Error; err != nil {
				return err
			}

			movement := models.StockMovement{
				ProductID:   body.ProductoID,
				BranchID:    body.SucursalID,
				Kind:        models.MovementAjuste,
				Delta:       body.Delta,
				StockBefore: after.Stock - body.Delta,
				StockAfter:  after.Stock,
			}
			return tx.Create(&movement).Error
		})
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo ajustar el stock")
		}

		_ = audit.WriteLog(audit.LogOptions{
			BranchID:    &body.SucursalID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "branch_stock",
			EntityID:    after.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Ajuste de stock de %s: %+d", product.Name, body.Delta),
			After:       fiber.Map{"stock": after.Stock},
		})

		return c.JSON(StockRowResponse{
			ProductoID: after.ProductID,
			Producto:   product.Name,
			SucursalID: after.BranchID,
			Stock:      after.Stock,
		})
	}
}

// GET /api/admin/stock/movements?producto_id=&sucursal_id=
func ListStockMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.StockMovement{}).Preload("Product")

		if productID := c.QueryInt("producto_id"); productID > 0 {
			dbq = dbq.Where("product_id = ?", productID)
		}
		if branchID := c.QueryInt("sucursal_id"); branchID > 0 {
			dbq = dbq.Where("branch_id = ?", branchID)
		}

		var movements []models.StockMovement
		if err := dbq.Order("created_at desc").Limit(200).Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron cargar los movimientos")
		}

		res := make([]fiber.Map, 0, len(movements))
		for _, m := range movements {
			res = append(res, fiber.Map{
				"id":            m.ID,
				"producto_id":   m.ProductID,
				"producto":      m.Product.Name,
				"sucursal_id":   m.BranchID,
				"tipo":          m.Kind,
				"delta":         m.Delta,
				"stock_antes":   m.StockBefore,
				"stock_despues": m.StockAfter,
				"venta_id":      m.SaleID,
				"fecha":         m.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}
