package dashboard

import (
	"time"

	"tienda-backend/internal/database"
	"tienda-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type MonthlyRevenuePoint struct {
	Mes   string `json:"mes"` // "2026-01"
	Total int64  `json:"total"`
	Count int64  `json:"cantidad"`
}

type LowStockRow struct {
	ProductoID uint   `json:"producto_id"`
	Producto   string `json:"producto"`
	SucursalID uint   `json:"sucursal_id"`
	Stock      int    `json:"stock"`
}

type StatsResponse struct {
	TotalUsuarios   int64                 `json:"total_usuarios"`
	TotalProductos  int64                 `json:"total_productos"`
	TotalVentas     int64                 `json:"total_ventas"`
	IngresosTotales int64                 `json:"ingresos_totales"`
	VentasHoy       int64                 `json:"ventas_hoy"`
	TurnosAbiertos  int64                 `json:"turnos_abiertos"`
	VentasPorMes    []MonthlyRevenuePoint `json:"ventas_por_mes"`
	StockBajo       []LowStockRow         `json:"stock_bajo"`
}

// GET /api/admin/stats — resumen para el dashboard del admin. Las ventas
// anuladas quedan fuera de todos los totales.
func StatsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var res StatsResponse

		database.DB.Model(&models.User{}).Count(&res.TotalUsuarios)
		database.DB.Model(&models.Product{}).Count(&res.TotalProductos)

		activeSales := database.DB.Model(&models.Sale{}).Where("voided = ?", false)
		activeSales.Count(&res.TotalVentas)

		if err := database.DB.Model(&models.Sale{}).
			Where("voided = ?", false).
			Select("COALESCE(SUM(total), 0)").
			Scan(&res.IngresosTotales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron calcular los ingresos")
		}

		now := time.Now()
		hoy := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		database.DB.Model(&models.Sale{}).
			Where("voided = ? AND date >= ?", false, hoy).
			Count(&res.VentasHoy)

		database.DB.Model(&models.Shift{}).
			Where("closed_at IS NULL").
			Count(&res.TurnosAbiertos)

		// Últimos 6 meses, del más antiguo al más reciente
		res.VentasPorMes = make([]MonthlyRevenuePoint, 0, 6)
		for i := 5; i >= 0; i-- {
			monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
			monthEnd := monthStart.AddDate(0, 1, 0)

			point := MonthlyRevenuePoint{Mes: monthStart.Format("2006-01")}
			database.DB.Model(&models.Sale{}).
				Where("voided = ? AND date >= ? AND date < ?", false, monthStart, monthEnd).
				Count(&point.Count)
			database.DB.Model(&models.Sale{}).
				Where("voided = ? AND date >= ? AND date < ?", false, monthStart, monthEnd).
				Select("COALESCE(SUM(total), 0)").
				Scan(&point.Total)

			res.VentasPorMes = append(res.VentasPorMes, point)
		}

		var lowRows []models.BranchStock
		if err := database.DB.Preload("Product").
			Where("stock <= ?", 5).
			Order("stock asc").
			Limit(20).
			Find(&lowRows).Error; err == nil {
			for _, row := range lowRows {
				res.StockBajo = append(res.StockBajo, LowStockRow{
					ProductoID: row.ProductID,
					Producto:   row.Product.Name,
					SucursalID: row.BranchID,
					Stock:      row.Stock,
				})
			}
		}

		return c.JSON(res)
	}
}
