package admin

import (
	"errors"
	"fmt"
	"time"

	"tienda-backend/internal/audit"
	"tienda-backend/internal/database"
	"tienda-backend/internal/models"
	"tienda-backend/internal/pos"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

type SaleLineResponse struct {
	ProductoID uint   `json:"producto_id"`
	Producto   string `json:"producto"`
	Cantidad   int    `json:"cantidad"`
	Precio     int64  `json:"precio_unitario"`
}

type SaleResponse struct {
	ID           uint               `json:"id"`
	TrabajadorID *uint              `json:"trabajador_id"`
	Trabajador   string             `json:"trabajador"`
	SucursalID   uint               `json:"sucursal_id"`
	Sucursal     string             `json:"sucursal"`
	Total        int64              `json:"monto_total"`
	MetodoPago   string             `json:"metodo_pago"`
	TipoVenta    string             `json:"tipo_venta"`
	Anulada      bool               `json:"anulada"`
	Motivo       string             `json:"motivo_anulacion,omitempty"`
	Fecha        string             `json:"fecha"`
	Detalles     []SaleLineResponse `json:"detalles,omitempty"`
}

func saleResponse(s models.Sale, withLines bool) SaleResponse {
	res := SaleResponse{
		ID:           s.ID,
		TrabajadorID: s.WorkerID,
		SucursalID:   s.BranchID,
		Sucursal:     s.Branch.Name,
		Total:        s.Total,
		MetodoPago:   string(s.Method),
		TipoVenta:    string(s.Kind),
		Anulada:      s.Voided,
		Motivo:       s.VoidReason,
		Fecha:        s.Date.Format(time.RFC3339),
	}
	if s.Worker != nil {
		res.Trabajador = s.Worker.Name
	}
	if withLines {
		res.Detalles = make([]SaleLineResponse, 0, len(s.Lines))
		for _, line := range s.Lines {
			res.Detalles = append(res.Detalles, SaleLineResponse{
				ProductoID: line.ProductID,
				Producto:   line.Product.Name,
				Cantidad:   line.Quantity,
				Precio:     line.UnitPrice,
			})
		}
	}
	return res
}

func filteredSales(c *fiber.Ctx) ([]models.Sale, error) {
	dbq := database.DB.Model(&models.Sale{}).
		Preload("Branch").Preload("Worker")

	if branchID := c.QueryInt("sucursal_id"); branchID > 0 {
		dbq = dbq.Where("branch_id = ?", branchID)
	}
	if metodo := c.Query("metodo_pago"); metodo != "" {
		if !models.PaymentMethod(metodo).Valid() {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Método de pago inválido")
		}
		dbq = dbq.Where("method = ?", metodo)
	}
	if tipo := c.Query("tipo_venta"); tipo != "" {
		dbq = dbq.Where("kind = ?", tipo)
	}
	switch c.Query("anulada") {
	case "true":
		dbq = dbq.Where("voided = ?", true)
	case "false", "":
		dbq = dbq.Where("voided = ?", false)
	case "todas":
		// sin filtro
	}
	if desde := c.Query("desde"); desde != "" {
		d, err := time.Parse("2006-01-02", desde)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Fecha 'desde' inválida, formato YYYY-MM-DD")
		}
		dbq = dbq.Where("date >= ?", d)
	}
	if hasta := c.Query("hasta"); hasta != "" {
		d, err := time.Parse("2006-01-02", hasta)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Fecha 'hasta' inválida, formato YYYY-MM-DD")
		}
		dbq = dbq.Where("date < ?", d.AddDate(0, 0, 1))
	}

	var sales []models.Sale
	if err := dbq.Order("date desc").Find(&sales).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las ventas")
	}
	return sales, nil
}

// ----------------------------------------
// Ventas (solo admin)
// ----------------------------------------

// GET /api/admin/sales?sucursal_id=&metodo_pago=&tipo_venta=&anulada=&desde=&hasta=
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sales, err := filteredSales(c)
		if err != nil {
			return err
		}

		res := make([]SaleResponse, 0, len(sales))
		for _, s := range sales {
			res = append(res, saleResponse(s, false))
		}
		return c.JSON(res)
	}
}

// GET /api/admin/sales/:id
func GetSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var sale models.Sale
		if err := database.DB.
			Preload("Branch").Preload("Worker").
			Preload("Lines").Preload("Lines.Product").
			First(&sale, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Venta no encontrada")
		}
		return c.JSON(saleResponse(sale, true))
	}
}

// POST /api/admin/sales/:id/void — anula la venta y repone el stock
func VoidSaleHandler(sales *pos.SaleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "Id inválido")
		}

		var body struct {
			Motivo string `json:"motivo"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.Motivo == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El motivo de anulación es obligatorio")
		}

		userID, userName, err := currentActor(c)
		if err != nil {
			return err
		}

		sale, err := sales.Void(uint(id), body.Motivo)
		if err != nil {
			switch {
			case errors.Is(err, pos.ErrValidation):
				return fiber.NewError(fiber.StatusNotFound, "Venta no encontrada")
			case errors.Is(err, pos.ErrConflict):
				return fiber.NewError(fiber.StatusConflict, "La venta ya está anulada")
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo anular la venta")
			}
		}

		_ = audit.WriteLog(audit.LogOptions{
			BranchID:    &sale.BranchID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "sale",
			EntityID:    sale.ID,
			Action:      models.AuditActionVoid,
			Description: fmt.Sprintf("Venta #%d anulada: %s", sale.ID, body.Motivo),
			After:       fiber.Map{"anulada": true, "motivo": body.Motivo},
		})

		return c.JSON(fiber.Map{"id": sale.ID, "anulada": sale.Voided, "motivo": sale.VoidReason})
	}
}

// GET /api/admin/sales/export — descarga las ventas filtradas como xlsx
func ExportSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sales, err := filteredSales(c)
		if err != nil {
			return err
		}

		f := excelize.NewFile()
		defer f.Close()

		const sheet = "Ventas"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"ID", "Fecha", "Sucursal", "Trabajador", "Tipo", "Método de pago", "Monto", "Anulada"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		for row, s := range sales {
			worker := ""
			if s.Worker != nil {
				worker = s.Worker.Name
			}
			values := []any{
				s.ID,
				s.Date.Format("2006-01-02 15:04"),
				s.Branch.Name,
				worker,
				string(s.Kind),
				string(s.Method),
				s.Total,
				s.Voided,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el archivo")
		}

		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", `attachment; filename="ventas.xlsx"`)
		return c.Send(buf.Bytes())
	}
}
