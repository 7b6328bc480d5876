package store

import (
	"errors"
	"time"

	"tienda-backend/internal/auth"
	"tienda-backend/internal/database"
	"tienda-backend/internal/models"
	"tienda-backend/internal/pos"

	"github.com/gofiber/fiber/v2"
)

type OrderLineResponse struct {
	ProductoID uint   `json:"producto_id"`
	Nombre     string `json:"nombre"`
	Cantidad   int    `json:"cantidad"`
}

type OrderResponse struct {
	ID            uint                `json:"id"`
	SucursalID    uint                `json:"sucursal_id"`
	Estado        string              `json:"estado"`
	Total         int64               `json:"monto_total"`
	MetodoPago    string              `json:"metodo_pago"`
	FechaCreacion string              `json:"fecha_creacion"`
	FechaEntrega  *string             `json:"fecha_entrega"`
	Detalles      []OrderLineResponse `json:"detalles"`
}

func orderResponse(o models.Order) OrderResponse {
	res := OrderResponse{
		ID:            o.ID,
		SucursalID:    o.BranchID,
		Estado:        string(o.Status),
		FechaCreacion: o.CreatedAt.Format(time.RFC3339),
		Detalles:      make([]OrderLineResponse, 0, len(o.Lines)),
	}
	if o.Sale != nil {
		res.Total = o.Sale.Total
		res.MetodoPago = string(o.Sale.Method)
	}
	if o.DeliveredAt != nil {
		f := o.DeliveredAt.Format(time.RFC3339)
		res.FechaEntrega = &f
	}
	for _, line := range o.Lines {
		res.Detalles = append(res.Detalles, OrderLineResponse{
			ProductoID: line.ProductID,
			Nombre:     line.Product.Name,
			Cantidad:   line.Quantity,
		})
	}
	return res
}

// -------------------------------------------------
// POST /api/cliente/checkout — convierte el carrito en pedido + venta online
// -------------------------------------------------
func CheckoutHandler(sales *pos.SaleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body struct {
			SucursalID uint                 `json:"sucursal_id"`
			MetodoPago models.PaymentMethod `json:"metodo_pago"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.SucursalID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Debes elegir una sucursal")
		}
		if !body.MetodoPago.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Método de pago inválido")
		}

		var cartItems []models.CartItem
		if err := database.DB.Where("user_id = ?", userID).Find(&cartItems).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar el carrito")
		}
		if len(cartItems) == 0 {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "El carrito está vacío")
		}

		items := make([]pos.CheckoutItem, 0, len(cartItems))
		for _, item := range cartItems {
			items = append(items, pos.CheckoutItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		order, err := sales.ProcessOnline(userID, body.SucursalID, items, body.MetodoPago)
		if err != nil {
			var insuf *pos.InsufficientStockError
			switch {
			case errors.As(err, &insuf):
				return fiber.NewError(fiber.StatusConflict, insuf.Error())
			case errors.Is(err, pos.ErrValidation):
				return fiber.NewError(fiber.StatusBadRequest, "El carrito contiene productos inválidos")
			case errors.Is(err, pos.ErrPrecondition):
				return fiber.NewError(fiber.StatusUnprocessableEntity, "El carrito está vacío")
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo procesar la compra")
			}
		}

		// El carrito persistido se vacía solo tras el commit.
		database.DB.Where("user_id = ?", userID).Delete(&models.CartItem{})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"pedido_id":   order.ID,
			"venta_id":    order.SaleID,
			"monto_total": order.Sale.Total,
			"estado":      order.Status,
		})
	}
}

// -------------------------------------------------
// GET /api/cliente/orders — pedidos del cliente autenticado
// -------------------------------------------------
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var orders []models.Order
		if err := database.DB.
			Preload("Sale").Preload("Lines").Preload("Lines.Product").
			Where("customer_id = ?", userID).
			Order("created_at desc").
			Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron cargar los pedidos")
		}

		res := make([]OrderResponse, 0, len(orders))
		for _, o := range orders {
			res = append(res, orderResponse(o))
		}
		return c.JSON(res)
	}
}

// -------------------------------------------------
// PUT /api/orders/:id/status — trabajador/admin actualiza el estado
// -------------------------------------------------
func UpdateOrderStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "Id inválido")
		}

		var body struct {
			Estado models.OrderStatus `json:"estado"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if !body.Estado.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Estado inválido (preparacion|en_camino|entregado)")
		}

		var order models.Order
		if err := database.DB.First(&order, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pedido no encontrado")
		}

		order.Status = body.Estado
		if body.Estado == models.OrderEntregado && order.DeliveredAt == nil {
			now := time.Now()
			order.DeliveredAt = &now
		}
		if err := database.DB.Save(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el pedido")
		}

		return c.JSON(fiber.Map{"id": order.ID, "estado": order.Status})
	}
}
