package pos

import (
	"errors"
	"time"

	"tienda-backend/internal/auth"
	"tienda-backend/internal/database"
	"tienda-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ShiftResponse struct {
	ID          uint    `json:"id"`
	SucursalID  uint    `json:"sucursal_id"`
	Inicial     int64   `json:"efectivo_inicial"`
	Final       *int64  `json:"efectivo_final"`
	FechaInicio string  `json:"fecha_inicio"`
	FechaFin    *string `json:"fecha_fin"`
}

type POSProductResponse struct {
	ID          uint   `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	Precio      int64  `json:"precio"`
	Categoria   string `json:"categoria"`
	Stock       int    `json:"stock_disponible"`
}

type CartLineResponse struct {
	ProductoID uint   `json:"producto_id"`
	Nombre     string `json:"nombre"`
	Precio     int64  `json:"precio"`
	Cantidad   int    `json:"cantidad"`
	Subtotal   int64  `json:"subtotal"`
}

type CartResponse struct {
	Lineas     []CartLineResponse `json:"lineas"`
	TotalItems int                `json:"total_items"`
	Total      int64              `json:"total"`
}

// mapErr traduce los errores del dominio a respuestas HTTP.
func mapErr(err error) error {
	var insuf *InsufficientStockError
	switch {
	case errors.As(err, &insuf):
		return fiber.NewError(fiber.StatusConflict, insuf.Error())
	case errors.Is(err, ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
	case errors.Is(err, ErrConflict):
		return fiber.NewError(fiber.StatusConflict, "Ya existe un turno abierto")
	case errors.Is(err, ErrPrecondition):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Necesitas un turno abierto y un carrito con productos")
	case errors.Is(err, ErrShiftClosed):
		return fiber.NewError(fiber.StatusNotFound, "El turno no existe o ya está cerrado")
	case errors.Is(err, ErrShiftLedgerCorrupt):
		return fiber.NewError(fiber.StatusInternalServerError, "Inconsistencia en los turnos, contacta al administrador")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Error interno procesando la operación")
	}
}

func shiftResponse(shift *models.Shift) ShiftResponse {
	res := ShiftResponse{
		ID:          shift.ID,
		SucursalID:  shift.BranchID,
		Inicial:     shift.OpeningFloat,
		Final:       shift.ClosingFloat,
		FechaInicio: shift.OpenedAt.Format(time.RFC3339),
	}
	if shift.ClosedAt != nil {
		f := shift.ClosedAt.Format(time.RFC3339)
		res.FechaFin = &f
	}
	return res
}

// -------------------------------------------------
// GET /api/pos/shift
// -------------------------------------------------
func GetShiftHandler(shifts *ShiftService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		workerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		shift, err := shifts.GetOpen(workerID)
		if err != nil {
			return mapErr(err)
		}
		if shift == nil {
			return fiber.NewError(fiber.StatusNotFound, "No hay un turno abierto")
		}
		return c.JSON(shiftResponse(shift))
	}
}

// -------------------------------------------------
// POST /api/pos/shift/open
// -------------------------------------------------
func OpenShiftHandler(shifts *ShiftService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		workerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		branchID, err := auth.CurrentBranchID(c)
		if err != nil {
			return err
		}

		var body struct {
			Inicial int64 `json:"efectivo_inicial"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		shift, err := shifts.Open(workerID, branchID, body.Inicial)
		if err != nil {
			if errors.Is(err, ErrValidation) {
				return fiber.NewError(fiber.StatusBadRequest, "El efectivo inicial no puede ser negativo")
			}
			return mapErr(err)
		}
		return c.Status(fiber.StatusCreated).JSON(shiftResponse(shift))
	}
}

// -------------------------------------------------
// POST /api/pos/shift/close
// -------------------------------------------------
func CloseShiftHandler(shifts *ShiftService, store *SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		workerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		open, err := shifts.GetOpen(workerID)
		if err != nil {
			return mapErr(err)
		}
		if open == nil {
			return fiber.NewError(fiber.StatusNotFound, "No hay un turno abierto")
		}

		closed, err := shifts.Close(open.ID)
		if err != nil {
			return mapErr(err)
		}

		// La venta a medio armar se descarta junto con el turno.
		store.Drop(workerID)

		return c.JSON(shiftResponse(closed))
	}
}

// -------------------------------------------------
// GET /api/pos/products — productos con stock en la sucursal del trabajador
// -------------------------------------------------
func ListPOSProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := auth.CurrentBranchID(c)
		if err != nil {
			return err
		}

		var stocks []models.BranchStock
		if err := database.DB.
			Preload("Product").Preload("Product.Category").
			Where("branch_id = ? AND stock > 0", branchID).
			Find(&stocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron cargar los productos")
		}

		res := make([]POSProductResponse, 0, len(stocks))
		for _, bs := range stocks {
			res = append(res, POSProductResponse{
				ID:          bs.Product.ID,
				Nombre:      bs.Product.Name,
				Descripcion: bs.Product.Description,
				Precio:      bs.Product.Price,
				Categoria:   bs.Product.Category.Name,
				Stock:       bs.Stock,
			})
		}
		return c.JSON(res)
	}
}

func cartResponse(cart *Cart) CartResponse {
	lines := cart.Lines()
	res := CartResponse{
		Lineas:     make([]CartLineResponse, 0, len(lines)),
		TotalItems: cart.TotalItems(),
		Total:      cart.TotalPrice(),
	}
	for _, line := range lines {
		res.Lineas = append(res.Lineas, CartLineResponse{
			ProductoID: line.Product.ID,
			Nombre:     line.Product.Name,
			Precio:     line.Product.Price,
			Cantidad:   line.Quantity,
			Subtotal:   line.Product.Price * int64(line.Quantity),
		})
	}
	return res
}

// -------------------------------------------------
// GET /api/pos/cart
// -------------------------------------------------
func GetCartHandler(store *SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		workerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var res CartResponse
		_ = store.With(workerID, func(cart *Cart) error {
			res = cartResponse(cart)
			return nil
		})
		return c.JSON(res)
	}
}

// -------------------------------------------------
// POST /api/pos/cart — agrega un producto al carrito
// -------------------------------------------------
func AddCartItemHandler(store *SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		workerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		branchID, err := auth.CurrentBranchID(c)
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
		if body.Cantidad == 0 {
			body.Cantidad = 1
		}

		var product models.Product
		if err := database.DB.First(&product, body.ProductoID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
		}

		var bs models.BranchStock
		stock := 0
		if err := database.DB.
			Where("product_id = ? AND branch_id = ?", product.ID, branchID).
			First(&bs).Error; err == nil {
			stock = bs.Stock
		}

		snapshot := CartProduct{
			ID:    product.ID,
			Name:  product.Name,
			Price: product.Price,
			Stock: stock,
		}

		var res CartResponse
		err = store.With(workerID, func(cart *Cart) error {
			if err := cart.Add(snapshot, body.Cantidad); err != nil {
				return err
			}
			res = cartResponse(cart)
			return nil
		})
		if err != nil {
			return mapErr(err)
		}
		return c.JSON(res)
	}
}

// -------------------------------------------------
// PUT /api/pos/cart/:productId — fija la cantidad (0 elimina)
// -------------------------------------------------
func SetCartQuantityHandler(store *SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		workerID, err := auth.CurrentUserID(c)
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

		var res CartResponse
		err = store.With(workerID, func(cart *Cart) error {
			if err := cart.SetQuantity(uint(productID), body.Cantidad); err != nil {
				return err
			}
			res = cartResponse(cart)
			return nil
		})
		if err != nil {
			if errors.Is(err, ErrValidation) {
				return fiber.NewError(fiber.StatusNotFound, "El producto no está en el carrito")
			}
			return mapErr(err)
		}
		return c.JSON(res)
	}
}

// -------------------------------------------------
// DELETE /api/pos/cart — vacía el carrito
// -------------------------------------------------
func ClearCartHandler(store *SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		workerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		_ = store.With(workerID, func(cart *Cart) error {
			cart.Clear()
			return nil
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------------------------------
// POST /api/pos/checkout — cobra el carrito del turno
// -------------------------------------------------
func CheckoutHandler(store *SessionStore, sales *SaleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		workerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		branchID, err := auth.CurrentBranchID(c)
		if err != nil {
			return err
		}

		var body struct {
			MetodoPago models.PaymentMethod `json:"metodo_pago"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if !body.MetodoPago.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Método de pago inválido (efectivo|tarjeta|transferencia|webpay|otro)")
		}

		var sale *models.Sale
		err = store.With(workerID, func(cart *Cart) error {
			s, err := sales.Process(cart, workerID, branchID, body.MetodoPago)
			if err != nil {
				return err
			}
			// El carrito se vacía solo después de un cobro exitoso.
			cart.Clear()
			sale = s
			return nil
		})
		if err != nil {
			return mapErr(err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":          sale.ID,
			"monto_total": sale.Total,
			"metodo_pago": sale.Method,
			"tipo_venta":  sale.Kind,
			"fecha":       sale.Date.Format(time.RFC3339),
		})
	}
}
