package pos

import (
	"errors"
	"sort"
	"time"

	"tienda-backend/internal/models"

	"gorm.io/gorm"
)

// SaleService ejecuta la única secuencia multi-paso con invariantes del
// sistema: registrar una venta sin dejar nunca stock negativo ni una
// venta parcialmente escrita. Todo el cobro corre dentro de UNA
// transacción; cualquier fallo hace rollback completo.
type SaleService struct {
	db     *gorm.DB
	shifts *ShiftService
	now    func() time.Time
}

func NewSaleService(db *gorm.DB, shifts *ShiftService) *SaleService {
	return &SaleService{db: db, shifts: shifts, now: time.Now}
}

// Process cobra el carrito de una venta presencial.
//
// Orden dentro de la transacción: revalidar stock contra la base de
// datos (la foto del carrito puede estar vieja), crear la venta, crear
// los detalles y descontar stock. El descuento es un UPDATE relativo
// con guardia (stock = stock - n, solo si stock >= n), no un
// read-modify-write, así ventas concurrentes sobre el mismo producto
// no pueden sobrevender.
func (s *SaleService) Process(cart *Cart, workerID, branchID uint, method models.PaymentMethod) (*models.Sale, error) {
	if !method.Valid() {
		return nil, ErrValidation
	}
	if cart.Empty() {
		return nil, ErrPrecondition
	}

	shift, err := s.shifts.GetOpen(workerID)
	if err != nil {
		return nil, err
	}
	if shift == nil || shift.BranchID != branchID {
		return nil, ErrPrecondition
	}

	lines := cart.Lines()

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, storeErr(tx.Error)
	}

	// Revalidación contra la fuente de verdad, no contra la foto local.
	for _, line := range lines {
		var bs models.BranchStock
		err := tx.Where("product_id = ? AND branch_id = ?", line.Product.ID, branchID).First(&bs).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tx.Rollback()
			return nil, &InsufficientStockError{
				ProductID: line.Product.ID,
				Name:      line.Product.Name,
				Available: 0,
				Requested: line.Quantity,
			}
		}
		if err != nil {
			tx.Rollback()
			return nil, storeErr(err)
		}
		if bs.Stock < line.Quantity {
			tx.Rollback()
			return nil, &InsufficientStockError{
				ProductID: line.Product.ID,
				Name:      line.Product.Name,
				Available: bs.Stock,
				Requested: line.Quantity,
			}
		}
	}

	sale := models.Sale{
		WorkerID: &workerID,
		BranchID: branchID,
		Total:    cart.TotalPrice(),
		Method:   method,
		Kind:     models.SaleFisica,
		Date:     s.now(),
	}
	if err := tx.Create(&sale).Error; err != nil {
		tx.Rollback()
		return nil, storeErr(err)
	}

	for _, line := range lines {
		saleLine := models.SaleLine{
			SaleID:    sale.ID,
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			UnitPrice: line.Product.Price,
		}
		if err := tx.Create(&saleLine).Error; err != nil {
			tx.Rollback()
			return nil, storeErr(err)
		}

		if err := decrementStock(tx, line.Product.ID, branchID, line.Quantity, sale.ID); err != nil {
			tx.Rollback()
			if errors.Is(err, errStockDepleted) {
				// Otra venta ganó la carrera entre la revalidación y el descuento.
				return nil, &InsufficientStockError{
					ProductID: line.Product.ID,
					Name:      line.Product.Name,
					Available: 0,
					Requested: line.Quantity,
				}
			}
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storeErr(err)
	}
	return &sale, nil
}

// CheckoutItem es una línea de compra online (el carrito del cliente
// vive en la base de datos, no en memoria).
type CheckoutItem struct {
	ProductID uint
	Quantity  int
}

// ProcessOnline crea el pedido y su venta online en una sola
// transacción. No hay trabajador ni turno: WorkerID queda NULL.
func (s *SaleService) ProcessOnline(customerID, branchID uint, items []CheckoutItem, method models.PaymentMethod) (*models.Order, error) {
	if !method.Valid() {
		return nil, ErrValidation
	}
	if len(items) == 0 {
		return nil, ErrPrecondition
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, ErrValidation
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, storeErr(tx.Error)
	}

	var total int64
	products := make(map[uint]models.Product, len(items))
	for _, it := range items {
		var p models.Product
		if err := tx.First(&p, it.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrValidation
			}
			return nil, storeErr(err)
		}
		products[it.ProductID] = p

		var bs models.BranchStock
		err := tx.Where("product_id = ? AND branch_id = ?", it.ProductID, branchID).First(&bs).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && bs.Stock < it.Quantity) {
			tx.Rollback()
			return nil, &InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Available: bs.Stock,
				Requested: it.Quantity,
			}
		}
		if err != nil {
			tx.Rollback()
			return nil, storeErr(err)
		}

		total += p.Price * int64(it.Quantity)
	}

	sale := models.Sale{
		BranchID: branchID,
		Total:    total,
		Method:   method,
		Kind:     models.SaleOnline,
		Date:     s.now(),
	}
	if err := tx.Create(&sale).Error; err != nil {
		tx.Rollback()
		return nil, storeErr(err)
	}

	order := models.Order{
		CustomerID: customerID,
		BranchID:   branchID,
		Status:     models.OrderPreparacion,
		SaleID:     &sale.ID,
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, storeErr(err)
	}

	for _, it := range items {
		p := products[it.ProductID]

		saleLine := models.SaleLine{
			SaleID:    sale.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
		}
		if err := tx.Create(&saleLine).Error; err != nil {
			tx.Rollback()
			return nil, storeErr(err)
		}

		orderLine := models.OrderLine{
			OrderID:   order.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		}
		if err := tx.Create(&orderLine).Error; err != nil {
			tx.Rollback()
			return nil, storeErr(err)
		}

		if err := decrementStock(tx, it.ProductID, branchID, it.Quantity, sale.ID); err != nil {
			tx.Rollback()
			if errors.Is(err, errStockDepleted) {
				return nil, &InsufficientStockError{
					ProductID: p.ID,
					Name:      p.Name,
					Available: 0,
					Requested: it.Quantity,
				}
			}
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storeErr(err)
	}

	order.Sale = &sale
	return &order, nil
}

// Void anula una venta y repone el stock de cada línea con movimientos
// inversos. Una venta ya anulada no se anula dos veces.
func (s *SaleService) Void(saleID uint, reason string) (*models.Sale, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, storeErr(tx.Error)
	}

	var sale models.Sale
	if err := tx.Preload("Lines").First(&sale, saleID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrValidation
		}
		return nil, storeErr(err)
	}
	if sale.Voided {
		tx.Rollback()
		return nil, ErrConflict
	}

	sale.Voided = true
	sale.VoidReason = reason
	if err := tx.Save(&sale).Error; err != nil {
		tx.Rollback()
		return nil, storeErr(err)
	}

	for _, line := range sale.Lines {
		if err := incrementStock(tx, line.ProductID, sale.BranchID, line.Quantity, sale.ID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storeErr(err)
	}
	return &sale, nil
}

var errStockDepleted = errors.New("stock agotado en el descuento")

// decrementStock aplica el descuento atómico con guardia y deja el
// movimiento en el ledger. RowsAffected == 0 significa que el stock
// cambió entre la revalidación y el descuento.
func decrementStock(tx *gorm.DB, productID, branchID uint, qty int, saleID uint) error {
	res := tx.Model(&models.BranchStock{}).
		Where("product_id = ? AND branch_id = ? AND stock >= ?", productID, branchID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return errStockDepleted
	}

	var bs models.BranchStock
	if err := tx.Where("product_id = ? AND branch_id = ?", productID, branchID).First(&bs).Error; err != nil {
		return storeErr(err)
	}

	movement := models.StockMovement{
		ProductID:   productID,
		BranchID:    branchID,
		Kind:        models.MovementVenta,
		Delta:       -qty,
		StockBefore: bs.Stock + qty,
		StockAfter:  bs.Stock,
		SaleID:      &saleID,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func incrementStock(tx *gorm.DB, productID, branchID uint, qty int, saleID uint) error {
	res := tx.Model(&models.BranchStock{}).
		Where("product_id = ? AND branch_id = ?", productID, branchID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		// La fila existía al vender; si desapareció, se recrea con la reposición.
		bs := models.BranchStock{ProductID: productID, BranchID: branchID, Stock: qty}
		if err := tx.Create(&bs).Error; err != nil {
			return storeErr(err)
		}
	}

	var bs models.BranchStock
	if err := tx.Where("product_id = ? AND branch_id = ?", productID, branchID).First(&bs).Error; err != nil {
		return storeErr(err)
	}

	movement := models.StockMovement{
		ProductID:   productID,
		BranchID:    branchID,
		Kind:        models.MovementAnulacion,
		Delta:       qty,
		StockBefore: bs.Stock - qty,
		StockAfter:  bs.Stock,
		SaleID:      &saleID,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return storeErr(err)
	}
	return nil
}
