package pos

import (
	"errors"
	"time"

	"tienda-backend/internal/models"

	"gorm.io/gorm"
)

// ShiftService administra el ciclo de vida de los turnos de caja:
// NoShift -> Abierto -> Cerrado (terminal). Un turno cerrado no se
// reabre; un turno nuevo es una entidad nueva.
type ShiftService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewShiftService(db *gorm.DB) *ShiftService {
	return &ShiftService{db: db, now: time.Now}
}

// Open abre un turno con el efectivo inicial declarado.
func (s *ShiftService) Open(workerID, branchID uint, openingFloat int64) (*models.Shift, error) {
	if openingFloat < 0 {
		return nil, ErrValidation
	}

	var count int64
	if err := s.db.Model(&models.Shift{}).
		Where("worker_id = ? AND closed_at IS NULL", workerID).
		Count(&count).Error; err != nil {
		return nil, storeErr(err)
	}
	if count > 0 {
		return nil, ErrConflict
	}

	shift := models.Shift{
		WorkerID:     workerID,
		BranchID:     branchID,
		OpeningFloat: openingFloat,
		OpenedAt:     s.now(),
	}
	if err := s.db.Create(&shift).Error; err != nil {
		return nil, storeErr(err)
	}
	return &shift, nil
}

// GetOpen devuelve el turno abierto del trabajador, o nil si no hay.
// Más de un turno abierto es corrupción del ledger y se reporta como
// tal, nunca se elige uno al azar.
func (s *ShiftService) GetOpen(workerID uint) (*models.Shift, error) {
	var shifts []models.Shift
	if err := s.db.
		Where("worker_id = ? AND closed_at IS NULL", workerID).
		Find(&shifts).Error; err != nil {
		return nil, storeErr(err)
	}

	switch len(shifts) {
	case 0:
		return nil, nil
	case 1:
		return &shifts[0], nil
	default:
		return nil, ErrShiftLedgerCorrupt
	}
}

// Close cierra el turno. El efectivo final se calcula como el inicial
// más la suma de ventas en efectivo (no anuladas) del trabajador desde
// la apertura del turno.
func (s *ShiftService) Close(shiftID uint) (*models.Shift, error) {
	var shift models.Shift
	if err := s.db.First(&shift, shiftID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftClosed
		}
		return nil, storeErr(err)
	}
	if shift.ClosedAt != nil {
		return nil, ErrShiftClosed
	}

	var cashTotal int64
	if err := s.db.Model(&models.Sale{}).
		Where("worker_id = ? AND method = ? AND voided = ? AND date >= ?",
			shift.WorkerID, models.PayEfectivo, false, shift.OpenedAt).
		Select("COALESCE(SUM(total), 0)").
		Scan(&cashTotal).Error; err != nil {
		return nil, storeErr(err)
	}

	closedAt := s.now()
	closingFloat := shift.OpeningFloat + cashTotal
	shift.ClosedAt = &closedAt
	shift.ClosingFloat = &closingFloat

	if err := s.db.Save(&shift).Error; err != nil {
		return nil, storeErr(err)
	}
	return &shift, nil
}
