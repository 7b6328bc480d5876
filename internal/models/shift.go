package models

import "time"

// Shift (turno) es la sesión de caja de un trabajador en una sucursal.
// Ciclo de vida: abierto (ClosedAt NULL) -> cerrado (terminal).
// A lo más un turno abierto por trabajador.
type Shift struct {
	ID       uint `gorm:"primaryKey"`
	WorkerID uint `gorm:"index;not null"`
	Worker   User `gorm:"foreignKey:WorkerID"`
	BranchID uint `gorm:"index;not null"`
	Branch   Branch
	// Efectivo declarado al abrir la caja.
	OpeningFloat int64 `gorm:"not null"`
	// Efectivo calculado al cerrar: inicial + ventas en efectivo del turno.
	ClosingFloat *int64
	OpenedAt     time.Time `gorm:"not null"`
	ClosedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
