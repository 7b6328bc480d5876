package models

import "time"

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleTrabajador UserRole = "trabajador"
	RoleCliente    UserRole = "cliente"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTrabajador, RoleCliente:
		return true
	}
	return false
}

type User struct {
	ID           uint `gorm:"primaryKey"`
	BranchID     *uint
	Branch       *Branch
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
