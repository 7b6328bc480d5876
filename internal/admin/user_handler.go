package admin

import (
	"strings"

	"tienda-backend/internal/database"
	"tienda-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type UserResponse struct {
	ID         uint   `json:"id"`
	Nombre     string `json:"nombre"`
	Email      string `json:"email"`
	Rol        string `json:"rol"`
	SucursalID *uint  `json:"sucursal_id"`
	CreatedAt  string `json:"created_at"`
}

type CreateUserRequest struct {
	Nombre     string          `json:"nombre"`
	Email      string          `json:"email"`
	Password   string          `json:"password"`
	Rol        models.UserRole `json:"rol"`
	SucursalID *uint           `json:"sucursal_id"`
}

type UpdateUserRequest struct {
	Nombre     *string          `json:"nombre"`
	Rol        *models.UserRole `json:"rol"`
	SucursalID *uint            `json:"sucursal_id"`
}

func userResponse(u models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Nombre:     u.Name,
		Email:      u.Email,
		Rol:        string(u.Role),
		SucursalID: u.BranchID,
		CreatedAt:  u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ----------------------------------------
// Gestión de usuarios (solo admin)
// ----------------------------------------

// POST /api/admin/users — crea trabajadores y admins. Los trabajadores
// requieren sucursal asignada.
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.Nombre = strings.TrimSpace(body.Nombre)

		if body.Nombre == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nombre, email y contraseña son obligatorios")
		}
		if !body.Rol.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Rol inválido (admin|trabajador|cliente)")
		}
		if body.Rol == models.RoleTrabajador && body.SucursalID == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Un trabajador necesita una sucursal asignada")
		}

		if body.SucursalID != nil {
			var branch models.Branch
			if err := database.DB.First(&branch, *body.SucursalID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "La sucursal no existe")
			}
		}

		var count int64
		database.DB.Model(&models.User{}).Where("email = ?", body.Email).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Ya existe un usuario con ese email")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo procesar la contraseña")
		}

		user := models.User{
			Name:         body.Nombre,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         body.Rol,
			BranchID:     body.SucursalID,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el usuario")
		}

		return c.Status(fiber.StatusCreated).JSON(userResponse(user))
	}
}

// GET /api/admin/users?rol=trabajador
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.User{})

		if rol := c.Query("rol"); rol != "" {
			if !models.UserRole(rol).Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Rol inválido")
			}
			dbq = dbq.Where("role = ?", rol)
		}

		var users []models.User
		if err := dbq.Order("created_at desc").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los usuarios")
		}

		res := make([]UserResponse, 0, len(users))
		for _, u := range users {
			res = append(res, userResponse(u))
		}
		return c.JSON(res)
	}
}

// PUT /api/admin/users/:id
func UpdateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Usuario no encontrado")
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		if body.Nombre != nil {
			name := strings.TrimSpace(*body.Nombre)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede estar vacío")
			}
			user.Name = name
		}
		if body.Rol != nil {
			if !body.Rol.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Rol inválido")
			}
			user.Role = *body.Rol
		}
		if body.SucursalID != nil {
			var branch models.Branch
			if err := database.DB.First(&branch, *body.SucursalID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "La sucursal no existe")
			}
			user.BranchID = body.SucursalID
		}
		if user.Role == models.RoleTrabajador && user.BranchID == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Un trabajador necesita una sucursal asignada")
		}

		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el usuario")
		}
		return c.JSON(userResponse(user))
	}
}

// DELETE /api/admin/users/:id
func DeleteUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var count int64
		database.DB.Model(&models.Shift{}).
			Where("worker_id = ? AND closed_at IS NULL", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "El usuario tiene un turno abierto")
		}

		if err := database.DB.Delete(&models.User{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el usuario")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
