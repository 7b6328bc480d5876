package admin

import (
	"strings"

	"tienda-backend/internal/database"
	"tienda-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type BranchResponse struct {
	ID        uint   `json:"id"`
	Nombre    string `json:"nombre"`
	Direccion string `json:"direccion"`
	CreatedAt string `json:"created_at"`
}

type CreateBranchRequest struct {
	Nombre    string `json:"nombre"`
	Direccion string `json:"direccion"`
}

type UpdateBranchRequest struct {
	Nombre    *string `json:"nombre"`
	Direccion *string `json:"direccion"`
}

func branchResponse(b models.Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID,
		Nombre:    b.Name,
		Direccion: b.Address,
		CreatedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ----------------------------------------
// CRUD de sucursales
// ----------------------------------------

func CreateBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBranchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		body.Nombre = strings.TrimSpace(body.Nombre)
		if body.Nombre == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre de la sucursal no puede estar vacío")
		}

		branch := models.Branch{
			Name:    body.Nombre,
			Address: strings.TrimSpace(body.Direccion),
		}

		if err := database.DB.Create(&branch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear la sucursal")
		}

		return c.Status(fiber.StatusCreated).JSON(branchResponse(branch))
	}
}

func ListBranchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var branches []models.Branch
		if err := database.DB.Find(&branches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las sucursales")
		}

		res := make([]BranchResponse, 0, len(branches))
		for _, b := range branches {
			res = append(res, branchResponse(b))
		}
		return c.JSON(res)
	}
}

func GetBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sucursal no encontrada")
		}
		return c.JSON(branchResponse(branch))
	}
}

func UpdateBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sucursal no encontrada")
		}

		var body UpdateBranchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		if body.Nombre != nil {
			name := strings.TrimSpace(*body.Nombre)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre de la sucursal no puede estar vacío")
			}
			branch.Name = name
		}
		if body.Direccion != nil {
			branch.Address = strings.TrimSpace(*body.Direccion)
		}

		if err := database.DB.Save(&branch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar la sucursal")
		}
		return c.JSON(branchResponse(branch))
	}
}

func DeleteBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var count int64
		database.DB.Model(&models.User{}).Where("branch_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "La sucursal tiene usuarios asignados")
		}

		if err := database.DB.Delete(&models.Branch{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar la sucursal")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
