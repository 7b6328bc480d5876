package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tienda-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".mp4":  true,
}

// POST /api/admin/media — sube una foto/video de producto al disco local
// y devuelve la URL pública. El nombre de archivo es un uuid para evitar
// colisiones y nombres controlados por el cliente.
func UploadHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "No se envió ningún archivo")
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !allowedExtensions[ext] {
			return fiber.NewError(fiber.StatusBadRequest, "Tipo de archivo no permitido (jpg, jpeg, png, webp, mp4)")
		}

		if err := os.MkdirAll(cfg.MediaPath, 0o755); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo preparar la carpeta de medios")
		}

		filename := uuid.NewString() + ext
		dest := filepath.Join(cfg.MediaPath, filename)

		if err := c.SaveFile(file, dest); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar el archivo")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"filename": filename,
			"url":      "/media/" + filename,
		})
	}
}

// DELETE /api/admin/media/:filename
func DeleteHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filename := c.Params("filename")

		// El nombre viene de una URL; cualquier separador es un intento
		// de salir de la carpeta de medios.
		if filename == "" || strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
			return fiber.NewError(fiber.StatusBadRequest, "Nombre de archivo inválido")
		}

		path := filepath.Join(cfg.MediaPath, filename)
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				return fiber.NewError(fiber.StatusNotFound, "Archivo no encontrado")
			}
			return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("No se pudo eliminar: %v", err))
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
