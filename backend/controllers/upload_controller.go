package controllers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"chemsnap/backend/config"
	"chemsnap/backend/utils"
)

// UploadController is the blob-store boundary: files land on local disk under
// UploadDir and are served back as static URLs.
type UploadController struct {
	Cfg *config.Config
}

func NewUploadController(cfg *config.Config) *UploadController {
	return &UploadController{Cfg: cfg}
}

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// Upload godoc
// @Summary Upload a file
// @Description Stores a multipart file and returns its URL.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /uploads [post]
func (uc *UploadController) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.BadRequest(c, "Missing file")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return utils.BadRequest(c, "File type not allowed")
	}

	if err := os.MkdirAll(uc.Cfg.UploadDir, 0o755); err != nil {
		return utils.InternalServerError(c, "Could not prepare upload directory")
	}

	name := uuid.NewString() + ext
	dest := filepath.Join(uc.Cfg.UploadDir, name)
	if err := c.SaveFile(file, dest); err != nil {
		return utils.InternalServerError(c, "Could not save file")
	}

	return utils.Created(c, fiber.Map{
		"url":      "/uploads/" + name,
		"filename": file.Filename,
	})
}
