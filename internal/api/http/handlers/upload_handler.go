package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/storefront-labs/storefront-api/internal/service"
	apperrors "github.com/storefront-labs/storefront-api/pkg/util"
)

// UploadHandler proxies image uploads to the CDN.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler constructs handler.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// AuthParams handles GET /upload/auth.
func (h *UploadHandler) AuthParams(c *fiber.Ctx) error {
	params, err := h.uploads.AuthParams()
	if err != nil {
		return err
	}
	return c.JSON(params)
}

// UploadImage handles POST /upload/image.
func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	header, err := c.FormFile("image")
	if err != nil {
		return apperrors.NewMissingFields("image")
	}
	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	result, err := h.uploads.UploadImage(c.UserContext(), service.ImageUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Folder:      c.FormValue("folder"),
		Body:        file,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":      "Image uploaded successfully",
		"fileId":       result.FileID,
		"name":         result.Name,
		"url":          result.URL,
		"thumbnailUrl": result.ThumbnailURL,
	})
}

// DeleteImage handles DELETE /upload/:fileId.
func (h *UploadHandler) DeleteImage(c *fiber.Ctx) error {
	if err := h.uploads.DeleteImage(c.UserContext(), c.Params("fileId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Image deleted successfully"})
}
