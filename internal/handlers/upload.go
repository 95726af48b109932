package handlers

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/example/viajes/internal/storage"
)

const maxFilesPerUpload = 10

// UploadHandler stores images for the admin panel.
type UploadHandler struct {
	storage *storage.Local
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(store *storage.Local) *UploadHandler {
	return &UploadHandler{storage: store}
}

// Upload stores the `image` file in the optional `folder`.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "image file is required")
	}

	if err := h.storage.Validate(fh); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	url, err := h.storage.Save(c, fh, c.FormValue("folder"))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"url":      url,
		"filename": fh.Filename,
		"size":     fh.Size,
	})
}

// UploadMultiple stores every `images` file. Validation runs on the whole
// batch before anything is written.
func (h *UploadHandler) UploadMultiple(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart form expected")
	}

	files := form.File["images"]
	if len(files) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "at least one image is required")
	}
	if len(files) > maxFilesPerUpload {
		return fiber.NewError(fiber.StatusBadRequest, "too many files")
	}

	for _, fh := range files {
		if err := h.storage.Validate(fh); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fh.Filename+": "+err.Error())
		}
	}

	folder := c.FormValue("folder")
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := h.storage.Save(c, fh, folder)
		if err != nil {
			return err
		}
		urls = append(urls, url)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "urls": urls})
}

type deleteImageRequest struct {
	URL string `json:"url"`
}

// DeleteImage removes a previously uploaded file.
func (h *UploadHandler) DeleteImage(c *fiber.Ctx) error {
	var req deleteImageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.URL == "" {
		return fiber.NewError(fiber.StatusBadRequest, "url is required")
	}

	if err := h.storage.Remove(req.URL); err != nil {
		switch {
		case errors.Is(err, storage.ErrOutsideRoot):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, os.ErrNotExist):
			return fiber.NewError(fiber.StatusNotFound, "file not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "image deleted"})
}

// RegisterUploadRoutes attaches upload routes.
func (h *UploadHandler) RegisterUploadRoutes(router fiber.Router) {
	router.Post("/upload", h.Upload)
	router.Post("/upload-multiple", h.UploadMultiple)
	router.Delete("/delete-image", h.DeleteImage)
}
