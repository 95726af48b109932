package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/viajes/internal/models"
	"github.com/example/viajes/internal/storage"
	"github.com/example/viajes/internal/utils"
)

// DestinationHandler manages promoted destinations.
type DestinationHandler struct {
	db      *gorm.DB
	storage *storage.Local
}

// NewDestinationHandler constructs DestinationHandler.
func NewDestinationHandler(db *gorm.DB, store *storage.Local) *DestinationHandler {
	return &DestinationHandler{db: db, storage: store}
}

// ListDestinations returns destinations, featured first then newest.
func (h *DestinationHandler) ListDestinations(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := applyActiveFilter(h.db.Model(&models.Destination{}), c.Query("activo"))

	if v := c.Query("destacado"); v != "" {
		query = query.Where("destacado = ?", truthy(v))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	items := []models.Destination{}
	if err := pg.Apply(query).Order("destacado desc").Order("created_at desc").
		Find(&items).Error; err != nil {
		return err
	}

	resp := fiber.Map{"success": true, "data": items}
	if pg.Enabled {
		resp["pagination"] = pg.Meta(total)
	}
	return c.JSON(resp)
}

// GetDestination returns a single destination by ID.
func (h *DestinationHandler) GetDestination(c *fiber.Ctx) error {
	item, err := h.find(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

type destinationRequest struct {
	Name        string   `json:"nombre" form:"nombre"`
	Price       *float64 `json:"precio" form:"precio"`
	City        string   `json:"ciudad" form:"ciudad"`
	Country     string   `json:"pais" form:"pais"`
	Image       string   `json:"imagen" form:"imagen"`
	Description string   `json:"descripcion" form:"descripcion"`
	Featured    bool     `json:"destacado" form:"destacado"`
}

// CreateDestination persists a new active destination. The image can be
// sent as an `imagen` multipart file or as an already uploaded path.
func (h *DestinationHandler) CreateDestination(c *fiber.Ctx) error {
	var req destinationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Name) == "" || req.Price == nil {
		return fiber.NewError(fiber.StatusBadRequest, "nombre and precio are required")
	}

	item := models.Destination{
		Name:        strings.TrimSpace(req.Name),
		Price:       *req.Price,
		City:        req.City,
		Country:     req.Country,
		Image:       req.Image,
		Description: req.Description,
		Featured:    req.Featured,
		Active:      true,
	}

	uploaded := ""
	if fh, err := c.FormFile("imagen"); err == nil {
		path, err := h.storage.Save(c, fh, "destinos")
		if err != nil {
			return err
		}
		item.Image = path
		uploaded = path
	}

	if err := h.db.Create(&item).Error; err != nil {
		h.removeFile(uploaded)
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

// UpdateDestination writes only the fields present in the request.
func (h *DestinationHandler) UpdateDestination(c *fiber.Ctx) error {
	item, err := h.find(c)
	if err != nil {
		return err
	}

	var patch destinationPatch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	columns := patch.columns()

	previousImage := item.Image
	uploaded := ""
	if fh, err := c.FormFile("imagen"); err == nil {
		path, err := h.storage.Save(c, fh, "destinos")
		if err != nil {
			return err
		}
		columns["imagen"] = path
		uploaded = path
	}

	if len(columns) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&item).Updates(map[string]interface{}(columns)).Error; err != nil {
		h.removeFile(uploaded)
		return err
	}

	if newImage, ok := columns["imagen"].(string); ok && previousImage != "" && newImage != previousImage {
		h.removeFile(previousImage)
	}

	if err := h.db.First(&item, "id = ?", item.ID).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

// DeleteDestination hides a destination without removing the row.
func (h *DestinationHandler) DeleteDestination(c *fiber.Ctx) error {
	item, err := h.find(c)
	if err != nil {
		return err
	}

	if err := h.db.Model(&item).Update("activo", false).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "destination deactivated"})
}

func (h *DestinationHandler) find(c *fiber.Ctx) (models.Destination, error) {
	var item models.Destination
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return item, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return item, fiber.NewError(fiber.StatusNotFound, "destination not found")
		}
		return item, err
	}
	return item, nil
}

func (h *DestinationHandler) removeFile(path string) {
	if path == "" {
		return
	}
	if err := h.storage.Remove(path); err != nil {
		log.Printf("failed to remove destination image %s: %v", path, err)
	}
}

// RegisterDestinationRoutes attaches destination routes.
func (h *DestinationHandler) RegisterDestinationRoutes(router fiber.Router) {
	router.Get("/", h.ListDestinations)
	router.Get("/:id", h.GetDestination)
	router.Post("/", h.CreateDestination)
	router.Put("/:id", h.UpdateDestination)
	router.Delete("/:id", h.DeleteDestination)
}

// applyActiveFilter keeps active rows unless activo=0 (inactive only) or
// activo=all (everything) is requested.
func applyActiveFilter(query *gorm.DB, activo string) *gorm.DB {
	switch strings.ToLower(activo) {
	case "all", "todos":
		return query
	case "0", "false":
		return query.Where("activo = ?", false)
	default:
		return query.Where("activo = ?", true)
	}
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "si", "yes":
		return true
	}
	return false
}
