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

// CompanyHandler manages carriers.
type CompanyHandler struct {
	db      *gorm.DB
	storage *storage.Local
}

// NewCompanyHandler constructs CompanyHandler.
func NewCompanyHandler(db *gorm.DB, store *storage.Local) *CompanyHandler {
	return &CompanyHandler{db: db, storage: store}
}

// ListCompanies returns companies, newest first, optionally filtered by tipo.
func (h *CompanyHandler) ListCompanies(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := applyActiveFilter(h.db.Model(&models.Company{}), c.Query("activo"))

	if v := strings.TrimSpace(c.Query("tipo")); v != "" {
		query = query.Where("tipo = ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	items := []models.Company{}
	if err := pg.Apply(query).Order("created_at desc").Find(&items).Error; err != nil {
		return err
	}

	resp := fiber.Map{"success": true, "data": items}
	if pg.Enabled {
		resp["pagination"] = pg.Meta(total)
	}
	return c.JSON(resp)
}

// GetCompany returns a single company by ID.
func (h *CompanyHandler) GetCompany(c *fiber.Ctx) error {
	item, err := h.find(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

type companyRequest struct {
	Name        string `json:"nombre" form:"nombre"`
	Type        string `json:"tipo" form:"tipo"`
	Logo        string `json:"logo" form:"logo"`
	Description string `json:"descripcion" form:"descripcion"`
	Website     string `json:"sitio_web" form:"sitio_web"`
}

// CreateCompany persists a new active company. The logo can be sent as a
// `logo` multipart file or as an already uploaded path.
func (h *CompanyHandler) CreateCompany(c *fiber.Ctx) error {
	var req companyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Type) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "nombre and tipo are required")
	}

	item := models.Company{
		Name:        strings.TrimSpace(req.Name),
		Type:        strings.TrimSpace(req.Type),
		Logo:        req.Logo,
		Description: req.Description,
		Website:     req.Website,
		Active:      true,
	}

	uploaded := ""
	if fh, err := c.FormFile("logo"); err == nil {
		path, err := h.storage.Save(c, fh, "empresas")
		if err != nil {
			return err
		}
		item.Logo = path
		uploaded = path
	}

	if err := h.db.Create(&item).Error; err != nil {
		h.removeFile(uploaded)
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

// UpdateCompany writes only the fields present in the request.
func (h *CompanyHandler) UpdateCompany(c *fiber.Ctx) error {
	item, err := h.find(c)
	if err != nil {
		return err
	}

	var patch companyPatch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	columns := patch.columns()

	previousLogo := item.Logo
	uploaded := ""
	if fh, err := c.FormFile("logo"); err == nil {
		path, err := h.storage.Save(c, fh, "empresas")
		if err != nil {
			return err
		}
		columns["logo"] = path
		uploaded = path
	}

	if len(columns) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&item).Updates(map[string]interface{}(columns)).Error; err != nil {
		h.removeFile(uploaded)
		return err
	}

	if newLogo, ok := columns["logo"].(string); ok && previousLogo != "" && newLogo != previousLogo {
		h.removeFile(previousLogo)
	}

	if err := h.db.First(&item, "id = ?", item.ID).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

// DeleteCompany deactivates a company; its equipment and trips keep pointing at it.
func (h *CompanyHandler) DeleteCompany(c *fiber.Ctx) error {
	item, err := h.find(c)
	if err != nil {
		return err
	}

	if err := h.db.Model(&item).Update("activo", false).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "company deactivated"})
}

func (h *CompanyHandler) find(c *fiber.Ctx) (models.Company, error) {
	var item models.Company
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return item, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return item, fiber.NewError(fiber.StatusNotFound, "company not found")
		}
		return item, err
	}
	return item, nil
}

func (h *CompanyHandler) removeFile(path string) {
	if path == "" {
		return
	}
	if err := h.storage.Remove(path); err != nil {
		log.Printf("failed to remove company logo %s: %v", path, err)
	}
}

// RegisterCompanyRoutes attaches company routes.
func (h *CompanyHandler) RegisterCompanyRoutes(router fiber.Router) {
	router.Get("/", h.ListCompanies)
	router.Get("/:id", h.GetCompany)
	router.Post("/", h.CreateCompany)
	router.Put("/:id", h.UpdateCompany)
	router.Delete("/:id", h.DeleteCompany)
}
