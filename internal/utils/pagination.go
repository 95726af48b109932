package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Pagination holds pagination parameters.
type Pagination struct {
	Page    int
	Limit   int
	Offset  int
	Enabled bool
}

// ParsePagination reads page and limit query params with sane defaults.
// Pagination is only enabled when the client asks for it.
func ParsePagination(c *fiber.Ctx) Pagination {
	rawPage, rawLimit := c.Query("page"), c.Query("limit")
	page := parseInt(rawPage, 1)
	limit := parseInt(rawLimit, 20)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}

	return Pagination{
		Page:    page,
		Limit:   limit,
		Offset:  (page - 1) * limit,
		Enabled: rawPage != "" || rawLimit != "",
	}
}

// Apply limits the query when pagination is enabled.
func (p Pagination) Apply(query *gorm.DB) *gorm.DB {
	if !p.Enabled {
		return query
	}
	return query.Limit(p.Limit).Offset(p.Offset)
}

// Meta renders the pagination block returned alongside list data.
func (p Pagination) Meta(total int64) fiber.Map {
	return fiber.Map{
		"current_page":   p.Page,
		"items_per_page": p.Limit,
		"total_items":    total,
	}
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
