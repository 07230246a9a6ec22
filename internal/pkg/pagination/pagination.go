package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// DefaultLimit is the default number of items per page
const DefaultLimit = 20

// MaxLimit is the maximum number of items per page
const MaxLimit = 100

// Params are the page window requested by the client
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// Meta describes where a page sits in the full result
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Page is one page of items
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

// GetParams reads ?page and ?limit, clamping both to sane values
func GetParams(c *fiber.Ctx) Params {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	switch {
	case err != nil || limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// GetMeta calculates pagination metadata
func GetMeta(params Params, total int64) Meta {
	totalPages := int((total + int64(params.Limit) - 1) / int64(params.Limit))

	return Meta{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// NewPage wraps items with their metadata. An empty result encodes as [].
func NewPage[T any](items []T, params Params, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Data: items, Meta: GetMeta(params, total)}
}
