package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultPerPage is the standard page size when one is not provided.
	DefaultPerPage = 25
	// MaxPerPage caps how many rows any list query can request.
	MaxPerPage = 100
)

// Params holds page/per-page inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Page describes the pagination block returned alongside list responses.
type Page struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// FromQuery parses page and per_page query values, applying defaults and caps.
func FromQuery(values url.Values) Params {
	return Params{
		Page:    parsePositive(values.Get("page"), 1),
		PerPage: NormalizePerPage(parsePositive(values.Get("per_page"), 0)),
	}
}

// NormalizePerPage enforces the configured default and maximum page sizes.
func NormalizePerPage(perPage int) int {
	if perPage <= 0 {
		return DefaultPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * NormalizePerPage(p.PerPage)
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return NormalizePerPage(p.PerPage)
}

// BuildPage assembles the response pagination block for a total row count.
func (p Params) BuildPage(total int64) Page {
	perPage := NormalizePerPage(p.PerPage)
	page := p.Page
	if page < 1 {
		page = 1
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return Page{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

func parsePositive(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
