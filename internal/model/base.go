package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Base contains common fields for console-owned records
type Base struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page" binding:"gte=0"`
	PageSize int `json:"page_size" form:"page_size" binding:"gte=0,lte=100"`
}

// SortOrder represents sorting parameters
type SortOrder struct {
	Field string `json:"field" form:"sort_field"`
	Dir   string `json:"direction" form:"sort_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// ListParams is the query every list page sends upstream.
type ListParams struct {
	Pagination
	SortOrder
	SearchTerm string `json:"search_term" form:"search"`
	Status     string `json:"status" form:"status"`
}

// Normalize applies defaults and bounds the page size.
func (p ListParams) Normalize() ListParams {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	p.SearchTerm = strings.TrimSpace(p.SearchTerm)
	p.Dir = strings.ToLower(p.Dir)
	if p.Field == "" {
		p.Dir = ""
	} else if p.Dir != "desc" {
		p.Dir = "asc"
	}
	return p
}

// ListResponse is the upstream list envelope.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}
