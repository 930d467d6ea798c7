package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inkwell/backend/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxOffset bounds (page-1)*limit so deep pages cannot overflow the OFFSET.
	MaxOffset = 10_000_000
)

// SortField is a column list endpoints may order by.
type SortField string

const (
	SortByCreatedAt   SortField = "createdAt"
	SortByPublishedAt SortField = "publishedAt"
)

// SortOrder is the direction of the primary sort.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// PageRequest holds 1-based pagination and ordering options.
type PageRequest struct {
	Page   int
	Limit  int
	SortBy SortField
	Order  SortOrder
}

// Normalize fills zero values with defaults and clamps out-of-range values.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if last := maxPage(p.Limit); p.Page > last {
		p.Page = last
	}
	if p.SortBy != SortByPublishedAt {
		p.SortBy = SortByCreatedAt
	}
	if p.Order != OrderAsc {
		p.Order = OrderDesc
	}
	return p
}

func maxPage(limit int) int {
	return MaxOffset/limit + 1
}

// Offset returns the number of rows to skip for the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one page of results.
type Page[T any] struct {
	Data        []T `json:"data"`
	Total       int `json:"total"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
}

// NewPage builds a Page; totalPages is ceil(total/limit).
func NewPage[T any](data []T, total int, req PageRequest) Page[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if req.Limit > 0 {
		totalPages = (total + req.Limit - 1) / req.Limit
	}
	return Page[T]{
		Data:        data,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: req.Page,
	}
}

// ParsePageRequest reads raw page, limit, sortBy and order query values. Empty values take
// defaults; malformed or out-of-range values are INVALID_INPUT.
func ParsePageRequest(page, limit, sortBy, order string) (PageRequest, error) {
	var p PageRequest
	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return p, apperr.InvalidInput("page must be a positive integer")
		}
		p.Page = n
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > MaxLimit {
			return p, apperr.InvalidInput("limit must be between 1 and 100")
		}
		p.Limit = n
	}
	switch s := SortField(sortBy); s {
	case "", SortByCreatedAt, SortByPublishedAt:
		p.SortBy = s
	default:
		return p, apperr.InvalidInput("sortBy must be createdAt or publishedAt")
	}
	switch o := SortOrder(strings.ToLower(order)); o {
	case "", OrderAsc, OrderDesc:
		p.Order = o
	default:
		return p, apperr.InvalidInput("order must be asc or desc")
	}
	n := p.Normalize()
	if p.Page > n.Page {
		return p, apperr.InvalidInput(fmt.Sprintf("page must not exceed %d for limit %d", n.Page, n.Limit))
	}
	return n, nil
}
