package pagination

import (
	"math"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage bounds page so the skip stays positive.
	MaxPage = math.MaxInt32
)

// Pagination represents pagination metadata
type Pagination struct {
	Page  int
	Limit int
	Total int64
	Pages int
}

// PaginationRequest represents a pagination request from client
type PaginationRequest struct {
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

// Metadata is the catalog-facing summary returned next to a page of books.
type Metadata struct {
	CurrentPage int   `json:"currentPage" example:"1"`
	TotalPages  int   `json:"totalPages" example:"3"`
	TotalBooks  int64 `json:"totalBooks" example:"23"`
}

// New creates a new pagination instance
func New(page, limit int, total int64) *Pagination {
	req := normalize(page, limit)

	return &Pagination{
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(req.Limit))),
	}
}

// FromRequest creates pagination from HTTP request parameters
func FromRequest(pageStr, limitStr string) *PaginationRequest {
	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)
	return normalize(page, limit)
}

func normalize(page, limit int) *PaginationRequest {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return &PaginationRequest{Page: page, Limit: limit}
}

// Skip returns the number of documents to skip for this request
func (r *PaginationRequest) Skip() int64 {
	return int64(r.Page-1) * int64(r.Limit)
}

// Metadata converts the pagination into the catalog metadata shape
func (p *Pagination) Metadata() Metadata {
	return Metadata{
		CurrentPage: p.Page,
		TotalPages:  p.Pages,
		TotalBooks:  p.Total,
	}
}
