package shared

import (
	"errors"
	"io"
	"math"
	"net/http"

	"github.com/templatecore/core/internal/platform/httpx"
)

// DefaultPageSize applies when a find request omits the size.
const DefaultPageSize = 20

// PageRequest is the body of every find endpoint. Page is zero based.
type PageRequest struct {
	Page int `json:"page" validate:"gte=0"`
	Size int `json:"size" validate:"gte=0,lte=500"`
}

// Normalize fills the default size.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	return p
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one slice of a listing plus its metadata.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage computes pagination metadata.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	req = req.Normalize()
	if content == nil {
		content = []T{}
	}
	totalPages := int(math.Ceil(float64(total) / float64(req.Size)))
	return Page[T]{Content: content, Page: req.Page, Size: req.Size, TotalElements: total, TotalPages: totalPages}
}

// DecodePage reads and validates a find request body. An empty body asks
// for the first page. On failure the response is already written.
func DecodePage(w http.ResponseWriter, r *http.Request) (PageRequest, bool) {
	var req PageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid page request")
		return req, false
	}
	if err := Validate(req); err != nil {
		httpx.RespondError(w, err)
		return req, false
	}
	return req, true
}
