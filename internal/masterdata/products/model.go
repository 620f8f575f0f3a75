package products

import (
	"fmt"
	"time"

	"github.com/templatecore/core/internal/platform/httpx"
)

var (
	ErrNotFound  = fmt.Errorf("products: %w", httpx.ErrNotFound)
	ErrDuplicate = fmt.Errorf("products: description %w", httpx.ErrDuplicate)
)

// Product represents a product entity
type Product struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
