package authorities

import (
	"fmt"

	"github.com/templatecore/core/internal/platform/httpx"
)

// AdminAuthority is seeded on an empty store.
const AdminAuthority = "ADMIN"

var (
	ErrNotFound  = fmt.Errorf("authorities: %w", httpx.ErrNotFound)
	ErrDuplicate = fmt.Errorf("authorities: name %w", httpx.ErrDuplicate)
)

// Authority is a named grant. Names are stored upper-cased and unique.
type Authority struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,max=100"`
}
