package personaldata

import (
	"fmt"

	"github.com/templatecore/core/internal/platform/httpx"
)

// Personal data seeded for the bootstrap admin.
const (
	AdminName  = "NOME DO ADMIN"
	AdminTaxID = "00000000000"
)

var (
	ErrNotFound  = fmt.Errorf("personaldata: %w", httpx.ErrNotFound)
	ErrDuplicate = fmt.Errorf("personaldata: tax id %w", httpx.ErrDuplicate)
)

// PersonalData holds the civil identification of a person. TaxID is a
// CPF or CNPJ and is unique.
type PersonalData struct {
	ID    int64  `json:"id"`
	Name  string `json:"name" validate:"required,max=255"`
	TaxID string `json:"taxId" validate:"required,max=32"`
}
