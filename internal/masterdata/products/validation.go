package products

import (
	"fmt"
	"strings"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/shared"
)

func (s *Service) validate(form *ProductForm) error {
	form.Description = strings.TrimSpace(form.Description)
	if err := shared.Validate(form); err != nil {
		return err
	}
	if strings.ContainsAny(form.Description, "\r\n\t") {
		return fmt.Errorf("%w: description must be a single line", httpx.ErrValidation)
	}
	return nil
}
