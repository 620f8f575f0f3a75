package products

import (
	"context"
	"fmt"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, req shared.PageRequest) (shared.Page[Product], error) {
	req = req.Normalize()
	items, total, err := s.repo.List(ctx, req)
	if err != nil {
		return shared.Page[Product]{}, err
	}
	return shared.NewPage(items, req, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: invalid product ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form ProductForm) (Product, error) {
	if form.ID != 0 {
		return Product{}, httpx.ErrHasID
	}
	if err := s.validate(&form); err != nil {
		return Product{}, err
	}
	active := true
	if form.IsActive != nil {
		active = *form.IsActive
	}
	return s.repo.Create(ctx, Product{Description: form.Description, IsActive: active})
}

func (s *Service) Update(ctx context.Context, form ProductForm) (Product, error) {
	if form.ID <= 0 {
		return Product{}, fmt.Errorf("%w: invalid product ID", httpx.ErrValidation)
	}
	if err := s.validate(&form); err != nil {
		return Product{}, err
	}
	current, err := s.repo.Get(ctx, form.ID)
	if err != nil {
		return Product{}, err
	}
	current.Description = form.Description
	if form.IsActive != nil {
		current.IsActive = *form.IsActive
	}
	if err := s.repo.Update(ctx, current); err != nil {
		return Product{}, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product ID", httpx.ErrValidation)
	}
	return s.repo.SetInactive(ctx, id)
}
