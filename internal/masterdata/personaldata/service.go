package personaldata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/shared"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, req shared.PageRequest) (shared.Page[PersonalData], error) {
	req = req.Normalize()
	items, total, err := s.repo.List(ctx, req)
	if err != nil {
		return shared.Page[PersonalData]{}, err
	}
	return shared.NewPage(items, req, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (PersonalData, error) {
	if id <= 0 {
		return PersonalData{}, fmt.Errorf("%w: invalid personal data ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) FindByTaxID(ctx context.Context, taxID string) (PersonalData, error) {
	return s.repo.FindByTaxID(ctx, strings.TrimSpace(taxID))
}

func (s *Service) Create(ctx context.Context, in PersonalData) (PersonalData, error) {
	if in.ID != 0 {
		return PersonalData{}, httpx.ErrHasID
	}
	if err := normalize(&in); err != nil {
		return PersonalData{}, err
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, in PersonalData) (PersonalData, error) {
	if in.ID <= 0 {
		return PersonalData{}, fmt.Errorf("%w: invalid personal data ID", httpx.ErrValidation)
	}
	if err := normalize(&in); err != nil {
		return PersonalData{}, err
	}
	if err := s.repo.Update(ctx, in); err != nil {
		return PersonalData{}, err
	}
	return in, nil
}

// Delete removes the row. Users linked to it keep no reference.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid personal data ID", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

// EnsureAdmin seeds the admin's personal data on an empty store and returns
// the record registered under AdminTaxID, if any.
func (s *Service) EnsureAdmin(ctx context.Context) (data PersonalData, found bool, err error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return PersonalData{}, false, fmt.Errorf("personaldata: count: %w", err)
	}
	if count == 0 {
		created, err := s.repo.Create(ctx, PersonalData{Name: AdminName, TaxID: AdminTaxID})
		if err != nil {
			return PersonalData{}, false, fmt.Errorf("personaldata: seed admin: %w", err)
		}
		s.logger.Info("bootstrap personal data created", slog.Int64("personal_data_id", created.ID))
		return created, true, nil
	}
	data, err = s.repo.FindByTaxID(ctx, AdminTaxID)
	switch {
	case err == nil:
		return data, true, nil
	case errors.Is(err, ErrNotFound):
		return PersonalData{}, false, nil
	default:
		return PersonalData{}, false, err
	}
}

func normalize(in *PersonalData) error {
	in.Name = shared.UpperName(in.Name)
	in.TaxID = strings.TrimSpace(in.TaxID)
	return shared.Validate(in)
}
