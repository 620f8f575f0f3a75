package authorities

import (
	"context"
	"fmt"
	"log/slog"

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

func (s *Service) List(ctx context.Context, req shared.PageRequest) (shared.Page[Authority], error) {
	req = req.Normalize()
	items, total, err := s.repo.List(ctx, req)
	if err != nil {
		return shared.Page[Authority]{}, err
	}
	return shared.NewPage(items, req, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Authority, error) {
	if id <= 0 {
		return Authority{}, fmt.Errorf("%w: invalid authority ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Create stores a new authority. Payloads carrying an ID are rejected.
func (s *Service) Create(ctx context.Context, in Authority) (Authority, error) {
	if in.ID != 0 {
		return Authority{}, httpx.ErrHasID
	}
	in.Name = shared.UpperName(in.Name)
	if err := shared.Validate(in); err != nil {
		return Authority{}, err
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, in Authority) (Authority, error) {
	if in.ID <= 0 {
		return Authority{}, fmt.Errorf("%w: invalid authority ID", httpx.ErrValidation)
	}
	in.Name = shared.UpperName(in.Name)
	if err := shared.Validate(in); err != nil {
		return Authority{}, err
	}
	if err := s.repo.Update(ctx, in); err != nil {
		return Authority{}, err
	}
	return in, nil
}

// Delete removes the row; authorities are not soft-deleted.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid authority ID", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

// EnsureAdminAuthority seeds ADMIN when no authority exists yet.
func (s *Service) EnsureAdminAuthority(ctx context.Context) (bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("authorities: count: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	created, err := s.repo.Create(ctx, Authority{Name: AdminAuthority})
	if err != nil {
		return false, fmt.Errorf("authorities: seed admin: %w", err)
	}
	s.logger.Info("bootstrap authority created", slog.Int64("authority_id", created.ID))
	return true, nil
}
