package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/shared"
)

// Bootstrap account created on an empty store.
const (
	AdminUsername = "admin"
	AdminEmail    = "admin@admin.com"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Find(ctx context.Context, page shared.PageRequest) ([]User, int64, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) error
	SetInactive(ctx context.Context, id int64) error
}

// Invalidator drops cached identity snapshots.
type Invalidator interface {
	Invalidate(ctx context.Context, userID int64) error
}

// SaveInput carries the fields accepted by save and update.
type SaveInput struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username" validate:"required,min=3,max=64"`
	Email          string    `json:"email" validate:"required,email"`
	Password       string    `json:"password" validate:"omitempty,min=5,max=72"`
	IsActive       *bool     `json:"isActive"`
	PersonalDataID *int64    `json:"personalDataId" validate:"omitempty,gt=0"`
	Roles          []RoleRef `json:"roles"`
}

// AdminSeed describes the bootstrap admin account.
type AdminSeed struct {
	Password       string
	PersonalDataID *int64
	Roles          []RoleRef
}

// Service handles user business logic.
type Service struct {
	repo        RepositoryPort
	invalidator Invalidator
	logger      *slog.Logger
}

// NewService builds Service instance. invalidator may be nil.
func NewService(repo RepositoryPort, invalidator Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, invalidator: invalidator, logger: logger}
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// FindByUsername returns the user registered under username.
func (s *Service) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.FindByUsername(ctx, strings.TrimSpace(username))
}

// Find returns a page of users.
func (s *Service) Find(ctx context.Context, req shared.PageRequest) (shared.Page[User], error) {
	req = req.Normalize()
	items, total, err := s.repo.Find(ctx, req)
	if err != nil {
		return shared.Page[User]{}, err
	}
	return shared.NewPage(items, req, total), nil
}

// Save creates a new user. Inputs carrying an ID are rejected.
func (s *Service) Save(ctx context.Context, in SaveInput) (User, error) {
	if in.ID != 0 {
		return User{}, httpx.ErrHasID
	}
	if err := shared.Validate(in); err != nil {
		return User{}, err
	}
	if in.Password == "" {
		return User{}, fmt.Errorf("%w: password is required", httpx.ErrValidation)
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return User{}, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return s.repo.Create(ctx, User{
		Username:       strings.TrimSpace(in.Username),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:   hash,
		IsActive:       active,
		PersonalDataID: in.PersonalDataID,
		Roles:          in.Roles,
	})
}

// Update overwrites an existing user. The stored hash is kept unless a new
// password is sent.
func (s *Service) Update(ctx context.Context, in SaveInput) (User, error) {
	if in.ID <= 0 {
		return User{}, fmt.Errorf("%w: id is required", httpx.ErrValidation)
	}
	if err := shared.Validate(in); err != nil {
		return User{}, err
	}
	current, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		return User{}, err
	}
	updated := *current
	updated.Username = strings.TrimSpace(in.Username)
	updated.Email = strings.ToLower(strings.TrimSpace(in.Email))
	updated.Roles = in.Roles
	updated.PersonalDataID = in.PersonalDataID
	if in.IsActive != nil {
		updated.IsActive = *in.IsActive
	}
	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return User{}, err
		}
		updated.PasswordHash = hash
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return User{}, err
	}
	if err := s.invalidate(ctx, updated.ID); err != nil {
		return User{}, err
	}
	return updated, nil
}

// Delete deactivates the user.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SetInactive(ctx, id); err != nil {
		return err
	}
	return s.invalidate(ctx, id)
}

// EnsureAdmin creates the bootstrap admin when no user exists yet.
func (s *Service) EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("users: count: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if seed.Password == "" {
		return false, fmt.Errorf("%w: admin password is empty", httpx.ErrValidation)
	}
	hash, err := hashPassword(seed.Password)
	if err != nil {
		return false, err
	}
	created, err := s.repo.Create(ctx, User{
		Username:       AdminUsername,
		Email:          AdminEmail,
		PasswordHash:   hash,
		IsActive:       true,
		PersonalDataID: seed.PersonalDataID,
		Roles:          seed.Roles,
	})
	if err != nil {
		return false, err
	}
	s.logger.Info("bootstrap admin created", slog.Int64("user_id", created.ID))
	return true, nil
}

// invalidate drops the cached identity; callers must fail on error.
func (s *Service) invalidate(ctx context.Context, id int64) error {
	if s.invalidator == nil {
		return nil
	}
	if err := s.invalidator.Invalidate(ctx, id); err != nil {
		s.logger.Error("invalidate identity cache", slog.Int64("user_id", id), slog.Any("error", err))
		return fmt.Errorf("users: invalidate identity cache: %w", err)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("users: hash password: %w", err)
	}
	return string(hash), nil
}
