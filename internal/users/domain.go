package users

import (
	"fmt"
	"time"

	"github.com/templatecore/core/internal/platform/httpx"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = fmt.Errorf("users: %w", httpx.ErrNotFound)
	// ErrDuplicate is returned when username or email is already taken.
	ErrDuplicate = fmt.Errorf("users: username or email %w", httpx.ErrDuplicate)
	// ErrUnknownPersonalData is returned when the linked personal data does not exist.
	ErrUnknownPersonalData = fmt.Errorf("users: %w: unknown personal data", httpx.ErrValidation)
)

// RoleRef is the slice of a role a user carries around.
type RoleRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// User represents an identity record.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	IsActive       bool      `json:"isActive"`
	PersonalDataID *int64    `json:"personalDataId,omitempty"`
	Roles          []RoleRef `json:"roles"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Authorities returns the role names granted to the user.
func (u User) Authorities() []string {
	out := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		out = append(out, role.Name)
	}
	return out
}

// RoleIDs returns the IDs of the assigned roles.
func (u User) RoleIDs() []int64 {
	ids := make([]int64, 0, len(u.Roles))
	for _, role := range u.Roles {
		ids = append(ids, role.ID)
	}
	return ids
}
