package domain

import (
	"strings"
	"time"
)

// RoleName is the canonical name of a role stored in the roles collection.
type RoleName string

const (
	RoleUser  RoleName = "ROLE_USER"
	RoleAdmin RoleName = "ROLE_ADMIN"
)

// CanonicalRoles lists every role the system expects to find in the store.
var CanonicalRoles = []RoleName{RoleUser, RoleAdmin}

// Role is a pre-seeded, immutable role referenced by users.
type Role struct {
	ID   string   `json:"-"`
	Name RoleName `json:"name"`
}

// User models an authenticated actor in the system.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleNames returns the names of the roles held by the user.
func (u *User) RoleNames() []RoleName {
	names := make([]RoleName, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// NormalizeUsername is the key used for case-insensitive per-username bookkeeping.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
