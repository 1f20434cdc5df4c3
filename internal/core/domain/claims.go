package domain

import "time"

// Claims is the verified identity carried by a session token.
type Claims struct {
	UserID    int64
	Username  string
	Roles     []RoleName
	IssuedAt  time.Time
	ExpiresAt time.Time
	TokenID   string
	Issuer    string
}

// HasRole reports whether the claims carry the given role.
func (c Claims) HasRole(role RoleName) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (c Claims) IsAdmin() bool {
	return c.HasRole(RoleAdmin)
}

// HasAnyKnownRole reports whether the caller holds USER or ADMIN.
func (c Claims) HasAnyKnownRole() bool {
	return c.HasRole(RoleUser) || c.HasRole(RoleAdmin)
}
