package domain

import "time"

// Role is the authorization level carried in a token.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity is the authenticated principal embedded in a token.
type Identity struct {
	Subject string
	Role    Role
}

// Token represents issued authentication token metadata.
type Token struct {
	Value     string
	Subject   string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity returns the principal the token was issued for.
func (t Token) Identity() Identity {
	return Identity{Subject: t.Subject, Role: t.Role}
}
