// internal/session/session.go
package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated indicates no credential is stored or the stored
// credential was rejected by the server.
var ErrUnauthenticated = errors.New("not signed in")

// Role represents the identity's role on the commerce API
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSeller || r == RoleAdmin
}

// Can is the single authorization check: admins may do everything,
// everyone else only what their own role permits.
func (r Role) Can(required Role) bool {
	if r == RoleAdmin {
		return true
	}
	return r == required
}

// Identity is what the client reads out of the bearer credential for
// display and gating. The credential itself stays opaque; nothing here
// is verified client-side.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Session holds the current credential and its derived identity
type Session struct {
	Token    string
	Identity Identity
}

// Require returns ErrUnauthenticated on a nil session and a permission
// error when the session's role is insufficient.
func (s *Session) Require(role Role) error {
	if s == nil || s.Token == "" {
		return ErrUnauthenticated
	}
	if !s.Identity.Role.Can(role) {
		return fmt.Errorf("%s access required", role)
	}
	return nil
}

// identityClaims mirrors the claim names the identity service puts in its tokens
type identityClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// ParseIdentity decodes identity fields from a bearer token without
// verifying the signature. Validation is the server's job; the client
// only needs the subject, username and role for display and gating.
func ParseIdentity(token string) (Identity, error) {
	claims := &identityClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("failed to decode credential: %w", err)
	}

	role := Role(claims.Role)
	if !role.Valid() {
		role = RoleBuyer
	}

	return Identity{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     role,
	}, nil
}
