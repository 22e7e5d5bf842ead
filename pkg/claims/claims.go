package claims

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	TokenContextKey contextKey = "token"
)

// Claims is the identity payload carried by a session token. It is rebuilt
// from the token on every request and never re-read from the user store.
type Claims struct {
	UserID       int64  `json:"user_id"`
	Email        string `json:"email"`
	IsStaff      bool   `json:"is_staff"`
	IsInstructor bool   `json:"is_instructor"`
	jwt.RegisteredClaims
}

func NewContext(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, TokenContextKey, c)
}

func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(TokenContextKey).(*Claims)
	if !ok || c == nil {
		return nil, false
	}
	return c, true
}

// IsStaffMember is the predicate behind the admin gate. A nil claim never passes.
func IsStaffMember(c *Claims) bool {
	return c != nil && c.IsStaff
}
