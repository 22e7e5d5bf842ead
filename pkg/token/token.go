package token

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"coursehub/pkg/claims"
)

// Validity is the fixed lifetime of every issued token.
const Validity = 24 * time.Hour

var (
	ErrNoSecret         = errors.New("token signing secret is not set")
	ErrMissingToken     = errors.New("missing token")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
)

var signingMethod = jwt.SigningMethodHS256

// Identity is what gets baked into a token at login.
type Identity struct {
	UserID       int64
	Email        string
	IsStaff      bool
	IsInstructor bool
}

type Issuer interface {
	Issue(id Identity) (string, error)
}

type Verifier interface {
	Verify(token string) (*claims.Claims, error)
}

type Option func(*Manager)

// WithClock replaces time.Now for both issuing and verification.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager issues and verifies HS256 session tokens. It holds no mutable
// state after construction and is safe for concurrent use.
type Manager struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

func New(secret string, opts ...Option) (*Manager, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	m := &Manager{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	)
	return m, nil
}

func (m *Manager) Issue(id Identity) (string, error) {
	issuedAt := m.now()

	c := &claims.Claims{
		UserID:       id.UserID,
		Email:        id.Email,
		IsStaff:      id.IsStaff,
		IsInstructor: id.IsInstructor,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(Validity)),
		},
	}

	return jwt.NewWithClaims(signingMethod, c).SignedString(m.secret)
}

// Verify checks structure, then signature, then expiry, and returns the
// decoded claims. Every failure maps onto one of the package errors.
func (m *Manager) Verify(tokenString string) (*claims.Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, ErrMalformedToken
	}

	sig, err := base64.RawURLEncoding.Strict().DecodeString(parts[2])
	if err != nil {
		return nil, ErrInvalidSignature
	}
	if err := signingMethod.Verify(parts[0]+"."+parts[1], sig, m.secret); err != nil {
		return nil, ErrInvalidSignature
	}

	c := &claims.Claims{}
	if _, err := m.parser.ParseWithClaims(tokenString, c, m.key); err != nil {
		return nil, classify(err)
	}

	return c, nil
}

func (m *Manager) key(*jwt.Token) (any, error) {
	return m.secret, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	default:
		return ErrMalformedToken
	}
}
