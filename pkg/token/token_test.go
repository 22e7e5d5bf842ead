package token_test

import (
	"encoding/base64"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/pkg/claims"
	"coursehub/pkg/token"
)

const secret = "test-secret"

var (
	issuedAt = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	staffIdentity = token.Identity{
		UserID:       42,
		Email:        "ada@example.com",
		IsStaff:      true,
		IsInstructor: false,
	}
)

func newManager(t *testing.T, now *time.Time) *token.Manager {
	t.Helper()
	m, err := token.New(secret, token.WithClock(func() time.Time { return *now }))
	require.NoError(t, err)
	return m
}

func TestNew_EmptySecret(t *testing.T) {
	m, err := token.New("")

	assert.ErrorIs(t, err, token.ErrNoSecret)
	assert.Nil(t, m)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	m, err := token.New(secret)
	require.NoError(t, err)

	identities := []token.Identity{
		staffIdentity,
		{UserID: 1, Email: "learner@example.com"},
		{UserID: 7, Email: "instructor@example.com", IsInstructor: true},
		{UserID: 9, Email: "both@example.com", IsStaff: true, IsInstructor: true},
	}

	for _, id := range identities {
		t.Run(id.Email, func(t *testing.T) {
			tok, err := m.Issue(id)
			require.NoError(t, err)
			assert.Len(t, strings.Split(tok, "."), 3)

			c, err := m.Verify(tok)
			now := time.Now()
			require.NoError(t, err)

			assert.Equal(t, id.UserID, c.UserID)
			assert.Equal(t, id.Email, c.Email)
			assert.Equal(t, id.IsStaff, c.IsStaff)
			assert.Equal(t, id.IsInstructor, c.IsInstructor)

			require.NotNil(t, c.IssuedAt)
			require.NotNil(t, c.ExpiresAt)
			assert.False(t, c.IssuedAt.After(now))
			assert.True(t, c.ExpiresAt.After(now))
			assert.Equal(t, token.Validity, c.ExpiresAt.Sub(c.IssuedAt.Time))
		})
	}
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	now := issuedAt
	m := newManager(t, &now)

	tok, err := m.Issue(staffIdentity)
	require.NoError(t, err)

	now = issuedAt.Add(token.Validity - time.Second)
	c, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, staffIdentity.UserID, c.UserID)

	now = issuedAt.Add(token.Validity)
	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, token.ErrExpired)

	now = issuedAt.Add(token.Validity + time.Second)
	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, token.ErrExpired)
}

func TestVerify_TamperedToken(t *testing.T) {
	now := issuedAt
	m := newManager(t, &now)

	tok, err := m.Issue(staffIdentity)
	require.NoError(t, err)
	parts := strings.Split(tok, ".")

	for _, seg := range []int{1, 2} {
		for i := range parts[seg] {
			mutated := make([]string, 3)
			copy(mutated, parts)
			mutated[seg] = flip(parts[seg], i)

			c, err := m.Verify(strings.Join(mutated, "."))

			assert.ErrorIs(t, err, token.ErrInvalidSignature, "segment %d index %d", seg, i)
			assert.Nil(t, c)
		}
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	other, err := token.New("some-other-secret")
	require.NoError(t, err)
	tok, err := other.Issue(staffIdentity)
	require.NoError(t, err)

	m, err := token.New(secret)
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, token.ErrInvalidSignature)
}

func TestVerify_Rejections(t *testing.T) {
	now := issuedAt
	m := newManager(t, &now)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &claims.Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &claims.Claims{UserID: 1}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims.Claims{UserID: 1}).
		SignedString([]byte(secret))
	require.NoError(t, err)

	garbagePayload := signHS256(t, `{"alg":"HS256","typ":"JWT"}`, `not json`)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", token.ErrMissingToken},
		{"one segment", "abc", token.ErrMalformedToken},
		{"two segments", "abc.def", token.ErrMalformedToken},
		{"four segments", "a.b.c.d", token.ErrMalformedToken},
		{"empty payload", "abc..def", token.ErrMalformedToken},
		{"alg none", unsigned, token.ErrMalformedToken},
		{"signature not base64", "abc.def.!!!", token.ErrInvalidSignature},
		{"other algorithm", hs512, token.ErrInvalidSignature},
		{"no expiry", noExpiry, token.ErrMalformedToken},
		{"payload not json", garbagePayload, token.ErrMalformedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := m.Verify(tt.token)

			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, c)
		})
	}
}

func TestVerify_Concurrent(t *testing.T) {
	m, err := token.New(secret)
	require.NoError(t, err)

	tok, err := m.Issue(staffIdentity)
	require.NoError(t, err)

	const workers = 64
	results := make([]*claims.Claims, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.Verify(tok)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
	assert.Equal(t, staffIdentity.Email, results[0].Email)
}

func flip(s string, i int) string {
	b := []byte(s)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

func signHS256(t *testing.T, header, payload string) string {
	t.Helper()
	enc := base64.RawURLEncoding.EncodeToString
	signing := enc([]byte(header)) + "." + enc([]byte(payload))
	sig, err := jwt.SigningMethodHS256.Sign(signing, []byte(secret))
	require.NoError(t, err)
	return signing + "." + enc(sig)
}
