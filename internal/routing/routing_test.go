package routing_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/internal/metrics"
	"coursehub/internal/routing"
	"coursehub/pkg/audit"
	"coursehub/pkg/token"
	"coursehub/pkg/user"
)

type stubUsers struct {
	profileCalls int
	listCalls    int
}

func (s *stubUsers) Signup(ctx context.Context, form user.SignupForm) (int64, error) {
	return 1, nil
}

func (s *stubUsers) Login(ctx context.Context, email, password, ip string) (*user.LoginResult, error) {
	return nil, user.ErrInvalidCredentials
}

func (s *stubUsers) Profile(ctx context.Context, id int64) (*user.User, error) {
	s.profileCalls++
	return &user.User{ID: id, Email: "me@example.com"}, nil
}

func (s *stubUsers) UpdateProfile(ctx context.Context, id int64, p user.ProfileUpdate) error {
	return nil
}

func (s *stubUsers) ListUsers(ctx context.Context) ([]*user.User, error) {
	s.listCalls++
	return []*user.User{{ID: 1}}, nil
}

type stubLogins struct{}

func (stubLogins) Recent(ctx context.Context, limit int) ([]*audit.LoginEvent, error) {
	return []*audit.LoginEvent{}, nil
}

type env struct {
	handler http.Handler
	users   *stubUsers
	tokens  *token.Manager
}

func newEnv(t *testing.T) *env {
	t.Helper()

	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>coursehub</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(static, "app.js"), []byte("console.log(1)"), 0o600))

	tokens, err := token.New("routing-secret")
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)

	users := &stubUsers{}
	h := routing.NewRouter(routing.Deps{
		Users:       users,
		Logins:      stubLogins{},
		Tokens:      tokens,
		Gatherer:    reg,
		Logger:      slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		StaticDir:   static,
		CORSOrigins: []string{"http://app.test"},
	})
	return &env{handler: h, users: users, tokens: tokens}
}

func (e *env) do(method, target, bearer string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *env) token(t *testing.T, staff bool) string {
	t.Helper()
	tok, err := e.tokens.Issue(token.Identity{UserID: 9, Email: "me@example.com", IsStaff: staff})
	require.NoError(t, err)
	return tok
}

func TestRouter_PublicRoutes(t *testing.T) {
	e := newEnv(t)

	rr := e.do(http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"OK","message":"Server is running"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = e.do(http.MethodPost, "/api/auth/signup", "", `{"email":"a@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = e.do(http.MethodPost, "/api/auth/login", "", `{"email":"a@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rr.Body.String())
}

func TestRouter_AuthenticatedRoutes(t *testing.T) {
	e := newEnv(t)

	rr := e.do(http.MethodGet, "/api/auth/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Access denied. No token provided."}`, rr.Body.String())
	assert.Equal(t, 0, e.users.profileCalls)

	rr = e.do(http.MethodGet, "/api/auth/profile", "garbage", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid token."}`, rr.Body.String())
	assert.Equal(t, 0, e.users.profileCalls)

	rr = e.do(http.MethodGet, "/api/auth/profile", e.token(t, false), "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"user_id":9`)
	assert.Equal(t, 1, e.users.profileCalls)

	rr = e.do(http.MethodPut, "/api/auth/profile", "", `{"full_name":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = e.do(http.MethodPut, "/api/auth/profile", e.token(t, false), `{"full_name":"x"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_StaffRoutes(t *testing.T) {
	e := newEnv(t)
	learner := e.token(t, false)

	for _, path := range []string{"/api/admin/users", "/api/admin/logins"} {
		rr := e.do(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)

		rr = e.do(http.MethodGet, path, learner, "")
		assert.Equal(t, http.StatusForbidden, rr.Code, path)
		assert.JSONEq(t, `{"error":"Access denied. Admin only."}`, rr.Body.String())
	}
	assert.Equal(t, 0, e.users.listCalls)

	// The same learner token still opens the authenticated-only route.
	rr := e.do(http.MethodGet, "/api/auth/profile", learner, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	staff := e.token(t, true)
	rr = e.do(http.MethodGet, "/api/admin/users", staff, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, e.users.listCalls)

	rr = e.do(http.MethodGet, "/api/admin/logins?limit=5", staff, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestRouter_ExpiredToken(t *testing.T) {
	e := newEnv(t)

	past := time.Now().Add(-25 * time.Hour)
	old, err := token.New("routing-secret", token.WithClock(func() time.Time { return past }))
	require.NoError(t, err)
	tok, err := old.Issue(token.Identity{UserID: 9, IsStaff: true})
	require.NoError(t, err)

	rr := e.do(http.MethodGet, "/api/admin/users", tok, "")

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid token."}`, rr.Body.String())
}

func TestRouter_NotFound(t *testing.T) {
	e := newEnv(t)

	for _, path := range []string{"/api/courses", "/api/auth/unknown", "/api/admin/stats", "/missing.js"} {
		rr := e.do(http.MethodGet, path, "", "")

		assert.Equal(t, http.StatusNotFound, rr.Code, path)
		assert.JSONEq(t, `{"error":"Not Found","message":"Cannot find `+path+`"}`, rr.Body.String())
	}
}

func TestRouter_StaticFiles(t *testing.T) {
	e := newEnv(t)

	rr := e.do(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "coursehub")

	rr = e.do(http.MethodGet, "/app.js", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "console.log(1)", rr.Body.String())

	rr = e.do(http.MethodGet, "/etc/passwd", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_Metrics(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/api/health", "", "")
	e.do(http.MethodGet, "/api/auth/profile", "", "")

	rr := e.do(http.MethodGet, "/metrics", "", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `coursehub_http_requests_total{method="GET",route="/api/health",status="200"}`)
	assert.Contains(t, body, `coursehub_auth_rejections_total{reason="missing"}`)
	assert.Contains(t, body, "coursehub_http_request_duration_seconds")
}

func TestRouter_CORS(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://app.test")
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://app.test", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/auth/profile", nil)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rr = httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://app.test", rr.Header().Get("Access-Control-Allow-Origin"))
}
