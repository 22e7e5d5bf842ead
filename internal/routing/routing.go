package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"coursehub/internal/metrics"
	"coursehub/pkg/audit"
	"coursehub/pkg/handlers"
	"coursehub/pkg/middleware"
	"coursehub/pkg/token"
	"coursehub/pkg/user"
)

const shutdownTimeout = 10 * time.Second

type Deps struct {
	Users       user.ServiceInterface
	Logins      audit.Reader
	Tokens      token.Verifier
	Gatherer    prometheus.Gatherer
	Logger      *slog.Logger
	StaticDir   string
	CORSOrigins []string
	TrustProxy  bool
}

// NewRouter assembles the full HTTP stack: panic recovery and CORS around
// the router, request logging on every route, and the identity and role
// gates on their subrouters.
func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(d.Logger))

	api := r.PathPrefix("/api").Subrouter()
	InitRoutes(api, d)
	api.NotFoundHandler = middleware.RequestLogger(d.Logger)(handlers.NotFound(d.Logger))

	if d.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(d.Gatherer)).Methods(http.MethodGet)
	}
	ServeStaticFiles(r, d.StaticDir, d.Logger)

	var h http.Handler = r
	h = gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(d.CORSOrigins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type", middleware.HeaderRequestID}),
		gorillahandlers.ExposedHeaders([]string{middleware.HeaderRequestID}),
	)(h)
	if d.TrustProxy {
		h = gorillahandlers.ProxyHeaders(h)
	}
	return middleware.Panic(d.Logger)(h)
}

// InitRoutes mounts the API. Each subrouter carries its gates in order:
// public, Authenticate, then Authenticate followed by RequireStaff.
func InitRoutes(api *mux.Router, d Deps) {
	userHandler := handlers.NewUserHandler(d.Users, d.Logger)
	adminHandler := handlers.NewAdminHandler(d.Users, d.Logins, d.Logger)
	authenticate := middleware.Authenticate(d.Tokens, d.Logger)

	/* -+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+ */

	authRouter := api.PathPrefix("/auth").Subrouter()
	profileRouter := authRouter.PathPrefix("/profile").Subrouter()
	adminRouter := api.PathPrefix("/admin").Subrouter()

	profileRouter.Use(authenticate)
	adminRouter.Use(authenticate, middleware.RequireStaff(d.Logger))

	/* public routers */
	api.HandleFunc("/health", handlers.Health(d.Logger)).Methods("GET").Name("health")
	authRouter.HandleFunc("/signup", userHandler.Signup).Methods("POST").Name("signup")
	authRouter.HandleFunc("/login", userHandler.Login).Methods("POST").Name("login")

	/* authenticated routers */
	profileRouter.HandleFunc("", userHandler.Profile).Methods("GET").Name("profile")
	profileRouter.HandleFunc("", userHandler.UpdateProfile).Methods("PUT").Name("update-profile")

	/* staff routers */
	adminRouter.HandleFunc("/users", adminHandler.ListUsers).Methods("GET").Name("admin-users")
	adminRouter.HandleFunc("/logins", adminHandler.RecentLogins).Methods("GET").Name("admin-logins")
}

// ServeStaticFiles serves dir for every path outside the API. A path with no
// file behind it gets the same JSON 404 as an unknown API route.
func ServeStaticFiles(r *mux.Router, dir string, logger *slog.Logger) {
	fs := http.FileServer(http.Dir(dir))
	notFound := handlers.NotFound(logger)

	r.NotFoundHandler = middleware.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasPrefix(req.URL.Path, "/api/") || !staticExists(dir, req.URL.Path) {
			notFound(w, req)
			return
		}
		fs.ServeHTTP(w, req)
	}))
}

func staticExists(dir, urlPath string) bool {
	if dir == "" {
		return false
	}
	name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+urlPath)))
	info, err := os.Stat(name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		_, err = os.Stat(filepath.Join(name, "index.html"))
		return err == nil
	}
	return true
}

// StartServer listens on addr until ctx is cancelled, then drains in-flight
// requests.
func StartServer(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is running", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
