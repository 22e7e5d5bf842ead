package handlers

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"coursehub/pkg/user"
)

type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserHandler struct {
	Service user.ServiceInterface
	Logger  *slog.Logger
}

func NewUserHandler(service user.ServiceInterface, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		Service: service,
		Logger:  logger,
	}
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req user.SignupForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	id, err := h.Service.Signup(r.Context(), req)
	switch {
	case errors.Is(err, user.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	case errors.Is(err, user.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	case errors.Is(err, user.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, "Password must be at most 72 bytes")
		return
	case err != nil:
		h.Logger.Error("signup", "error", err)
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	if ok := writeJSON(w, h.Logger, http.StatusCreated, map[string]any{
		typeMessage: "User registered successfully",
		"user_id":   id,
	}); ok {
		h.Logger.Info("signup", "user_id", id)
	}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	res, err := h.Service.Login(r.Context(), req.Email, req.Password, clientIP(r))
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.Logger.Error("login", "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	if ok := writeJSON(w, h.Logger, http.StatusOK, res); ok {
		h.Logger.Info("login", "user_id", res.User.UserID)
	}
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}

	u, err := h.Service.Profile(r.Context(), c.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.Logger.Error("profile", "user_id", c.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}

	writeJSON(w, h.Logger, http.StatusOK, u.Profile())
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}

	var req user.ProfileUpdate
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	if err := h.Service.UpdateProfile(r.Context(), c.UserID, req); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.Logger.Error("update profile", "user_id", c.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, h.Logger, http.StatusOK, map[string]string{typeMessage: "Profile updated successfully"})
}

// clientIP strips the port from RemoteAddr. Forwarded headers are applied
// earlier by the proxy middleware when the deployment trusts them.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
