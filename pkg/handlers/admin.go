package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"coursehub/pkg/audit"
	"coursehub/pkg/user"
)

type AdminHandler struct {
	Users  user.ServiceInterface
	Logins audit.Reader
	Logger *slog.Logger
}

func NewAdminHandler(users user.ServiceInterface, logins audit.Reader, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		Users:  users,
		Logins: logins,
		Logger: logger,
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		h.Logger.Error("list users", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	out := make([]user.Summary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	writeJSON(w, h.Logger, http.StatusOK, out)
}

// RecentLogins lists login attempts, newest first. ?limit is clamped by the
// audit store; a value that is not a number is rejected.
func (h *AdminHandler) RecentLogins(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	events, err := h.Logins.Recent(r.Context(), limit)
	if err != nil {
		h.Logger.Error("recent logins", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch login events")
		return
	}

	writeJSON(w, h.Logger, http.StatusOK, events)
}
