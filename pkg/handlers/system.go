package handlers

import (
	"log/slog"
	"net/http"
)

func Health(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, map[string]string{
			"status":    "OK",
			typeMessage: "Server is running",
		})
	}
}

// NotFound answers unknown API paths with a JSON 404.
func NotFound(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusNotFound, map[string]string{
			typeError:   "Not Found",
			typeMessage: "Cannot find " + r.URL.Path,
		})
	}
}
