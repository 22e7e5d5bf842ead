package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"coursehub/internal/metrics"
	"coursehub/pkg/generator"
)

const (
	HeaderRequestID = "X-Request-ID"
	requestIDLen    = 16
	maxRequestIDLen = 64
)

// RequestLogger tags each request with an id, logs its outcome and feeds
// the HTTP metrics. Mount it with Router.Use so the matched route is known.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(HeaderRequestID)
			if reqID == "" || len(reqID) > maxRequestIDLen {
				id, err := generator.GenerateRandomID(requestIDLen)
				if err != nil {
					logger.Error("request id generation", "error", err)
				}
				reqID = id
			}
			w.Header().Set(HeaderRequestID, reqID)

			m := httpsnoop.CaptureMetrics(next, w, r)

			route := routeTemplate(r)
			metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(m.Code)).Inc()
			metrics.HTTPDuration.WithLabelValues(route, r.Method).Observe(m.Duration.Seconds())

			logger.Info("request",
				slog.String("request_id", reqID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", m.Code),
				slog.Duration("duration", m.Duration),
			)
		})
	}
}

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return tpl
}
