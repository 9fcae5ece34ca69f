package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/adaptive-quiz/backend/internal/metrics"
)

// RequestLogger writes one log line per request once the handler returns.
// Only server errors are logged above info.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := metrics.NewStatusRecorder(w)
			next.ServeHTTP(rec, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", metrics.RouteTemplate(r)),
				zap.Int("status", rec.Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			}
			if rec.Status >= 500 {
				logger.Error("request", fields...)
				return
			}
			logger.Info("request", fields...)
		})
	}
}
