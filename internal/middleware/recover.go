package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

const fatalBody = `{"success":false,"message":"A server error occurred. Please try again later."}`

// Recover is the top-level error boundary: any panic below it is logged with
// a stack trace and converted into the generic JSON error shape, so raw
// diagnostics never reach the response body.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						"method", r.Method,
						"uri", r.URL.RequestURI(),
						"panic", rec,
						"stack", string(debug.Stack()))

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(fatalBody))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
