package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/BerylCAtieno/blood-report-api/internal/utils"
)

// Recovery recovers from panics and returns 500 error. It is meant to be the
// outermost handler, so the request ID is read back from the response header
// when the request context does not carry it.
func Recovery(logger *utils.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					requestID := GetRequestID(r.Context())
					if requestID == "" {
						requestID = w.Header().Get(RequestIDHeader)
					}

					logger.Error("Panic recovered",
						"request_id", requestID,
						"method", r.Method,
						"error", fmt.Sprintf("%v", rec),
						"path", r.URL.Path,
						"stack", string(debug.Stack()))

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{"detail": "Internal server error"})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
