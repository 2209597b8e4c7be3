package middleware

import (
	"context"
	"net/http"
	"time"
)

// StorageTimeout bounds the request context so storage calls made through
// it fail with context.DeadlineExceeded instead of hanging. The handler
// still writes the response; it maps the error to a 500.
func StorageTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
