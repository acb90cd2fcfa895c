package middleware

import (
	"fmt"
	"net/http"

	"github.com/cloo-solutions/supportdesk/internal/api"
)

// MaxBodyBytes caps request bodies at limit bytes. Methods without a body pass
// straight through. A declared Content-Length over the cap is refused before
// the handler runs; an undeclared one is cut off while the handler reads.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		tooLarge := fmt.Sprintf("request body exceeds %d bytes", limit)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodDelete:
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, tooLarge)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
