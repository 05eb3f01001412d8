// internal/app/features/analytics/routes.go
package analytics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the analytics router. Mounted behind session middleware.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/summary", h.Summary)
	r.Get("/top-domains", h.TopDomains)
	r.Get("/users", h.Users)
	return r
}
