// internal/app/features/activity/routes.go
package activity

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the activity feed router. Session middleware is applied
// by the caller when mounting.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}
