// internal/app/features/adminusers/routes.go
package adminusers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the account administration router. Mounted at /api/users
// behind session + admin middleware.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{username}", h.Delete)
	r.Post("/{username}/wipe", h.Wipe)
	return r
}
