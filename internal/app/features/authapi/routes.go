// internal/app/features/authapi/routes.go
package authapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the session endpoint router. Login and status work
// without a session; the session middleware upstream only loads the user.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/auth/status", h.Status)
	return r
}
