// internal/app/features/export/routes.go
package export

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the export router. Mounted at /api/export behind
// session + admin middleware.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/csv", h.CSV)
	r.Get("/json", h.JSON)
	return r
}
