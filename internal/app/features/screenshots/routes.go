// internal/app/features/screenshots/routes.go
package screenshots

import (
	"net/http"
	"strconv"

	"github.com/workwatchhq/workwatch/internal/app/system/auth"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the screenshot router. The caller mounts it behind the
// session middleware; delete endpoints additionally require admin.
func Routes(h *Handler, sm *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireRole(models.RoleAdmin))
		ar.Post("/delete", h.BulkDelete)
		ar.Delete("/{filename}", h.Delete)
	})
	return r
}

func actorName(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return u.Username
	}
	return ""
}

func itoa(n int) string { return strconv.Itoa(n) }

func itoa64(n int64) string { return strconv.FormatInt(n, 10) }
