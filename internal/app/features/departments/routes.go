// internal/app/features/departments/routes.go
package departments

import (
	"net/http"

	"github.com/workwatchhq/workwatch/internal/app/system/auth"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the department directory router. Mounted at
// /api/departments behind session middleware; mutations require admin.
func Routes(h *Handler, sm *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/analytics", h.Analytics)
	r.Get("/{id}/users", h.Members)

	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireRole(models.RoleAdmin))
		ar.Post("/", h.Create)
		ar.Put("/{id}", h.Update)
		ar.Delete("/{id}", h.Delete)
		ar.Post("/{id}/filter-users", h.FilterUsers)
		ar.Post("/group-users", h.GroupUsers)
	})
	return r
}

// AssignmentRoutes returns the user-department assignment router.
// Mounted at /api/user-departments, admin only.
func AssignmentRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.Assign)
	r.Delete("/", h.Unassign)
	return r
}
