// Package auditapi pages the security audit log for admins.
//
// Endpoints (admin):
//   - GET /api/audit - Recent entries, filterable by category/event/actor
package auditapi

import (
	"net/http"

	"github.com/workwatchhq/workwatch/internal/app/features/activity"
	"github.com/workwatchhq/workwatch/internal/app/store/audit"
	"github.com/workwatchhq/workwatch/internal/app/system/jsonutil"
	"github.com/workwatchhq/workwatch/internal/app/system/normalize"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler handles audit log requests.
type Handler struct {
	audit  *audit.Store
	logger *zap.Logger
}

func NewHandler(audit *audit.Store, logger *zap.Logger) *Handler {
	return &Handler{audit: audit, logger: logger}
}

// List handles GET /api/audit.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.QueryFilter{
		Category:  normalize.QueryParam(q.Get("category")),
		EventType: normalize.QueryParam(q.Get("event")),
		Actor:     normalize.Username(q.Get("actor")),
	}
	page, limit := activity.ParsePagination(r)
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	events, err := h.audit.Query(r.Context(), filter)
	if err != nil {
		h.logger.Error("audit query failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load audit log")
		return
	}
	total, err := h.audit.CountByFilter(r.Context(), filter)
	if err != nil {
		h.logger.Error("audit count failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load audit log")
		return
	}

	jsonutil.OK(w, map[string]any{
		"entries": events,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// Routes returns the audit log router. Mounted at /api/audit behind
// session + admin middleware.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}
