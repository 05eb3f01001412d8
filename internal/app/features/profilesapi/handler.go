// Package profilesapi manages display-name overlays for tracked actors
// that have no login account.
//
// Endpoints (all admin):
//   - GET /api/profiles - List overlays
//   - PUT /api/profiles/{username} - Upsert overlay
//   - DELETE /api/profiles/{username} - Remove overlay
package profilesapi

import (
	"encoding/json"
	"net/http"

	"github.com/workwatchhq/workwatch/internal/app/store/profiles"
	"github.com/workwatchhq/workwatch/internal/app/store/audit"
	"github.com/workwatchhq/workwatch/internal/app/system/auditlog"
	"github.com/workwatchhq/workwatch/internal/app/system/auth"
	"github.com/workwatchhq/workwatch/internal/app/system/htmlsanitize"
	"github.com/workwatchhq/workwatch/internal/app/system/jsonutil"
	"github.com/workwatchhq/workwatch/internal/app/system/normalize"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler handles profile overlay administration.
type Handler struct {
	profiles *profiles.Store
	audit    *auditlog.Logger
	logger   *zap.Logger
}

func NewHandler(profiles *profiles.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		profiles: profiles,
		audit:    audit,
		logger:   logger,
	}
}

func actorName(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return u.Username
	}
	return ""
}

// List handles GET /api/profiles.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.profiles.List(r.Context())
	if err != nil {
		h.logger.Error("profile list failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load profiles")
		return
	}
	jsonutil.OK(w, map[string]any{"profiles": items})
}

// Upsert handles PUT /api/profiles/{username}.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	username := normalize.Username(chi.URLParam(r, "username"))
	if username == "" {
		jsonutil.BadRequest(w, "username is required")
		return
	}

	var in struct {
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	displayName := htmlsanitize.Plain(in.DisplayName)
	if displayName == "" {
		jsonutil.BadRequest(w, "displayName is required")
		return
	}

	profile, err := h.profiles.Upsert(r.Context(), username, displayName)
	if err != nil {
		h.logger.Error("profile upsert failed",
			zap.String("username", username),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to save profile")
		return
	}

	h.audit.AdminAction(r.Context(), r, audit.EventProfileUpdated, actorName(r), username, nil)
	jsonutil.OK(w, profile)
}

// Delete handles DELETE /api/profiles/{username}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	username := normalize.Username(chi.URLParam(r, "username"))
	if username == "" {
		jsonutil.BadRequest(w, "username is required")
		return
	}

	if err := h.profiles.Delete(r.Context(), username); err != nil {
		if err == profiles.ErrNotFound {
			jsonutil.NotFound(w, "profile not found")
			return
		}
		h.logger.Error("profile delete failed",
			zap.String("username", username),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to delete profile")
		return
	}

	h.audit.AdminAction(r.Context(), r, audit.EventProfileDeleted, actorName(r), username, nil)
	jsonutil.OK(w, map[string]any{"deleted": true})
}

// Routes returns the profile overlay router. Mounted at /api/profiles
// behind session + admin middleware.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Put("/{username}", h.Upsert)
	r.Delete("/{username}", h.Delete)
	return r
}
