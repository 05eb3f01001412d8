// Package adminusers manages dashboard login accounts and the per-actor
// data wipe.
//
// Endpoints (all admin):
//   - GET /api/users - List accounts (no hashes)
//   - POST /api/users - Create account
//   - DELETE /api/users/{username} - Delete account
//   - POST /api/users/{username}/wipe - Delete the actor's tracked data
package adminusers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	deptstore "github.com/workwatchhq/workwatch/internal/app/store/departments"
	eventstore "github.com/workwatchhq/workwatch/internal/app/store/events"
	screenshotstore "github.com/workwatchhq/workwatch/internal/app/store/screenshots"
	userstore "github.com/workwatchhq/workwatch/internal/app/store/users"
	"github.com/workwatchhq/workwatch/internal/app/store/audit"
	"github.com/workwatchhq/workwatch/internal/app/system/auditlog"
	"github.com/workwatchhq/workwatch/internal/app/system/auth"
	"github.com/workwatchhq/workwatch/internal/app/system/authutil"
	"github.com/workwatchhq/workwatch/internal/app/system/blobstore"
	"github.com/workwatchhq/workwatch/internal/app/system/htmlsanitize"
	"github.com/workwatchhq/workwatch/internal/app/system/jsonutil"
	"github.com/workwatchhq/workwatch/internal/app/system/normalize"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler handles account administration.
type Handler struct {
	users  *userstore.Store
	events *eventstore.Store
	shots  *screenshotstore.Store
	depts  *deptstore.Store
	blobs  blobstore.Store
	audit  *auditlog.Logger
	logger *zap.Logger
}

func NewHandler(users *userstore.Store, events *eventstore.Store, shots *screenshotstore.Store, depts *deptstore.Store, blobs blobstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		users:  users,
		events: events,
		shots:  shots,
		depts:  depts,
		blobs:  blobs,
		audit:  audit,
		logger: logger,
	}
}

func actorName(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return u.Username
	}
	return ""
}

// accountView is the JSON shape for one account; the hash never leaves
// the store layer.
type accountView struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	DisplayName string     `json:"displayName,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
}

func toView(u models.User) accountView {
	return accountView{
		ID:          u.ID.Hex(),
		Username:    u.Username,
		Role:        u.Role,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
	}
}

// List handles GET /api/users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.logger.Error("user list failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load users")
		return
	}
	out := make([]accountView, 0, len(users))
	for _, u := range users {
		out = append(out, toView(u))
	}
	jsonutil.OK(w, map[string]any{"users": out})
}

// Create handles POST /api/users. Weak passwords are refused with the
// full issue list so the admin UI can show every problem at once.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		Role        string `json:"role"`
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	if normalize.Username(in.Username) == "" {
		jsonutil.BadRequest(w, "username is required")
		return
	}
	if issues := authutil.PasswordIssues(in.Password); len(issues) > 0 {
		jsonutil.JSON(w, http.StatusBadRequest, map[string]any{
			"error":  "password rejected",
			"issues": issues,
		})
		return
	}

	role := normalize.Role(in.Role)
	if role == "" {
		role = models.RoleViewer
	}
	if !models.IsValidRole(role) {
		jsonutil.BadRequest(w, "role must be admin or viewer")
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.logger.Error("password hash failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to create user")
		return
	}

	user, err := h.users.Create(r.Context(), models.User{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         role,
		DisplayName:  htmlsanitize.Plain(in.DisplayName),
	})
	if err != nil {
		if err == userstore.ErrDuplicateUsername {
			jsonutil.BadRequest(w, err.Error())
			return
		}
		h.logger.Error("user create failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to create user")
		return
	}

	h.audit.AdminAction(r.Context(), r, audit.EventUserCreated, actorName(r), user.Username, map[string]string{
		"role": user.Role,
	})
	jsonutil.Created(w, toView(user))
}

// Delete handles DELETE /api/users/{username}. Deleting the last admin is
// refused so the dashboard can never lock itself out.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	username := normalize.Username(chi.URLParam(r, "username"))
	if username == "" {
		jsonutil.BadRequest(w, "username is required")
		return
	}

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		if err == userstore.ErrNotFound {
			jsonutil.NotFound(w, "user not found")
			return
		}
		h.logger.Error("user lookup failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to delete user")
		return
	}

	if user.Role == models.RoleAdmin {
		admins, err := h.users.CountAdmins(r.Context())
		if err != nil {
			h.logger.Error("admin count failed", zap.Error(err))
			jsonutil.InternalError(w, "failed to delete user")
			return
		}
		if admins <= 1 {
			jsonutil.BadRequest(w, "cannot delete the last admin account")
			return
		}
	}

	if err := h.users.Delete(r.Context(), username); err != nil {
		if err == userstore.ErrNotFound {
			jsonutil.NotFound(w, "user not found")
			return
		}
		h.logger.Error("user delete failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to delete user")
		return
	}

	h.audit.AdminAction(r.Context(), r, audit.EventUserDeleted, actorName(r), username, nil)
	jsonutil.OK(w, map[string]any{"deleted": true})
}

// Wipe handles POST /api/users/{username}/wipe: removes all events and
// screenshots (including blobs, best-effort) plus department assignments
// for the actor. The login account, if any, survives.
func (h *Handler) Wipe(w http.ResponseWriter, r *http.Request) {
	username := normalize.Username(chi.URLParam(r, "username"))
	if username == "" {
		jsonutil.BadRequest(w, "username is required")
		return
	}

	events, err := h.events.DeleteByUsername(r.Context(), username)
	if err != nil {
		h.logger.Error("event wipe failed",
			zap.String("username", username),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to wipe user data")
		return
	}

	var blobFailures int
	if h.blobs != nil {
		filenames, err := h.shots.FilenamesByUsername(r.Context(), username)
		if err != nil {
			h.logger.Error("screenshot filename listing failed",
				zap.String("username", username),
				zap.Error(err))
			jsonutil.InternalError(w, "failed to wipe user data")
			return
		}
		for _, name := range filenames {
			if err := h.blobs.Delete(r.Context(), name); err != nil {
				blobFailures++
				h.logger.Warn("wipe: blob delete failed",
					zap.String("filename", name),
					zap.Error(err))
			}
		}
	}

	shots, err := h.shots.DeleteByUsername(r.Context(), username)
	if err != nil {
		h.logger.Error("screenshot wipe failed",
			zap.String("username", username),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to wipe user data")
		return
	}

	assignments, err := h.depts.RemoveUser(r.Context(), username)
	if err != nil {
		h.logger.Error("assignment wipe failed",
			zap.String("username", username),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to wipe user data")
		return
	}

	h.audit.AdminAction(r.Context(), r, audit.EventUserDataWiped, actorName(r), username, map[string]string{
		"events":        strconv.FormatInt(events, 10),
		"screenshots":   strconv.FormatInt(shots, 10),
		"assignments":   strconv.FormatInt(assignments, 10),
		"blob_failures": strconv.Itoa(blobFailures),
	})
	jsonutil.OK(w, map[string]any{
		"events":       events,
		"screenshots":  shots,
		"assignments":  assignments,
		"blobFailures": blobFailures,
	})
}
