// Package authapi serves the session endpoints the dashboard logs in
// through.
//
// Endpoints:
//   - POST /api/login - Create a session
//   - POST /api/logout - Destroy the session
//   - GET /api/auth/status - Current user or null
package authapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/workwatchhq/workwatch/internal/app/store/ratelimit"
	userstore "github.com/workwatchhq/workwatch/internal/app/store/users"
	"github.com/workwatchhq/workwatch/internal/app/system/auditlog"
	"github.com/workwatchhq/workwatch/internal/app/system/auth"
	"github.com/workwatchhq/workwatch/internal/app/system/authutil"
	"github.com/workwatchhq/workwatch/internal/app/system/jsonutil"
	"github.com/workwatchhq/workwatch/internal/app/system/normalize"
	"go.uber.org/zap"
)

// Handler handles session requests.
type Handler struct {
	users    *userstore.Store
	sessions *auth.SessionManager
	limiter  *ratelimit.Store
	audit    *auditlog.Logger
	logger   *zap.Logger
}

func NewHandler(users *userstore.Store, sessions *auth.SessionManager, limiter *ratelimit.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		users:    users,
		sessions: sessions,
		limiter:  limiter,
		audit:    audit,
		logger:   logger,
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) recordFailure(ctx context.Context, username, ip string) {
	if h.limiter != nil {
		h.limiter.RecordFailure(ctx, username, ip)
	}
}

type userView struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName,omitempty"`
}

// Login handles POST /api/login. Failed attempts are rate limited per
// username+IP; the response never says whether the username exists.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	username := normalize.Username(in.Username)
	if username == "" || in.Password == "" {
		jsonutil.BadRequest(w, "username and password are required")
		return
	}

	// Limiter is nil when rate limiting is disabled.
	ip := clientIP(r)
	if h.limiter != nil {
		allowed, _, lockedUntil := h.limiter.CheckAllowed(r.Context(), username, ip)
		if !allowed {
			h.audit.LoginRateLimited(r.Context(), r, username)
			msg := "too many failed attempts, try again later"
			if lockedUntil != nil {
				msg = "too many failed attempts, locked until " + lockedUntil.UTC().Format(time.RFC3339)
			}
			jsonutil.Error(w, http.StatusTooManyRequests, msg)
			return
		}
	}

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		if err == userstore.ErrNotFound {
			h.recordFailure(r.Context(), username, ip)
			h.audit.LoginFailedUserNotFound(r.Context(), r, username)
			jsonutil.Unauthorized(w, "invalid username or password")
			return
		}
		h.logger.Error("login lookup failed", zap.Error(err))
		jsonutil.InternalError(w, "login failed")
		return
	}

	if !authutil.CheckPassword(in.Password, user.PasswordHash) {
		h.recordFailure(r.Context(), username, ip)
		h.audit.LoginFailedWrongPassword(r.Context(), r, username)
		jsonutil.Unauthorized(w, "invalid username or password")
		return
	}

	if err := h.sessions.CreateSession(w, r, user.ID, user.Username, user.Role); err != nil {
		h.logger.Error("session create failed", zap.Error(err))
		jsonutil.InternalError(w, "login failed")
		return
	}

	if h.limiter != nil {
		if err := h.limiter.ClearOnSuccess(r.Context(), username, ip); err != nil {
			h.logger.Warn("rate limit clear failed", zap.Error(err))
		}
	}
	if err := h.users.UpdateLastLogin(r.Context(), user.ID, time.Now().UTC()); err != nil {
		h.logger.Warn("last login update failed", zap.Error(err))
	}
	h.audit.LoginSuccess(r.Context(), r, user.Username)

	jsonutil.OK(w, map[string]any{
		"user": userView{
			Username:    user.Username,
			Role:        user.Role,
			DisplayName: user.DisplayName,
		},
	})
}

// Logout handles POST /api/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.audit.Logout(r.Context(), r, u.Username)
	}
	h.sessions.DestroySession(w, r)
	jsonutil.OK(w, map[string]any{"loggedOut": true})
}

// Status handles GET /api/auth/status. Always 200; "user" is null when
// nobody is signed in so the SPA can branch without error handling.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.OK(w, map[string]any{"user": nil})
		return
	}
	jsonutil.OK(w, map[string]any{
		"user": userView{
			Username:    u.Username,
			Role:        u.Role,
			DisplayName: u.DisplayName,
		},
	})
}
