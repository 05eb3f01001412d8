package authapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	auditstore "github.com/workwatchhq/workwatch/internal/app/store/audit"
	"github.com/workwatchhq/workwatch/internal/app/store/ratelimit"
	userstore "github.com/workwatchhq/workwatch/internal/app/store/users"
	"github.com/workwatchhq/workwatch/internal/app/system/auditlog"
	"github.com/workwatchhq/workwatch/internal/app/system/auth"
	"github.com/workwatchhq/workwatch/internal/app/system/authutil"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"github.com/workwatchhq/workwatch/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, db *mongo.Database, limiter *ratelimit.Store) *Handler {
	t.Helper()
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager("test-session-key-0123456789abcdef", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}

	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{Auth: "db", Admin: "db"})
	return NewHandler(userstore.New(db), sm, limiter, audit, logger)
}

func createUser(t *testing.T, db *mongo.Database, username, password, role string) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := authutil.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if _, err := userstore.New(db).Create(ctx, models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestHandler_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db, nil)
	createUser(t, db, "alice", "Sup3r-secret-pw", models.RoleAdmin)

	t.Run("successful login", func(t *testing.T) {
		req := testutil.NewJSONRequest(http.MethodPost, "/api/login", `{"username":"Alice","password":"Sup3r-secret-pw"}`)
		rec := testutil.NewRecorder()

		h.Login(rec, req)

		rec.AssertStatus(t, http.StatusOK)

		var resp struct {
			User userView `json:"user"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.User.Username != "alice" {
			t.Errorf("user.username = %q, want alice", resp.User.Username)
		}
		if resp.User.Role != models.RoleAdmin {
			t.Errorf("user.role = %q, want admin", resp.User.Role)
		}
		if rec.Header().Get("Set-Cookie") == "" {
			t.Error("login did not set a session cookie")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		req := testutil.NewJSONRequest(http.MethodPost, "/api/login", `{"username":"alice","password":"wrong"}`)
		rec := testutil.NewRecorder()

		h.Login(rec, req)

		rec.AssertStatus(t, http.StatusUnauthorized)
		rec.AssertContains(t, "invalid username or password")
	})

	t.Run("unknown user gets the same message", func(t *testing.T) {
		req := testutil.NewJSONRequest(http.MethodPost, "/api/login", `{"username":"nobody","password":"whatever"}`)
		rec := testutil.NewRecorder()

		h.Login(rec, req)

		rec.AssertStatus(t, http.StatusUnauthorized)
		rec.AssertContains(t, "invalid username or password")
	})

	t.Run("missing fields", func(t *testing.T) {
		req := testutil.NewJSONRequest(http.MethodPost, "/api/login", `{"username":"alice"}`)
		rec := testutil.NewRecorder()

		h.Login(rec, req)

		rec.AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := testutil.NewJSONRequest(http.MethodPost, "/api/login", `{notjson`)
		rec := testutil.NewRecorder()

		h.Login(rec, req)

		rec.AssertStatus(t, http.StatusBadRequest)
	})
}

func TestHandler_Login_RateLimited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	limiter := ratelimit.New(db, 2, 15*time.Minute, 30*time.Minute)
	h := newTestHandler(t, db, limiter)
	createUser(t, db, "alice", "Sup3r-secret-pw", models.RoleViewer)

	// Exhaust the budget with failures.
	for i := 0; i < 2; i++ {
		req := testutil.NewJSONRequest(http.MethodPost, "/api/login", `{"username":"alice","password":"wrong"}`)
		rec := testutil.NewRecorder()
		h.Login(rec, req)
		rec.AssertStatus(t, http.StatusUnauthorized)
	}

	// The right password no longer helps until the lockout expires.
	req := testutil.NewJSONRequest(http.MethodPost, "/api/login", `{"username":"alice","password":"Sup3r-secret-pw"}`)
	rec := testutil.NewRecorder()
	h.Login(rec, req)
	rec.AssertStatus(t, http.StatusTooManyRequests)
	rec.AssertContains(t, "too many failed attempts")
}

func TestHandler_Status(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db, nil)

	t.Run("signed in", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/auth/status", testutil.AdminUser())
		rec := testutil.NewRecorder()

		h.Status(rec, req)

		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, `"testadmin"`)
	})

	t.Run("anonymous", func(t *testing.T) {
		req := testutil.NewRequest(http.MethodGet, "/api/auth/status")
		rec := testutil.NewRecorder()

		h.Status(rec, req)

		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, `"user":null`)
	})
}

func TestHandler_Logout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db, nil)

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/api/logout", testutil.AdminUser())
	rec := testutil.NewRecorder()

	h.Logout(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"loggedOut":true`)
}
