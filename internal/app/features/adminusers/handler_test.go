package adminusers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	auditstore "github.com/workwatchhq/workwatch/internal/app/store/audit"
	deptstore "github.com/workwatchhq/workwatch/internal/app/store/departments"
	eventstore "github.com/workwatchhq/workwatch/internal/app/store/events"
	screenshotstore "github.com/workwatchhq/workwatch/internal/app/store/screenshots"
	userstore "github.com/workwatchhq/workwatch/internal/app/store/users"
	"github.com/workwatchhq/workwatch/internal/app/system/auditlog"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"github.com/workwatchhq/workwatch/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, db *mongo.Database) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{Auth: "db", Admin: "db"})
	h := NewHandler(
		userstore.New(db),
		eventstore.New(db),
		screenshotstore.New(db),
		deptstore.New(db),
		nil,
		audit,
		logger,
	)
	return Routes(h)
}

func seedUser(t *testing.T, db *mongo.Database, username, role string) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := userstore.New(db).Create(ctx, models.User{
		Username:     username,
		PasswordHash: "$2a$12$fakehash",
		Role:         role,
	}); err != nil {
		t.Fatalf("Create(%q) error = %v", username, err)
	}
}

func TestHandler_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(t, db)
	admin := testutil.AdminUser()

	t.Run("creates viewer by default", func(t *testing.T) {
		req := testutil.NewAuthenticatedJSONRequest(http.MethodPost, "/",
			`{"username":"Alice","password":"Sup3r-secret-pw","displayName":"Alice Smith"}`, admin)
		rec := testutil.NewRecorder()

		router.ServeHTTP(rec, req)

		rec.AssertStatus(t, http.StatusCreated)

		var resp accountView
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Username != "alice" {
			t.Errorf("username = %q, want alice", resp.Username)
		}
		if resp.Role != models.RoleViewer {
			t.Errorf("role = %q, want viewer", resp.Role)
		}
	})

	t.Run("weak password lists every issue", func(t *testing.T) {
		req := testutil.NewAuthenticatedJSONRequest(http.MethodPost, "/",
			`{"username":"bob","password":"short"}`, admin)
		rec := testutil.NewRecorder()

		router.ServeHTTP(rec, req)

		rec.AssertStatus(t, http.StatusBadRequest)
		rec.AssertContains(t, "password rejected")
	})

	t.Run("duplicate username", func(t *testing.T) {
		req := testutil.NewAuthenticatedJSONRequest(http.MethodPost, "/",
			`{"username":"alice","password":"Sup3r-secret-pw"}`, admin)
		rec := testutil.NewRecorder()

		router.ServeHTTP(rec, req)

		rec.AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("invalid role", func(t *testing.T) {
		req := testutil.NewAuthenticatedJSONRequest(http.MethodPost, "/",
			`{"username":"carol","password":"Sup3r-secret-pw","role":"superuser"}`, admin)
		rec := testutil.NewRecorder()

		router.ServeHTTP(rec, req)

		rec.AssertStatus(t, http.StatusBadRequest)
	})
}

func TestHandler_Delete_LastAdminGuard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(t, db)
	admin := testutil.AdminUser()

	seedUser(t, db, "root", models.RoleAdmin)
	seedUser(t, db, "viewer1", models.RoleViewer)

	t.Run("refuses to delete the last admin", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/root", admin)
		rec := testutil.NewRecorder()

		router.ServeHTTP(rec, req)

		rec.AssertStatus(t, http.StatusBadRequest)
		rec.AssertContains(t, "cannot delete the last admin account")
	})

	t.Run("deletes a viewer", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/viewer1", admin)
		rec := testutil.NewRecorder()

		router.ServeHTTP(rec, req)

		rec.AssertStatus(t, http.StatusOK)
	})

	t.Run("deletes an admin when another remains", func(t *testing.T) {
		seedUser(t, db, "root2", models.RoleAdmin)

		req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/root2", admin)
		rec := testutil.NewRecorder()

		router.ServeHTTP(rec, req)

		rec.AssertStatus(t, http.StatusOK)
	})

	t.Run("missing user", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/nobody", admin)
		rec := testutil.NewRecorder()

		router.ServeHTTP(rec, req)

		rec.AssertStatus(t, http.StatusNotFound)
	})
}

func TestHandler_Wipe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(t, db)
	admin := testutil.AdminUser()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	events := eventstore.New(db)
	shots := screenshotstore.New(db)
	depts := deptstore.New(db)

	now := time.Now().UTC()
	if _, err := events.InsertBatch(ctx, []models.Event{
		{Timestamp: now, Username: "alice", Domain: "github.com"},
		{Timestamp: now, Username: "alice", Domain: "jira.local"},
		{Timestamp: now, Username: "bob", Domain: "github.com"},
	}); err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}
	if _, err := shots.Insert(ctx, models.Screenshot{Filename: "a.png", Username: "alice", MTime: now}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	dept, err := depts.Create(ctx, models.Department{Name: "Engineering"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := depts.Assign(ctx, "alice", dept.ID); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/alice/wipe", admin)
	rec := testutil.NewRecorder()

	router.ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Events      int64 `json:"events"`
		Screenshots int64 `json:"screenshots"`
		Assignments int64 `json:"assignments"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Events != 2 || resp.Screenshots != 1 || resp.Assignments != 1 {
		t.Errorf("wipe response = %+v, want 2 events, 1 screenshot, 1 assignment", resp)
	}

	// Other users are untouched.
	_, total, err := events.Query(ctx, eventstore.Filter{Username: "bob"}, 1, 10)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if total != 1 {
		t.Errorf("bob's events = %d, want 1", total)
	}
}
