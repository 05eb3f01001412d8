package departments

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	auditstore "github.com/workwatchhq/workwatch/internal/app/store/audit"
	deptstore "github.com/workwatchhq/workwatch/internal/app/store/departments"
	eventstore "github.com/workwatchhq/workwatch/internal/app/store/events"
	"github.com/workwatchhq/workwatch/internal/app/system/auditlog"
	"github.com/workwatchhq/workwatch/internal/app/system/auth"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"github.com/workwatchhq/workwatch/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestRouters(t *testing.T, db *mongo.Database) (http.Handler, http.Handler) {
	t.Helper()
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager("test-session-key-0123456789abcdef", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}

	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{Auth: "db", Admin: "db"})
	h := NewHandler(deptstore.New(db), eventstore.New(db), audit, logger)
	return Routes(h, sm), AssignmentRoutes(h)
}

func TestHandler_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router, _ := newTestRouters(t, db)
	admin := testutil.AdminUser()

	t.Run("creates and sanitizes", func(t *testing.T) {
		req := testutil.NewAuthenticatedJSONRequest(http.MethodPost, "/",
			`{"name":"<b>Engineering</b>","color":"#3366ff","description":"<script>x</script>builds things"}`, admin)
		rec := testutil.NewRecorder()

		router.ServeHTTP(rec, req)

		rec.AssertStatus(t, http.StatusCreated)

		var dept models.Department
		if err := json.NewDecoder(rec.Body).Decode(&dept); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if dept.Name != "Engineering" {
			t.Errorf("name = %q, want markup stripped", dept.Name)
		}
		if dept.Description != "builds things" {
			t.Errorf("description = %q, want markup stripped", dept.Description)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		req := testutil.NewAuthenticatedJSONRequest(http.MethodPost, "/", `{"name":"Engineering"}`, admin)
		rec := testutil.NewRecorder()

		router.ServeHTTP(rec, req)

		rec.AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("name required", func(t *testing.T) {
		req := testutil.NewAuthenticatedJSONRequest(http.MethodPost, "/", `{"color":"#fff"}`, admin)
		rec := testutil.NewRecorder()

		router.ServeHTTP(rec, req)

		rec.AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("viewer is forbidden", func(t *testing.T) {
		req := testutil.NewAuthenticatedJSONRequest(http.MethodPost, "/", `{"name":"Sales"}`, testutil.ViewerUser())
		rec := testutil.NewRecorder()

		router.ServeHTTP(rec, req)

		rec.AssertStatus(t, http.StatusForbidden)
	})
}

func TestHandler_AssignUnassign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, assignRouter := newTestRouters(t, db)
	admin := testutil.AdminUser()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	dept, err := deptstore.New(db).Create(ctx, models.Department{Name: "Engineering"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("assign", func(t *testing.T) {
		req := testutil.NewAuthenticatedJSONRequest(http.MethodPost, "/",
			`{"username":"alice","departmentId":"`+dept.ID.Hex()+`"}`, admin)
		rec := testutil.NewRecorder()

		assignRouter.ServeHTTP(rec, req)

		rec.AssertStatus(t, http.StatusCreated)
	})

	t.Run("double assign", func(t *testing.T) {
		req := testutil.NewAuthenticatedJSONRequest(http.MethodPost, "/",
			`{"username":"alice","departmentId":"`+dept.ID.Hex()+`"}`, admin)
		rec := testutil.NewRecorder()

		assignRouter.ServeHTTP(rec, req)

		rec.AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("unassign", func(t *testing.T) {
		req := testutil.NewAuthenticatedJSONRequest(http.MethodDelete, "/",
			`{"username":"alice","departmentId":"`+dept.ID.Hex()+`"}`, admin)
		rec := testutil.NewRecorder()

		assignRouter.ServeHTTP(rec, req)

		rec.AssertStatus(t, http.StatusOK)
	})
}

func TestHandler_Analytics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router, _ := newTestRouters(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	depts := deptstore.New(db)
	events := eventstore.New(db)

	dept, err := depts.Create(ctx, models.Department{Name: "Engineering", Color: "#3366ff"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := depts.Assign(ctx, "alice", dept.ID); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	now := time.Now().UTC()
	if _, err := events.InsertBatch(ctx, []models.Event{
		{Timestamp: now, Username: "alice", Domain: "github.com", DurationMs: 3600000},
		{Timestamp: now, Username: "alice", Domain: "jira.local", DurationMs: 1800000},
	}); err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/analytics", testutil.ViewerUser())
	rec := testutil.NewRecorder()

	router.ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Departments []struct {
			Name          string  `json:"name"`
			Members       int     `json:"userCount"`
			Events        int64   `json:"events"`
			DurationHours float64 `json:"durationHours"`
			UniqueDomains int     `json:"uniqueDomains"`
		} `json:"departments"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Departments) != 1 {
		t.Fatalf("departments = %d, want 1", len(resp.Departments))
	}
	row := resp.Departments[0]
	if row.Name != "Engineering" || row.Members != 1 || row.Events != 2 {
		t.Errorf("row = %+v", row)
	}
	if row.DurationHours != 1.5 {
		t.Errorf("durationHours = %v, want 1.5", row.DurationHours)
	}
	if row.UniqueDomains != 2 {
		t.Errorf("uniqueDomains = %d, want 2", row.UniqueDomains)
	}
}
