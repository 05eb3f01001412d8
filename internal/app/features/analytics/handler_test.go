package analytics

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	eventstore "github.com/workwatchhq/workwatch/internal/app/store/events"
	screenshotstore "github.com/workwatchhq/workwatch/internal/app/store/screenshots"
	userstore "github.com/workwatchhq/workwatch/internal/app/store/users"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"github.com/workwatchhq/workwatch/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(db *mongo.Database) http.Handler {
	h := NewHandler(eventstore.New(db), screenshotstore.New(db), userstore.New(db), zap.NewNop())
	return Routes(h)
}

func seedEvents(t *testing.T, db *mongo.Database, events []models.Event) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := eventstore.New(db).InsertBatch(ctx, events); err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}
}

func TestHandler_Summary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestHandler(db)

	now := time.Now().UTC()
	seedEvents(t, db, []models.Event{
		{Timestamp: now, Username: "alice", Domain: "github.com", DurationMs: 4000},
		{Timestamp: now, Username: "bob", Domain: "jira.local", DurationMs: 2000},
		{Timestamp: now.AddDate(0, -2, 0), Username: "alice", Domain: "github.com", DurationMs: 3000},
	})

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/summary", testutil.ViewerUser())
	rec := testutil.NewRecorder()

	router.ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		AllTime struct {
			Events          int64   `json:"events"`
			TotalDuration   int64   `json:"totalDuration"`
			UniqueUsers     int     `json:"uniqueUsers"`
			AverageDuration float64 `json:"averageDuration"`
		} `json:"allTime"`
		Today struct {
			Events int64 `json:"events"`
		} `json:"today"`
		RegisteredUsers int64 `json:"registeredUsers"`
		Screenshots     int64 `json:"screenshots"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AllTime.Events != 3 || resp.AllTime.TotalDuration != 9000 || resp.AllTime.UniqueUsers != 2 {
		t.Errorf("allTime = %+v", resp.AllTime)
	}
	if resp.AllTime.AverageDuration != 3000 {
		t.Errorf("averageDuration = %v, want 3000", resp.AllTime.AverageDuration)
	}
	if resp.Today.Events != 2 {
		t.Errorf("today events = %d, want 2", resp.Today.Events)
	}
	if resp.RegisteredUsers != 0 || resp.Screenshots != 0 {
		t.Errorf("counts = %d users, %d screenshots, want 0 and 0", resp.RegisteredUsers, resp.Screenshots)
	}
}

func TestHandler_TopDomains(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestHandler(db)

	now := time.Now().UTC()
	seedEvents(t, db, []models.Event{
		{Timestamp: now, Username: "alice", Domain: "github.com", DurationMs: 60000},
		{Timestamp: now, Username: "bob", Domain: "github.com", DurationMs: 60000},
		{Timestamp: now, Username: "alice", Domain: "jira.local", DurationMs: 30000},
	})

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/top-domains?limit=1", testutil.ViewerUser())
	rec := testutil.NewRecorder()

	router.ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Domains []struct {
			Domain        string `json:"domain"`
			TotalDuration int64  `json:"totalDuration"`
			TotalMinutes  int64  `json:"totalMinutes"`
			Visits        int64  `json:"visits"`
		} `json:"domains"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Domains) != 1 {
		t.Fatalf("domains = %d, want 1 with limit=1", len(resp.Domains))
	}
	top := resp.Domains[0]
	if top.Domain != "github.com" || top.Visits != 2 {
		t.Errorf("top = %+v", top)
	}
	if top.TotalDuration != 120000 || top.TotalMinutes != 2 {
		t.Errorf("durations = %d ms, %d min, want 120000 and 2", top.TotalDuration, top.TotalMinutes)
	}
}

func TestHandler_Users(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestHandler(db)

	now := time.Now().UTC()
	seedEvents(t, db, []models.Event{
		{Timestamp: now, Username: "alice", Domain: "github.com", DurationMs: 4000},
		{Timestamp: now, Username: "alice", Domain: "jira.local", DurationMs: 2000},
		{Timestamp: now, Username: "bob", Domain: "github.com", DurationMs: 1000},
	})

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/users", testutil.ViewerUser())
	rec := testutil.NewRecorder()

	router.ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Users []struct {
			Username        string  `json:"username"`
			Events          int64   `json:"events"`
			UniqueDomains   int     `json:"uniqueDomains"`
			TotalDuration   int64   `json:"totalDuration"`
			AverageDuration float64 `json:"averageDuration"`
		} `json:"users"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Users) != 2 {
		t.Fatalf("users = %d, want 2", len(resp.Users))
	}

	byName := map[string]int64{}
	for _, u := range resp.Users {
		byName[u.Username] = u.Events
		if u.Username == "alice" && u.AverageDuration != 3000 {
			t.Errorf("alice averageDuration = %v, want 3000", u.AverageDuration)
		}
	}
	if byName["alice"] != 2 || byName["bob"] != 1 {
		t.Errorf("events by user = %v", byName)
	}
}
