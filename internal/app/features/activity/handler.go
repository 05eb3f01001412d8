// Package activity serves the filtered, paginated activity feed the
// dashboard renders.
//
// Endpoints:
//   - GET /api/activity - Paginated events with aggregate stats
//
// All endpoints require a signed-in session.
package activity

import (
	"net/http"
	"strconv"
	"time"

	eventstore "github.com/workwatchhq/workwatch/internal/app/store/events"
	"github.com/workwatchhq/workwatch/internal/app/store/departments"
	"github.com/workwatchhq/workwatch/internal/app/store/profiles"
	"github.com/workwatchhq/workwatch/internal/app/system/jsonutil"
	"github.com/workwatchhq/workwatch/internal/app/system/normalize"
	"github.com/workwatchhq/workwatch/internal/app/system/timerange"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Handler handles activity feed requests.
type Handler struct {
	events   *eventstore.Store
	depts    *departments.Store
	profiles *profiles.Store
	logger   *zap.Logger
}

func NewHandler(events *eventstore.Store, depts *departments.Store, profiles *profiles.Store, logger *zap.Logger) *Handler {
	return &Handler{
		events:   events,
		depts:    depts,
		profiles: profiles,
		logger:   logger,
	}
}

// Item is one enriched activity row.
type Item struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName,omitempty"`
	Department  string    `json:"department,omitempty"`
	Domain      string    `json:"domain,omitempty"`
	Type        string    `json:"type,omitempty"`
	DurationMs  int64     `json:"durationMs"`
	Data        bson.M    `json:"data,omitempty"`
}

// ParseFilter reads the shared activity filter params. "user" is accepted
// as an alias for "username" for older dashboard builds.
func ParseFilter(r *http.Request, now time.Time) (eventstore.Filter, string) {
	q := r.URL.Query()

	username := normalize.QueryParam(q.Get("username"))
	if username == "" {
		username = normalize.QueryParam(q.Get("user"))
	}

	f := eventstore.Filter{
		Username: normalize.Username(username),
		Domain:   normalize.Domain(q.Get("domain")),
		Type:     normalize.QueryParam(q.Get("type")),
	}

	rangeName := normalize.QueryParam(q.Get("timeRange"))
	if rangeName == "" {
		rangeName = timerange.All
	}
	if !timerange.Valid(rangeName) {
		return f, "timeRange must be one of all, today, week, month"
	}
	if start, ok := timerange.Start(rangeName, now); ok {
		f.Since = &start
	}
	return f, ""
}

// ParsePagination reads page/limit with the shared bounds.
func ParsePagination(r *http.Request) (page, limit int64) {
	q := r.URL.Query()
	page = 1
	if n, err := strconv.ParseInt(q.Get("page"), 10, 64); err == nil && n > 0 {
		page = n
	}
	limit = defaultLimit
	if n, err := strconv.ParseInt(q.Get("limit"), 10, 64); err == nil && n > 0 {
		limit = n
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// List handles GET /api/activity.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, problem := ParseFilter(r, time.Now())
	if problem != "" {
		jsonutil.BadRequest(w, problem)
		return
	}
	page, limit := ParsePagination(r)

	events, total, err := h.events.Query(r.Context(), filter, page, limit)
	if err != nil {
		h.logger.Error("activity query failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load activity")
		return
	}

	items, err := h.enrich(r, events)
	if err != nil {
		h.logger.Error("activity enrichment failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load activity")
		return
	}

	// Older dashboard builds expect the bare array.
	if normalize.QueryParam(r.URL.Query().Get("format")) == "flat" {
		jsonutil.OK(w, items)
		return
	}

	summary, err := h.events.Summarize(r.Context(), filter)
	if err != nil {
		h.logger.Error("activity summary failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load activity")
		return
	}

	jsonutil.OK(w, map[string]any{
		"activities": items,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"stats": map[string]any{
			"events":          summary.Events,
			"totalDuration":   summary.TotalDurationMs,
			"uniqueUsers":     summary.UniqueUsers,
			"uniqueDomains":   summary.UniqueDomains,
			"averageDuration": summary.AvgDurationMs,
		},
	})
}

// enrich resolves department and display-name overlays for each row. When
// a user belongs to several departments the most recently assigned wins.
func (h *Handler) enrich(r *http.Request, events []models.Event) ([]Item, error) {
	deptByUser, err := h.depts.DepartmentNamesByUsername(r.Context())
	if err != nil {
		return nil, err
	}
	nameByUser, err := h.profiles.DisplayNamesByUsername(r.Context())
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(events))
	for _, ev := range events {
		items = append(items, Item{
			ID:          ev.ID.Hex(),
			Timestamp:   ev.Timestamp,
			Username:    ev.Username,
			DisplayName: nameByUser[ev.Username],
			Department:  deptByUser[ev.Username],
			Domain:      ev.Domain,
			Type:        ev.Type,
			DurationMs:  ev.DurationMs,
			Data:        ev.Data,
		})
	}
	return items, nil
}
