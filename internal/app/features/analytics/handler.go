// Package analytics serves the dashboard rollup endpoints.
//
// Endpoints:
//   - GET /api/analytics/summary - Event/duration/user counts per window
//   - GET /api/analytics/top-domains - Domains ranked by total time
//   - GET /api/analytics/users - Per-user activity stats
//
// All endpoints require a signed-in session.
package analytics

import (
	"math"
	"net/http"
	"strconv"
	"time"

	eventstore "github.com/workwatchhq/workwatch/internal/app/store/events"
	screenshotstore "github.com/workwatchhq/workwatch/internal/app/store/screenshots"
	userstore "github.com/workwatchhq/workwatch/internal/app/store/users"
	"github.com/workwatchhq/workwatch/internal/app/system/jsonutil"
	"github.com/workwatchhq/workwatch/internal/app/system/timerange"
	"go.uber.org/zap"
)

const defaultTopDomains = 10

// Handler handles analytics requests.
type Handler struct {
	events *eventstore.Store
	shots  *screenshotstore.Store
	users  *userstore.Store
	logger *zap.Logger
}

func NewHandler(events *eventstore.Store, shots *screenshotstore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		events: events,
		shots:  shots,
		users:  users,
		logger: logger,
	}
}

type windowStats struct {
	Events          int64   `json:"events"`
	TotalDuration   int64   `json:"totalDuration"`
	UniqueUsers     int     `json:"uniqueUsers"`
	UniqueDomains   int     `json:"uniqueDomains"`
	AverageDuration float64 `json:"averageDuration"`
}

func toWindowStats(s eventstore.Summary) windowStats {
	return windowStats{
		Events:          s.Events,
		TotalDuration:   s.TotalDurationMs,
		UniqueUsers:     s.UniqueUsers,
		UniqueDomains:   s.UniqueDomains,
		AverageDuration: s.AvgDurationMs,
	}
}

// Summary handles GET /api/analytics/summary. The rollup covers all time,
// today, a rolling 7 days, and the calendar month, plus account and
// screenshot counts.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	today := timerange.StartOfDay(now)
	weekAgo := timerange.LastDays(now, 7)
	monthStart := timerange.StartOfMonth(now)

	windows := map[string]*time.Time{
		"allTime":   nil,
		"today":     &today,
		"last7Days": &weekAgo,
		"thisMonth": &monthStart,
	}

	out := make(map[string]any, len(windows)+2)
	for name, since := range windows {
		summary, err := h.events.Summarize(r.Context(), eventstore.Filter{Since: since})
		if err != nil {
			h.logger.Error("analytics summary failed",
				zap.String("window", name),
				zap.Error(err))
			jsonutil.InternalError(w, "failed to compute summary")
			return
		}
		out[name] = toWindowStats(summary)
	}

	userCount, err := h.users.Count(r.Context())
	if err != nil {
		h.logger.Error("user count failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to compute summary")
		return
	}
	shotCount, err := h.shots.Count(r.Context())
	if err != nil {
		h.logger.Error("screenshot count failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to compute summary")
		return
	}

	out["registeredUsers"] = userCount
	out["screenshots"] = shotCount
	jsonutil.OK(w, out)
}

// TopDomains handles GET /api/analytics/top-domains?limit=N.
func (h *Handler) TopDomains(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultTopDomains)
	if n, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil && n > 0 {
		limit = n
	}

	stats, err := h.events.TopDomains(r.Context(), limit)
	if err != nil {
		h.logger.Error("top domains query failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to compute top domains")
		return
	}

	type row struct {
		Domain        string    `json:"domain"`
		TotalDuration int64     `json:"totalDuration"`
		TotalMinutes  int64     `json:"totalMinutes"`
		Visits        int64     `json:"visits"`
		LastVisit     time.Time `json:"lastVisit"`
	}
	out := make([]row, 0, len(stats))
	for _, d := range stats {
		out = append(out, row{
			Domain:        d.Domain,
			TotalDuration: d.TotalDurationMs,
			TotalMinutes:  int64(math.Round(float64(d.TotalDurationMs) / 60000)),
			Visits:        d.Visits,
			LastVisit:     d.LastVisit,
		})
	}
	jsonutil.OK(w, map[string]any{"domains": out})
}

// Users handles GET /api/analytics/users.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	stats, err := h.events.PerUserStats(r.Context(), nil)
	if err != nil {
		h.logger.Error("per-user stats query failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to compute user stats")
		return
	}

	type row struct {
		Username        string  `json:"username"`
		Events          int64   `json:"events"`
		UniqueDomains   int     `json:"uniqueDomains"`
		TotalDuration   int64   `json:"totalDuration"`
		AverageDuration float64 `json:"averageDuration"`
	}
	out := make([]row, 0, len(stats))
	for _, u := range stats {
		out = append(out, row{
			Username:        u.Username,
			Events:          u.Events,
			UniqueDomains:   u.UniqueDomains,
			TotalDuration:   u.TotalDurationMs,
			AverageDuration: u.AvgDurationMs,
		})
	}
	jsonutil.OK(w, map[string]any{"users": out})
}
