// Package export dumps filtered activity as CSV or JSON attachments.
//
// Endpoints (admin):
//   - GET /api/export/csv
//   - GET /api/export/json
//
// Both accept the same filters as /api/activity, unpaginated.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/workwatchhq/workwatch/internal/app/features/activity"
	"github.com/workwatchhq/workwatch/internal/app/store/audit"
	"github.com/workwatchhq/workwatch/internal/app/store/departments"
	eventstore "github.com/workwatchhq/workwatch/internal/app/store/events"
	"github.com/workwatchhq/workwatch/internal/app/system/auditlog"
	"github.com/workwatchhq/workwatch/internal/app/system/auth"
	"github.com/workwatchhq/workwatch/internal/app/system/jsonutil"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"go.uber.org/zap"
)

// utf8BOM makes Excel detect UTF-8 in exported CSVs.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{"time", "user", "department", "application", "domain", "type", "duration_ms", "details"}

// Handler handles export requests.
type Handler struct {
	events *eventstore.Store
	depts  *departments.Store
	audit  *auditlog.Logger
	logger *zap.Logger
}

func NewHandler(events *eventstore.Store, depts *departments.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		events: events,
		depts:  depts,
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

// row is one export line; Application is lifted out of the event data
// when the agent recorded it.
type row struct {
	Time        time.Time `json:"time"`
	User        string    `json:"user"`
	Department  string    `json:"department,omitempty"`
	Application string    `json:"application,omitempty"`
	Domain      string    `json:"domain,omitempty"`
	Type        string    `json:"type,omitempty"`
	DurationMs  int64     `json:"durationMs"`
	Details     string    `json:"details,omitempty"`
}

func (h *Handler) load(r *http.Request) ([]row, string, error) {
	filter, problem := activity.ParseFilter(r, time.Now())
	if problem != "" {
		return nil, problem, nil
	}

	events, err := h.events.Find(r.Context(), filter)
	if err != nil {
		return nil, "", err
	}
	deptByUser, err := h.depts.DepartmentNamesByUsername(r.Context())
	if err != nil {
		return nil, "", err
	}

	rows := make([]row, 0, len(events))
	for _, ev := range events {
		rows = append(rows, toRow(ev, deptByUser[ev.Username]))
	}
	return rows, "", nil
}

func toRow(ev models.Event, department string) row {
	out := row{
		Time:       ev.Timestamp,
		User:       ev.Username,
		Department: department,
		Domain:     ev.Domain,
		Type:       ev.Type,
		DurationMs: ev.DurationMs,
	}
	if ev.Data != nil {
		if app, ok := ev.Data["app"].(string); ok {
			out.Application = app
		}
		if details, err := json.Marshal(ev.Data); err == nil {
			out.Details = string(details)
		}
	}
	return out
}

// CSV handles GET /api/export/csv.
func (h *Handler) CSV(w http.ResponseWriter, r *http.Request) {
	rows, problem, err := h.load(r)
	if problem != "" {
		jsonutil.BadRequest(w, problem)
		return
	}
	if err != nil {
		h.logger.Error("export query failed", zap.Error(err))
		jsonutil.InternalError(w, "export failed")
		return
	}

	filename := fmt.Sprintf("activity_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := w.Write(utf8BOM); err != nil {
		return
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(csvHeader); err != nil {
		h.logger.Error("csv write failed", zap.Error(err))
		return
	}
	for _, item := range rows {
		record := []string{
			item.Time.UTC().Format(time.RFC3339),
			item.User,
			item.Department,
			item.Application,
			item.Domain,
			item.Type,
			strconv.FormatInt(item.DurationMs, 10),
			item.Details,
		}
		if err := cw.Write(record); err != nil {
			h.logger.Error("csv write failed", zap.Error(err))
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("csv flush failed", zap.Error(err))
		return
	}

	h.audit.AdminAction(r.Context(), r, audit.EventDataExported, actorName(r), "", map[string]string{
		"format": "csv",
		"rows":   strconv.Itoa(len(rows)),
	})
}

// JSON handles GET /api/export/json.
func (h *Handler) JSON(w http.ResponseWriter, r *http.Request) {
	rows, problem, err := h.load(r)
	if problem != "" {
		jsonutil.BadRequest(w, problem)
		return
	}
	if err != nil {
		h.logger.Error("export query failed", zap.Error(err))
		jsonutil.InternalError(w, "export failed")
		return
	}

	filename := fmt.Sprintf("activity_%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		h.logger.Error("json export encode failed", zap.Error(err))
		return
	}

	h.audit.AdminAction(r.Context(), r, audit.EventDataExported, actorName(r), "", map[string]string{
		"format": "json",
		"rows":   strconv.Itoa(len(rows)),
	})
}
