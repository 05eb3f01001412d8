// Package departments manages the department directory and user
// assignments, and serves per-department activity analytics.
package departments

import (
	"encoding/json"
	"math"
	"net/http"
	"sort"
	"time"

	deptstore "github.com/workwatchhq/workwatch/internal/app/store/departments"
	eventstore "github.com/workwatchhq/workwatch/internal/app/store/events"
	"github.com/workwatchhq/workwatch/internal/app/store/audit"
	"github.com/workwatchhq/workwatch/internal/app/system/auditlog"
	"github.com/workwatchhq/workwatch/internal/app/system/auth"
	"github.com/workwatchhq/workwatch/internal/app/system/htmlsanitize"
	"github.com/workwatchhq/workwatch/internal/app/system/jsonutil"
	"github.com/workwatchhq/workwatch/internal/app/system/normalize"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler handles department directory requests.
type Handler struct {
	depts  *deptstore.Store
	events *eventstore.Store
	audit  *auditlog.Logger
	logger *zap.Logger
}

func NewHandler(depts *deptstore.Store, events *eventstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		depts:  depts,
		events: events,
		audit:  audit,
		logger: logger,
	}
}

func parseID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

func actorName(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return u.Username
	}
	return ""
}

// List handles GET /api/departments.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	depts, err := h.depts.List(r.Context())
	if err != nil {
		h.logger.Error("department list failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load departments")
		return
	}
	jsonutil.OK(w, map[string]any{"departments": depts})
}

// Create handles POST /api/departments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name        string `json:"name"`
		Color       string `json:"color"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if normalize.Name(in.Name) == "" {
		jsonutil.BadRequest(w, "name is required")
		return
	}

	dept, err := h.depts.Create(r.Context(), models.Department{
		Name:        htmlsanitize.Plain(in.Name),
		Color:       normalize.QueryParam(in.Color),
		Description: htmlsanitize.Plain(in.Description),
	})
	if err != nil {
		if err == deptstore.ErrDuplicateName {
			jsonutil.BadRequest(w, err.Error())
			return
		}
		h.logger.Error("department create failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to create department")
		return
	}

	h.audit.AdminAction(r.Context(), r, audit.EventDepartmentCreated, actorName(r), dept.Name, nil)
	jsonutil.Created(w, dept)
}

// Update handles PUT /api/departments/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid department id")
		return
	}

	var in struct {
		Name        *string `json:"name"`
		Color       *string `json:"color"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	upd := deptstore.DepartmentUpdate{Color: in.Color}
	if in.Name != nil {
		clean := htmlsanitize.Plain(*in.Name)
		if clean == "" {
			jsonutil.BadRequest(w, "name cannot be empty")
			return
		}
		upd.Name = &clean
	}
	if in.Description != nil {
		clean := htmlsanitize.Plain(*in.Description)
		upd.Description = &clean
	}

	dept, err := h.depts.Update(r.Context(), id, upd)
	if err != nil {
		switch err {
		case deptstore.ErrNotFound:
			jsonutil.NotFound(w, "department not found")
		case deptstore.ErrDuplicateName:
			jsonutil.BadRequest(w, err.Error())
		default:
			h.logger.Error("department update failed", zap.Error(err))
			jsonutil.InternalError(w, "failed to update department")
		}
		return
	}

	h.audit.AdminAction(r.Context(), r, audit.EventDepartmentUpdated, actorName(r), dept.Name, nil)
	jsonutil.OK(w, dept)
}

// Delete handles DELETE /api/departments/{id}. Assignments are cascade
// deleted; events and screenshots survive.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid department id")
		return
	}

	if err := h.depts.Delete(r.Context(), id); err != nil {
		if err == deptstore.ErrNotFound {
			jsonutil.NotFound(w, "department not found")
			return
		}
		h.logger.Error("department delete failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to delete department")
		return
	}

	h.audit.AdminAction(r.Context(), r, audit.EventDepartmentDeleted, actorName(r), id.Hex(), nil)
	jsonutil.OK(w, map[string]any{"deleted": true})
}

// Assign handles POST /api/user-departments.
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username     string `json:"username"`
		DepartmentID string `json:"departmentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if normalize.Username(in.Username) == "" {
		jsonutil.BadRequest(w, "username is required")
		return
	}
	deptID, err := primitive.ObjectIDFromHex(in.DepartmentID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid department id")
		return
	}

	m, err := h.depts.Assign(r.Context(), in.Username, deptID)
	if err != nil {
		switch err {
		case deptstore.ErrNotFound:
			jsonutil.NotFound(w, "department not found")
		case deptstore.ErrAlreadyAssigned:
			jsonutil.BadRequest(w, err.Error())
		default:
			h.logger.Error("department assign failed", zap.Error(err))
			jsonutil.InternalError(w, "failed to assign user")
		}
		return
	}

	h.audit.AdminAction(r.Context(), r, audit.EventUserAssigned, actorName(r), m.Username, map[string]string{
		"department_id": deptID.Hex(),
	})
	jsonutil.Created(w, m)
}

// Unassign handles DELETE /api/user-departments.
func (h *Handler) Unassign(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username     string `json:"username"`
		DepartmentID string `json:"departmentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	deptID, err := primitive.ObjectIDFromHex(in.DepartmentID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid department id")
		return
	}

	removed, err := h.depts.Unassign(r.Context(), in.Username, deptID)
	if err != nil {
		h.logger.Error("department unassign failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to unassign user")
		return
	}

	if removed {
		h.audit.AdminAction(r.Context(), r, audit.EventUserUnassigned, actorName(r), normalize.Username(in.Username), map[string]string{
			"department_id": deptID.Hex(),
		})
	}
	jsonutil.OK(w, map[string]any{"removed": removed})
}

// Members handles GET /api/departments/{id}/users.
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid department id")
		return
	}
	if _, err := h.depts.GetByID(r.Context(), id); err != nil {
		if err == deptstore.ErrNotFound {
			jsonutil.NotFound(w, "department not found")
			return
		}
		h.logger.Error("department lookup failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load department")
		return
	}

	usernames, err := h.depts.UsernamesByDepartment(r.Context(), id)
	if err != nil {
		h.logger.Error("department members failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load members")
		return
	}
	jsonutil.OK(w, map[string]any{"usernames": usernames})
}

// FilterUsers handles POST /api/departments/{id}/filter-users: returns the
// subset of the provided usernames belonging to the department.
func (h *Handler) FilterUsers(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid department id")
		return
	}

	var in struct {
		Usernames []string `json:"usernames"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	members, err := h.depts.UsernamesByDepartment(r.Context(), id)
	if err != nil {
		h.logger.Error("department members failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to filter users")
		return
	}

	inDept := make(map[string]bool, len(members))
	for _, name := range members {
		inDept[name] = true
	}
	out := make([]string, 0, len(in.Usernames))
	for _, name := range in.Usernames {
		if inDept[normalize.Username(name)] {
			out = append(out, normalize.Username(name))
		}
	}
	jsonutil.OK(w, map[string]any{"usernames": out})
}

// GroupUsers handles POST /api/departments/group-users: buckets the
// provided usernames by department name. Users with no membership land
// under "unassigned".
func (h *Handler) GroupUsers(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Usernames []string `json:"usernames"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	deptByUser, err := h.depts.DepartmentNamesByUsername(r.Context())
	if err != nil {
		h.logger.Error("department map failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to group users")
		return
	}

	groups := map[string][]string{}
	for _, name := range in.Usernames {
		name = normalize.Username(name)
		dept, ok := deptByUser[name]
		if !ok {
			dept = "unassigned"
		}
		groups[dept] = append(groups[dept], name)
	}
	jsonutil.OK(w, map[string]any{"groups": groups})
}

// Analytics handles GET /api/departments/analytics: per-department event,
// duration, and distinct-domain rollups derived from memberships.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	depts, err := h.depts.List(r.Context())
	if err != nil {
		h.logger.Error("department list failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to compute analytics")
		return
	}
	membersByDept, err := h.depts.UsernamesGroupedByDepartment(r.Context())
	if err != nil {
		h.logger.Error("department membership map failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to compute analytics")
		return
	}

	var allMembers []string
	for _, usernames := range membersByDept {
		allMembers = append(allMembers, usernames...)
	}

	statsByUser := map[string]eventstore.UserStats{}
	if len(allMembers) > 0 {
		stats, err := h.events.PerUserStats(r.Context(), allMembers)
		if err != nil {
			h.logger.Error("per-user stats failed", zap.Error(err))
			jsonutil.InternalError(w, "failed to compute analytics")
			return
		}
		for _, s := range stats {
			statsByUser[s.Username] = s
		}
	}

	type row struct {
		ID              string  `json:"id"`
		Name            string  `json:"name"`
		Color           string  `json:"color,omitempty"`
		Members         int     `json:"userCount"`
		Events          int64   `json:"events"`
		TotalDuration   int64   `json:"totalDuration"`
		DurationHours   float64 `json:"durationHours"`
		AverageDuration int64   `json:"averageDuration"`
		UniqueDomains   int     `json:"uniqueDomains"`
	}

	out := make([]row, 0, len(depts))
	for _, dept := range depts {
		usernames := membersByDept[dept.ID]
		domains := map[string]bool{}
		var events, duration int64
		for _, name := range usernames {
			s, ok := statsByUser[name]
			if !ok {
				continue
			}
			events += s.Events
			duration += s.TotalDurationMs
			for _, d := range s.Domains {
				domains[d] = true
			}
		}
		var avg int64
		if events > 0 {
			avg = duration / events
		}
		out = append(out, row{
			ID:              dept.ID.Hex(),
			Name:            dept.Name,
			Color:           dept.Color,
			Members:         len(usernames),
			Events:          events,
			TotalDuration:   duration,
			DurationHours:   math.Round(float64(duration)/3600000*10) / 10,
			AverageDuration: avg,
			UniqueDomains:   len(domains),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Events > out[j].Events })
	jsonutil.OK(w, map[string]any{
		"departments": out,
		"generatedAt": time.Now().UTC(),
	})
}
