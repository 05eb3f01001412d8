// Package screenshots serves screenshot listings with fresh download URLs
// and the admin delete endpoints.
//
// Endpoints:
//   - GET /api/screenshots - Paginated listing (session)
//   - DELETE /api/screenshots/{filename} - Single delete (admin)
//   - POST /api/screenshots/delete - Bulk delete by filename list (admin)
package screenshots

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/workwatchhq/workwatch/internal/app/features/activity"
	screenshotstore "github.com/workwatchhq/workwatch/internal/app/store/screenshots"
	"github.com/workwatchhq/workwatch/internal/app/store/audit"
	"github.com/workwatchhq/workwatch/internal/app/system/auditlog"
	"github.com/workwatchhq/workwatch/internal/app/system/blobstore"
	"github.com/workwatchhq/workwatch/internal/app/system/jsonutil"
	"github.com/workwatchhq/workwatch/internal/app/system/normalize"
	"github.com/workwatchhq/workwatch/internal/app/system/timerange"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler handles screenshot listing and deletion.
type Handler struct {
	shots  *screenshotstore.Store
	blobs  blobstore.Store
	audit  *auditlog.Logger
	logger *zap.Logger
}

func NewHandler(shots *screenshotstore.Store, blobs blobstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		shots:  shots,
		blobs:  blobs,
		audit:  audit,
		logger: logger,
	}
}

// Item is one screenshot row with a fresh download URL.
type Item struct {
	Filename string    `json:"filename"`
	URL      string    `json:"url"`
	MTime    time.Time `json:"mtime"`
	Domain   string    `json:"domain,omitempty"`
	Username string    `json:"username,omitempty"`
	DeviceID string    `json:"deviceId,omitempty"`
}

// List handles GET /api/screenshots.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := screenshotstore.Filter{
		Username: normalize.Username(q.Get("username")),
		Domain:   normalize.Domain(q.Get("domain")),
	}
	rangeName := normalize.QueryParam(q.Get("timeRange"))
	if rangeName == "" {
		rangeName = timerange.All
	}
	if !timerange.Valid(rangeName) {
		jsonutil.BadRequest(w, "timeRange must be one of all, today, week, month")
		return
	}
	if start, ok := timerange.Start(rangeName, time.Now()); ok {
		filter.Since = &start
	}
	page, limit := activity.ParsePagination(r)

	shots, total, err := h.shots.Query(r.Context(), filter, page, limit)
	if err != nil {
		h.logger.Error("screenshot query failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load screenshots")
		return
	}

	items := make([]Item, 0, len(shots))
	for _, shot := range shots {
		item := Item{
			Filename: shot.Filename,
			URL:      shot.URL,
			MTime:    shot.MTime,
			Domain:   shot.Domain,
			Username: shot.Username,
			DeviceID: shot.DeviceID,
		}
		if h.blobs != nil {
			if url, err := h.blobs.SignedURL(r.Context(), shot.Filename); err == nil {
				item.URL = url
			} else {
				h.logger.Warn("signing screenshot failed",
					zap.String("filename", shot.Filename),
					zap.Error(err))
			}
		}
		items = append(items, item)
	}

	jsonutil.OK(w, map[string]any{
		"screenshots": items,
		"total":       total,
		"page":        page,
		"limit":       limit,
	})
}

// deleteOne removes the blob first, then the metadata row. S3 treats a
// missing blob as deleted, so an interrupted delete converges on retry.
func (h *Handler) deleteOne(r *http.Request, filename string) error {
	if h.blobs != nil {
		if err := h.blobs.Delete(r.Context(), filename); err != nil {
			return err
		}
	}
	return h.shots.DeleteByFilename(r.Context(), filename)
}

// Delete handles DELETE /api/screenshots/{filename}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	filename := blobstore.NormalizeKey(chi.URLParam(r, "filename"))
	if filename == "" {
		jsonutil.BadRequest(w, "filename is required")
		return
	}

	if err := h.deleteOne(r, filename); err != nil {
		if err == screenshotstore.ErrNotFound {
			jsonutil.NotFound(w, "screenshot not found")
			return
		}
		h.logger.Error("screenshot delete failed",
			zap.String("filename", filename),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to delete screenshot")
		return
	}

	h.audit.AdminAction(r.Context(), r, audit.EventScreenshotsDeleted, actorName(r), filename, map[string]string{
		"count": "1",
	})
	jsonutil.OK(w, map[string]any{"deleted": 1})
}

// BulkDelete handles POST /api/screenshots/delete. Per-item blob failures
// are counted and logged; the call still reports 200 once the database
// step for the deletable rows succeeded.
func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Filenames []string `json:"filenames"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if len(in.Filenames) == 0 {
		jsonutil.BadRequest(w, "filenames array is required")
		return
	}

	deletable := make([]string, 0, len(in.Filenames))
	var failed int
	for _, name := range in.Filenames {
		name = blobstore.NormalizeKey(name)
		if name == "" {
			failed++
			continue
		}
		if h.blobs != nil {
			if err := h.blobs.Delete(r.Context(), name); err != nil {
				failed++
				h.logger.Warn("bulk delete: blob delete failed",
					zap.String("filename", name),
					zap.Error(err))
				continue
			}
		}
		deletable = append(deletable, name)
	}

	deleted, err := h.shots.DeleteByFilenames(r.Context(), deletable)
	if err != nil {
		h.logger.Error("bulk screenshot delete failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to delete screenshots")
		return
	}

	h.audit.AdminAction(r.Context(), r, audit.EventScreenshotsDeleted, actorName(r), "", map[string]string{
		"requested": itoa(len(in.Filenames)),
		"deleted":   itoa64(deleted),
		"failed":    itoa(failed),
	})
	jsonutil.OK(w, map[string]any{
		"requested": len(in.Filenames),
		"deleted":   deleted,
		"failed":    failed,
	})
}
