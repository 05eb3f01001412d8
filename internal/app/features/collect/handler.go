// Package collect receives activity events and screenshots from tracking
// agents.
//
// Endpoints:
//   - POST /collect-activity - Batch event ingestion
//   - POST /collect-screenshot - Screenshot upload
//
// Both are gated by the optional shared collector token rather than a
// session; agents have no login.
package collect

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	eventstore "github.com/workwatchhq/workwatch/internal/app/store/events"
	screenshotstore "github.com/workwatchhq/workwatch/internal/app/store/screenshots"
	"github.com/workwatchhq/workwatch/internal/app/system/blobstore"
	"github.com/workwatchhq/workwatch/internal/app/system/jsonutil"
	"github.com/workwatchhq/workwatch/internal/app/system/normalize"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"go.uber.org/zap"
)

// maxBodyBytes caps ingestion payloads at 10MB.
const maxBodyBytes = 10 << 20

// Handler handles agent ingestion requests.
type Handler struct {
	events *eventstore.Store
	shots  *screenshotstore.Store
	blobs  blobstore.Store
	logger *zap.Logger
}

// NewHandler creates a new collect handler. blobs may be nil when no
// storage backend is configured; screenshot uploads then fail with 500.
func NewHandler(events *eventstore.Store, shots *screenshotstore.Store, blobs blobstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		events: events,
		shots:  shots,
		blobs:  blobs,
		logger: logger,
	}
}

// CollectActivity handles POST /collect-activity.
//
// Request body:
//
//	{"events": [{"time": "...", "username": "...", ...}, ...]}
//
// The whole batch is validated before any write; an invalid event fails
// the batch with 400 and an itemized issue list.
func (h *Handler) CollectActivity(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var in struct {
		Events []incomingEvent `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if len(in.Events) == 0 {
		jsonutil.BadRequest(w, "events array is required")
		return
	}

	events, issues := resolveBatch(in.Events)
	if len(issues) > 0 {
		jsonutil.JSON(w, http.StatusBadRequest, map[string]any{
			"error":  "invalid events",
			"issues": issues,
		})
		return
	}

	saved, err := h.events.InsertBatch(r.Context(), events)
	if err != nil {
		h.logger.Error("failed to insert event batch",
			zap.Int("count", len(events)),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to save events")
		return
	}

	h.logger.Debug("event batch saved", zap.Int("saved", saved))
	jsonutil.OK(w, map[string]any{
		"received": len(in.Events),
		"saved":    saved,
	})
}

// CollectScreenshot handles POST /collect-screenshot. The blob is uploaded
// first; a failed upload writes no metadata document.
func (h *Handler) CollectScreenshot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var in struct {
		Screenshot string `json:"screenshot"`
		DeviceID   string `json:"deviceId"`
		Domain     string `json:"domain"`
		Username   string `json:"username"`
		Hostname   string `json:"hostname"`
		Platform   string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	payload := strings.TrimSpace(in.Screenshot)
	if payload == "" {
		jsonutil.BadRequest(w, "screenshot is required")
		return
	}
	// Some agent builds send a data URL instead of bare base64.
	if strings.HasPrefix(payload, "data:") {
		if i := strings.IndexByte(payload, ','); i >= 0 {
			payload = payload[i+1:]
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		jsonutil.BadRequest(w, "screenshot must be base64-encoded PNG")
		return
	}

	if h.blobs == nil {
		h.logger.Error("screenshot upload with no storage backend configured")
		jsonutil.InternalError(w, "screenshot storage is not configured")
		return
	}

	now := time.Now()
	username := normalize.Username(in.Username)
	domain := normalize.Domain(in.Domain)
	filename := screenshotFilename(now, in.DeviceID, in.Hostname, in.Platform, username, domain)

	if err := h.blobs.Upload(r.Context(), filename, data, "image/png"); err != nil {
		h.logger.Error("screenshot upload failed",
			zap.String("filename", filename),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to store screenshot")
		return
	}

	url, err := h.blobs.SignedURL(r.Context(), filename)
	if err != nil {
		// The blob is stored; the URL is re-derived on every listing anyway.
		h.logger.Warn("signing fresh screenshot failed",
			zap.String("filename", filename),
			zap.Error(err))
		url = ""
	}

	shot, err := h.shots.Insert(r.Context(), models.Screenshot{
		Filename: filename,
		URL:      url,
		MTime:    now.UTC(),
		Domain:   domain,
		Username: username,
		DeviceID: strings.TrimSpace(in.DeviceID),
	})
	if err != nil {
		h.logger.Error("failed to insert screenshot record",
			zap.String("filename", filename),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to save screenshot")
		return
	}

	jsonutil.Created(w, map[string]any{
		"filename": shot.Filename,
		"mtime":    shot.MTime,
	})
}
