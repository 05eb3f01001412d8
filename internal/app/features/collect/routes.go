// internal/app/features/collect/routes.go
package collect

import (
	"net/http"

	"github.com/workwatchhq/workwatch/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns a router with the agent ingestion endpoints.
//
// When mounted at the root:
//   - POST /collect-activity - Batch activity events
//   - POST /collect-screenshot - Screenshot upload
//
// Authentication is the shared collector token; an empty token leaves the
// endpoints open for development setups.
func Routes(h *Handler, collectorToken string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.CollectorAuth(collectorToken, logger))
	r.Post("/collect-activity", h.CollectActivity)
	r.Post("/collect-screenshot", h.CollectScreenshot)
	return r
}
