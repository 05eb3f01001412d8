// internal/app/system/auth/collector.go
package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/workwatchhq/workwatch/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// CollectorTokenHeader is the shared-secret header tracking agents send on
// ingestion requests.
const CollectorTokenHeader = "x-collector-token"

// CollectorAuth returns middleware gating the agent ingestion endpoints with
// a shared secret. When token is empty the gate is disabled and all requests
// pass (open-collector deployments). The comparison is constant time.
func CollectorAuth(token string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get(CollectorTokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				logger.Warn("collector token rejected",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr))
				jsonutil.Unauthorized(w, "invalid collector token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
