// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	auditstore "github.com/workwatchhq/workwatch/internal/app/store/audit"
	screenshotstore "github.com/workwatchhq/workwatch/internal/app/store/screenshots"
	"github.com/workwatchhq/workwatch/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are
// complete, but before the HTTP handler is built and requests are served.
//
// Admin seeding already happened in EnsureSchema; the remaining one-time
// work is starting the background task runner. Returning a non-nil error
// aborts startup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	startTaskRunner(appCfg, deps, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	// Screenshot retention sweep. Disabled when retention_days is zero or
	// no blob storage is configured.
	retention := time.Duration(appCfg.RetentionDays) * 24 * time.Hour
	shots := screenshotstore.New(deps.MongoDatabase)
	taskRunner.Register(tasks.ScreenshotRetentionJob(shots, deps.Blobs, retention, logger))

	// Trim old audit log entries.
	taskRunner.Register(tasks.AuditTrimJob(auditstore.New(deps.MongoDatabase), logger))

	taskRunner.Start()
}
