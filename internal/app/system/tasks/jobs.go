// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	auditstore "github.com/workwatchhq/workwatch/internal/app/store/audit"
	screenshotstore "github.com/workwatchhq/workwatch/internal/app/store/screenshots"
	"github.com/workwatchhq/workwatch/internal/app/system/blobstore"
	"github.com/workwatchhq/workwatch/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const retentionSweepBatch = 500

// ScreenshotRetentionJob deletes screenshots older than the retention
// window, blobs first so an interrupted sweep never leaves a signed link
// pointing at a record without an object behind it. A zero retention
// disables the sweep.
func ScreenshotRetentionJob(shots *screenshotstore.Store, blobs blobstore.Store, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "screenshot-retention",
		Interval: 24 * time.Hour,
		Run: func(ctx context.Context) error {
			if retention <= 0 {
				return nil
			}
			cutoff := time.Now().Add(-retention)

			var swept int64
			for {
				batchCtx, cancel := context.WithTimeout(ctx, timeouts.Sweep)
				batch, err := shots.ListOlderThan(batchCtx, cutoff, retentionSweepBatch)
				if err != nil {
					cancel()
					return err
				}
				if len(batch) == 0 {
					cancel()
					break
				}

				filenames := make([]string, 0, len(batch))
				for _, shot := range batch {
					if blobs != nil {
						if err := blobs.Delete(batchCtx, shot.Filename); err != nil {
							logger.Warn("retention blob delete failed",
								zap.String("filename", shot.Filename),
								zap.Error(err))
							// The record stays so the next sweep retries.
							continue
						}
					}
					filenames = append(filenames, shot.Filename)
				}

				deleted, err := shots.DeleteByFilenames(batchCtx, filenames)
				cancel()
				if err != nil {
					return err
				}
				swept += deleted

				if len(filenames) == 0 {
					// Every blob delete in this batch failed; stop rather
					// than loop over the same records.
					break
				}
			}

			if swept > 0 {
				logger.Info("retention sweep removed old screenshots",
					zap.Int64("deleted", swept),
					zap.Time("cutoff", cutoff))
			}
			return nil
		},
	}
}

// AuditTrimJob removes audit log entries older than 90 days.
func AuditTrimJob(audit *auditstore.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "audit-trim",
		Interval: 24 * time.Hour,
		Run: func(ctx context.Context) error {
			cutoff := time.Now().Add(-90 * 24 * time.Hour)
			deleted, err := audit.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("trimmed old audit log entries",
					zap.Int64("deleted", deleted))
			}
			return nil
		},
	}
}
