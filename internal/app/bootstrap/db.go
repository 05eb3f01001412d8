// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/workwatchhq/workwatch/internal/app/system/blobstore"
	"github.com/workwatchhq/workwatch/internal/app/system/indexes"
	"github.com/workwatchhq/workwatch/internal/app/system/seeding"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and initializes screenshot storage.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema
// and Startup. Clients created here are stored in DBDeps for use by the
// remaining hooks and the HTTP handlers.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	// Configure MongoDB connection pool
	poolCfg := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
	if err != nil {
		return DBDeps{}, err
	}

	db := client.Database(appCfg.MongoDatabase)

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
		zap.Uint64("min_pool_size", poolCfg.MinPoolSize),
	)

	blobs, err := buildBlobStore(ctx, appCfg, logger)
	if err != nil {
		return DBDeps{}, err
	}

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Blobs:         blobs,
	}, nil
}

// buildBlobStore constructs the screenshot backend. A nil store with a nil
// error means no storage is configured; screenshot uploads report that to
// agents while the rest of the service keeps working.
func buildBlobStore(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (blobstore.Store, error) {
	switch appCfg.StorageBackend {
	case "s3":
		cfg := blobstore.S3Config{
			Endpoint:       appCfg.S3Endpoint,
			Region:         appCfg.S3Region,
			Bucket:         appCfg.S3Bucket,
			AccessKey:      appCfg.S3AccessKey,
			SecretKey:      appCfg.S3SecretKey,
			ForcePathStyle: appCfg.S3ForcePathStyle,
			DisableTLS:     appCfg.S3DisableTLS,
			PublicBaseURL:  appCfg.S3PublicBaseURL,
			SignedURLTTL:   appCfg.SignedURLTTL,
		}
		if !cfg.Configured() {
			logger.Warn("s3 storage backend selected but bucket or credentials are missing; screenshot storage disabled")
			return nil, nil
		}
		store, err := blobstore.NewS3(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 screenshot storage: %w", err)
		}
		logger.Info("initialized s3 screenshot storage",
			zap.String("bucket", appCfg.S3Bucket),
			zap.String("endpoint", appCfg.S3Endpoint),
		)
		return store, nil
	case "local":
		store, err := blobstore.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local screenshot storage: %w", err)
		}
		logger.Info("initialized local screenshot storage",
			zap.String("path", appCfg.StorageLocalPath),
			zap.String("url", appCfg.StorageLocalURL),
		)
		return store, nil
	case "none", "":
		logger.Info("screenshot storage disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", appCfg.StorageBackend)
	}
}

// EnsureSchema sets up indexes and seed data.
//
// This runs after ConnectDB succeeds but before Startup and before the HTTP
// handler is built. The context has a timeout based on
// coreCfg.IndexBootTimeout, so long-running work should respect cancellation.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	// Ensure database indexes for query performance.
	logger.Info("ensuring database indexes")
	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("failed to ensure indexes", zap.Error(err))
		return err
	}

	// Seed the initial admin account when configured and the users
	// collection is empty.
	if err := seeding.SeedAll(ctx, db, logger, appCfg.SeedAdminUser, appCfg.SeedAdminPassword); err != nil {
		logger.Error("failed to seed admin account", zap.Error(err))
		return err
	}

	logger.Info("database schema ensured successfully")
	return nil
}
