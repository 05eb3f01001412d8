// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"

	userstore "github.com/workwatchhq/workwatch/internal/app/store/users"
	"github.com/workwatchhq/workwatch/internal/app/system/authutil"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SeedAll seeds default data if not already present.
func SeedAll(ctx context.Context, db *mongo.Database, logger *zap.Logger, adminUser, adminPassword string) error {
	return seedAdmin(ctx, db, logger, adminUser, adminPassword)
}

// seedAdmin creates the bootstrap admin account when no users exist yet.
// Skipped when credentials are not configured or the collection already
// has users, so a wiped admin password cannot resurrect silently.
func seedAdmin(ctx context.Context, db *mongo.Database, logger *zap.Logger, username, password string) error {
	if username == "" || password == "" {
		logger.Info("no bootstrap admin configured, skipping seed")
		return nil
	}

	store := userstore.New(db)
	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if err := authutil.ValidatePassword(password); err != nil {
		logger.Error("bootstrap admin password rejected", zap.Error(err))
		return err
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return err
	}

	if _, err := store.Create(ctx, models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}); err != nil {
		if err == userstore.ErrDuplicateUsername {
			// Another instance seeded first.
			return nil
		}
		return err
	}

	logger.Info("bootstrap admin created", zap.String("username", username))
	return nil
}
