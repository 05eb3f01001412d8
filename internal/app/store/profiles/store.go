// internal/app/store/profiles/store.go
package profiles

import (
	"context"
	"errors"
	"time"

	"github.com/workwatchhq/workwatch/internal/app/system/normalize"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no profile exists for the given username.
var ErrNotFound = errors.New("profile not found")

// Store manages display-name profiles for tracked actors. A profile can
// exist for usernames that have no login account.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_profiles")}
}

// EnsureIndexes creates the unique username index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("idx_user_profiles_username").SetUnique(true),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Upsert sets the display name for a username, creating the profile when
// it does not exist yet.
func (s *Store) Upsert(ctx context.Context, username, displayName string) (models.UserProfile, error) {
	username = normalize.Username(username)
	now := time.Now().UTC()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var profile models.UserProfile
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{
			"display_name": normalize.Name(displayName),
			"updated_at":   now,
		}},
		opts,
	).Decode(&profile)
	return profile, err
}

// GetByUsername returns the profile for one username.
func (s *Store) GetByUsername(ctx context.Context, username string) (models.UserProfile, error) {
	var profile models.UserProfile
	err := s.c.FindOne(ctx, bson.M{"username": normalize.Username(username)}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return models.UserProfile{}, ErrNotFound
	}
	return profile, err
}

// List returns all profiles sorted by username.
func (s *Store) List(ctx context.Context) ([]models.UserProfile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.UserProfile
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.UserProfile{}
	}
	return items, nil
}

// DisplayNamesByUsername returns a username-to-display-name map for
// enrichment of query results.
func (s *Store) DisplayNamesByUsername(ctx context.Context) (map[string]string, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.UserProfile
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(items))
	for _, p := range items {
		out[p.Username] = p.DisplayName
	}
	return out, nil
}

// Delete removes the profile for one username.
func (s *Store) Delete(ctx context.Context, username string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"username": normalize.Username(username)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
