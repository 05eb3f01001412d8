// internal/app/store/screenshots/store.go
package screenshots

import (
	"context"
	"errors"
	"time"

	"github.com/workwatchhq/workwatch/internal/app/store/storeutil"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no screenshot matches the given filename.
var ErrNotFound = errors.New("screenshot not found")

// Filter narrows screenshot queries. Zero-value fields are not applied;
// Since is an inclusive lower bound on capture time when non-nil.
type Filter struct {
	Username string
	Domain   string
	Since    *time.Time
}

func (f Filter) query() bson.M {
	q := bson.M{}
	if f.Username != "" {
		q["username"] = f.Username
	}
	if f.Domain != "" {
		q["domain"] = f.Domain
	}
	if f.Since != nil {
		q["mtime"] = bson.M{"$gte": *f.Since}
	}
	return q
}

// Store manages screenshot metadata records. The binaries themselves live
// in object storage, keyed by filename.
type Store struct {
	c *mongo.Collection
}

// New creates a new screenshot Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("screenshots")}
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "filename", Value: 1}},
			Options: options.Index().SetName("idx_screenshots_filename"),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}, {Key: "mtime", Value: -1}},
			Options: options.Index().SetName("idx_screenshots_user"),
		},
		{
			Keys:    bson.D{{Key: "mtime", Value: -1}},
			Options: options.Index().SetName("idx_screenshots_mtime"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert writes one screenshot metadata record.
func (s *Store) Insert(ctx context.Context, shot models.Screenshot) (models.Screenshot, error) {
	if shot.ID.IsZero() {
		shot.ID = primitive.NewObjectID()
	}
	if shot.CreatedAt.IsZero() {
		shot.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, shot)
	return shot, err
}

// Query returns one page of screenshots matching the filter, newest capture
// first, plus the total match count.
func (s *Store) Query(ctx context.Context, filter Filter, page, limit int64) ([]models.Screenshot, int64, error) {
	q := filter.query()

	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	opts := storeutil.Page("mtime", page, limit)

	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var items []models.Screenshot
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []models.Screenshot{}
	}
	return items, total, nil
}

// GetByFilename returns the record for the given filename.
func (s *Store) GetByFilename(ctx context.Context, filename string) (models.Screenshot, error) {
	var shot models.Screenshot
	err := s.c.FindOne(ctx, bson.M{"filename": filename}).Decode(&shot)
	if err == mongo.ErrNoDocuments {
		return models.Screenshot{}, ErrNotFound
	}
	return shot, err
}

// DeleteByFilename removes the record for the given filename.
func (s *Store) DeleteByFilename(ctx context.Context, filename string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"filename": filename})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByFilenames removes all records whose filename is in the list, in
// one round trip, and returns the number deleted.
func (s *Store) DeleteByFilenames(ctx context.Context, filenames []string) (int64, error) {
	if len(filenames) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"filename": bson.M{"$in": filenames}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByUsername removes every record for the given actor. Used by the
// admin data wipe.
func (s *Store) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"username": username})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// FilenamesByUsername returns every stored filename for the actor, so a
// wipe can also remove the blobs.
func (s *Store) FilenamesByUsername(ctx context.Context, username string) ([]string, error) {
	return s.filenames(ctx, bson.M{"username": username})
}

// ListOlderThan returns records captured before the cutoff, oldest first,
// up to limit. The retention sweep works through these in batches.
func (s *Store) ListOlderThan(ctx context.Context, cutoff time.Time, limit int64) ([]models.Screenshot, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "mtime", Value: 1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"mtime": bson.M{"$lt": cutoff}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.Screenshot
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Count returns the total number of screenshot records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

func (s *Store) filenames(ctx context.Context, q bson.M) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"filename": 1})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Filename string `bson:"filename"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Filename)
	}
	return names, nil
}
