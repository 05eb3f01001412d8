// internal/app/store/events/store.go
package events

import (
	"context"
	"time"

	"github.com/workwatchhq/workwatch/internal/app/store/storeutil"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Filter narrows event queries. Zero-value fields are not applied; Since is
// an inclusive lower bound on timestamp when non-nil.
type Filter struct {
	Username string
	Domain   string
	Type     string
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
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.Since != nil {
		q["timestamp"] = bson.M{"$gte": *f.Since}
	}
	return q
}

// Summary holds aggregate statistics over a set of events.
type Summary struct {
	Events          int64   `bson:"events" json:"totalEvents"`
	TotalDurationMs int64   `bson:"total_duration" json:"totalDuration"`
	UniqueUsers     int     `bson:"unique_users" json:"uniqueUsers"`
	UniqueDomains   int     `bson:"unique_domains" json:"uniqueDomains"`
	AvgDurationMs   float64 `bson:"-" json:"averageDuration"`
}

// DomainStats is one row of the top-domains rollup.
type DomainStats struct {
	Domain          string    `bson:"_id" json:"domain"`
	TotalDurationMs int64     `bson:"total_duration" json:"totalDuration"`
	Visits          int64     `bson:"visits" json:"visits"`
	LastVisit       time.Time `bson:"last_visit" json:"lastVisit"`
}

// UserStats is one row of the per-user rollup.
type UserStats struct {
	Username        string   `bson:"_id" json:"username"`
	Events          int64    `bson:"events" json:"totalEvents"`
	Domains         []string `bson:"domains" json:"-"`
	UniqueDomains   int      `bson:"-" json:"uniqueDomains"`
	TotalDurationMs int64    `bson:"total_duration" json:"totalDuration"`
	AvgDurationMs   float64  `bson:"-" json:"averageDuration"`
}

// Store manages ingested activity events.
type Store struct {
	c *mongo.Collection
}

// New creates a new event Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_events_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_events_user"),
		},
		{
			Keys:    bson.D{{Key: "domain", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_events_domain"),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_events_type"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// InsertBatch writes all events in one round trip and returns the number
// saved. The batch either fully succeeds or surfaces a single error.
func (s *Store) InsertBatch(ctx context.Context, evs []models.Event) (int, error) {
	if len(evs) == 0 {
		return 0, nil
	}
	docs := make([]any, len(evs))
	for i := range evs {
		docs[i] = evs[i]
	}
	res, err := s.c.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// Query returns one page of events matching the filter, newest first, plus
// the total match count. The count runs concurrently with the page fetch.
func (s *Store) Query(ctx context.Context, filter Filter, page, limit int64) ([]models.Event, int64, error) {
	q := filter.query()

	type countResult struct {
		n   int64
		err error
	}
	countCh := make(chan countResult, 1)
	go func() {
		n, err := s.c.CountDocuments(ctx, q)
		countCh <- countResult{n, err}
	}()

	opts := storeutil.Page("timestamp", page, limit)

	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var items []models.Event
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []models.Event{}
	}

	count := <-countCh
	if count.err != nil {
		return nil, 0, count.err
	}
	return items, count.n, nil
}

// Find returns all events matching the filter, newest first, without
// pagination. Used by the export handlers.
func (s *Store) Find(ctx context.Context, filter Filter) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := s.c.Find(ctx, filter.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.Event
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Summarize computes aggregate statistics for events matching the filter in
// a single aggregation round trip.
func (s *Store) Summarize(ctx context.Context, filter Filter) (Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter.query()}},
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"events":         bson.M{"$sum": 1},
			"total_duration": bson.M{"$sum": bson.M{"$ifNull": bson.A{"$duration_ms", 0}}},
			"users":          bson.M{"$addToSet": "$username"},
			// Missing domains collapse to "" so the set stays decodable;
			// the projection subtracts the placeholder.
			"domains": bson.M{"$addToSet": bson.M{"$ifNull": bson.A{"$domain", ""}}},
		}}},
		{{Key: "$project", Value: bson.M{
			"events":         1,
			"total_duration": 1,
			"unique_users":   bson.M{"$size": "$users"},
			"unique_domains": bson.M{"$size": bson.M{"$setDifference": bson.A{"$domains", bson.A{""}}}},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return Summary{}, err
	}
	defer cur.Close(ctx)

	var rows []Summary
	if err := cur.All(ctx, &rows); err != nil {
		return Summary{}, err
	}
	if len(rows) == 0 {
		return Summary{}, nil
	}

	sum := rows[0]
	if sum.Events > 0 {
		sum.AvgDurationMs = float64(sum.TotalDurationMs) / float64(sum.Events)
	}
	return sum, nil
}

// TopDomains groups events by domain, summing duration and visit count and
// tracking the last visit, and returns the top limit rows by total time.
func (s *Store) TopDomains(ctx context.Context, limit int64) ([]DomainStats, error) {
	if limit <= 0 {
		limit = 10
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"domain": bson.M{"$nin": bson.A{nil, ""}}}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$domain",
			"total_duration": bson.M{"$sum": bson.M{"$ifNull": bson.A{"$duration_ms", 0}}},
			"visits":         bson.M{"$sum": 1},
			"last_visit":     bson.M{"$max": "$timestamp"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total_duration", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []DomainStats
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// PerUserStats groups events by username, counting events and distinct
// non-null domains and summing duration, sorted by event count descending.
// When usernames is non-empty only those actors are included.
func (s *Store) PerUserStats(ctx context.Context, usernames []string) ([]UserStats, error) {
	match := bson.M{}
	if len(usernames) > 0 {
		match["username"] = bson.M{"$in": usernames}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$username",
			"events":         bson.M{"$sum": 1},
			"total_duration": bson.M{"$sum": bson.M{"$ifNull": bson.A{"$duration_ms", 0}}},
			"domains":        bson.M{"$addToSet": bson.M{"$ifNull": bson.A{"$domain", ""}}},
		}}},
		{{Key: "$project", Value: bson.M{
			"events":         1,
			"total_duration": 1,
			"domains":        bson.M{"$setDifference": bson.A{"$domains", bson.A{""}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "events", Value: -1}}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []UserStats
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].UniqueDomains = len(rows[i].Domains)
		if rows[i].Events > 0 {
			rows[i].AvgDurationMs = float64(rows[i].TotalDurationMs) / float64(rows[i].Events)
		}
	}
	return rows, nil
}

// DeleteByUsername removes every event for the given actor. Used by the
// admin data wipe; irreversible.
func (s *Store) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"username": username})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
