// Package testutil provides Mongo setup and request helpers for tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/workwatchhq/workwatch/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TestDBURI points at the local Mongo instance tests run against.
const TestDBURI = "mongodb://localhost:27017"

// Database names share this prefix so a stray test run is easy to spot
// and clean up by hand.
const dbPrefix = "workwatch_test_"

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

// getClient opens one shared client for the whole test binary. The pool
// is sized for packages running their tests in parallel.
func getClient() (*mongo.Client, error) {
	clientOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(TestDBURI).
			SetMaxPoolSize(200).
			SetMinPoolSize(10).
			SetMaxConnIdleTime(30 * time.Second).
			SetConnectTimeout(10 * time.Second).
			SetServerSelectionTimeout(10 * time.Second)

		client, clientErr = mongo.Connect(ctx, opts)
		if clientErr != nil {
			return
		}
		clientErr = client.Ping(ctx, nil)
	})
	return client, clientErr
}

// SetupTestDB returns an empty database unique to the calling test, with
// the production indexes in place. The database is dropped again in
// t.Cleanup, so parallel tests never see each other's data.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	client, err := getClient()
	if err != nil {
		t.Skipf("no MongoDB at %s: %v", TestDBURI, err)
	}

	db := client.Database(dbPrefix + dbSuffix(t.Name()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Drop(ctx); err != nil {
		t.Fatalf("failed to drop test database: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("warning: failed to drop test database on cleanup: %v", err)
		}
	})

	return db
}

// dbSuffix maps a test name onto Mongo's database name alphabet. Names
// are capped at 63 characters total, which leaves 48 for the suffix
// after the prefix.
func dbSuffix(name string) string {
	const maxLen = 48

	out := make([]byte, 0, len(name))
	for i := 0; i < len(name) && len(out) < maxLen; i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// TestContext returns a context bounded to a single test operation.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
