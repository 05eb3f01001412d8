package screenshots

import (
	"errors"
	"testing"
	"time"

	"github.com/workwatchhq/workwatch/internal/domain/models"
	"github.com/workwatchhq/workwatch/internal/testutil"
)

func insertShot(t *testing.T, store *Store, filename, username string, mtime time.Time) models.Screenshot {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	shot, err := store.Insert(ctx, models.Screenshot{
		Filename: filename,
		Username: username,
		Domain:   "github.com",
		MTime:    mtime,
	})
	if err != nil {
		t.Fatalf("Insert(%q) error = %v", filename, err)
	}
	return shot
}

func TestStore_Insert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	shot := insertShot(t, store, "1_dev_host_win32.png", "alice", time.Now().UTC())
	if shot.ID.IsZero() {
		t.Error("Insert() did not assign ID")
	}
	if shot.CreatedAt.IsZero() {
		t.Error("Insert() did not set CreatedAt")
	}
}

func TestStore_Query(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	insertShot(t, store, "a.png", "alice", now)
	insertShot(t, store, "b.png", "alice", now.Add(-time.Hour))
	insertShot(t, store, "c.png", "bob", now.Add(-48*time.Hour))

	got, total, err := store.Query(ctx, Filter{Username: "alice"}, 1, 20)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("Query() total = %d, len = %d, want 2 and 2", total, len(got))
	}
	// Newest first.
	if got[0].Filename != "a.png" {
		t.Errorf("Query()[0].Filename = %q, want a.png", got[0].Filename)
	}

	cutoff := now.Add(-2 * time.Hour)
	_, total, err = store.Query(ctx, Filter{Since: &cutoff}, 1, 20)
	if err != nil {
		t.Fatalf("Query(since) error = %v", err)
	}
	if total != 2 {
		t.Errorf("Query(since) total = %d, want 2", total)
	}
}

func TestStore_GetByFilename(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	insertShot(t, store, "a.png", "alice", time.Now().UTC())

	shot, err := store.GetByFilename(ctx, "a.png")
	if err != nil {
		t.Fatalf("GetByFilename() error = %v", err)
	}
	if shot.Username != "alice" {
		t.Errorf("GetByFilename() Username = %q, want alice", shot.Username)
	}

	_, err = store.GetByFilename(ctx, "missing.png")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByFilename(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_DeleteByFilename(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	insertShot(t, store, "a.png", "alice", time.Now().UTC())

	if err := store.DeleteByFilename(ctx, "a.png"); err != nil {
		t.Fatalf("DeleteByFilename() error = %v", err)
	}
	if err := store.DeleteByFilename(ctx, "a.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteByFilename(gone) error = %v, want ErrNotFound", err)
	}
}

func TestStore_DeleteByFilenames(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	insertShot(t, store, "a.png", "alice", now)
	insertShot(t, store, "b.png", "alice", now)
	insertShot(t, store, "c.png", "bob", now)

	deleted, err := store.DeleteByFilenames(ctx, []string{"a.png", "b.png", "missing.png"})
	if err != nil {
		t.Fatalf("DeleteByFilenames() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("DeleteByFilenames() deleted = %d, want 2", deleted)
	}

	deleted, err = store.DeleteByFilenames(ctx, nil)
	if err != nil {
		t.Fatalf("DeleteByFilenames(nil) error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("DeleteByFilenames(nil) deleted = %d, want 0", deleted)
	}
}

func TestStore_FilenamesByUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	insertShot(t, store, "a.png", "alice", now)
	insertShot(t, store, "b.png", "alice", now)
	insertShot(t, store, "c.png", "bob", now)

	names, err := store.FilenamesByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FilenamesByUsername() error = %v", err)
	}
	if len(names) != 2 {
		t.Errorf("FilenamesByUsername() len = %d, want 2", len(names))
	}
}

func TestStore_ListOlderThan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	insertShot(t, store, "old1.png", "alice", now.Add(-72*time.Hour))
	insertShot(t, store, "old2.png", "alice", now.Add(-48*time.Hour))
	insertShot(t, store, "fresh.png", "alice", now)

	batch, err := store.ListOlderThan(ctx, now.Add(-24*time.Hour), 10)
	if err != nil {
		t.Fatalf("ListOlderThan() error = %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("ListOlderThan() len = %d, want 2", len(batch))
	}
	// Oldest first so sweeps make forward progress.
	if batch[0].Filename != "old1.png" {
		t.Errorf("ListOlderThan()[0].Filename = %q, want old1.png", batch[0].Filename)
	}

	batch, err = store.ListOlderThan(ctx, now.Add(-24*time.Hour), 1)
	if err != nil {
		t.Fatalf("ListOlderThan(limit) error = %v", err)
	}
	if len(batch) != 1 {
		t.Errorf("ListOlderThan(limit) len = %d, want 1", len(batch))
	}
}
