package ratelimit

import (
	"testing"
	"time"

	"github.com/workwatchhq/workwatch/internal/testutil"
)

func TestNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, 5, 15*time.Minute, 30*time.Minute)
	if store == nil {
		t.Fatal("New() returned nil")
	}
}

func TestStore_EnsureIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, 5, 15*time.Minute, 30*time.Minute)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() error = %v", err)
	}

	// Should be idempotent
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() second call error = %v", err)
	}
}

func TestStore_CheckAllowed_NoRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, 5, 15*time.Minute, 30*time.Minute)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	allowed, remaining, lockedUntil := store.CheckAllowed(ctx, "newuser", "10.0.0.1")

	if !allowed {
		t.Error("CheckAllowed() should return true for new login")
	}
	if remaining != 5 {
		t.Errorf("CheckAllowed() remaining = %d, want 5", remaining)
	}
	if lockedUntil != nil {
		t.Error("CheckAllowed() lockedUntil should be nil for new login")
	}
}

func TestStore_CheckAllowed_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, 5, 15*time.Minute, 30*time.Minute)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store.RecordFailure(ctx, "alice", "10.0.0.1")

	// Uppercase username hits the same record.
	_, remaining, _ := store.CheckAllowed(ctx, "ALICE", "10.0.0.1")
	if remaining != 4 {
		t.Errorf("CheckAllowed() remaining = %d, want 4", remaining)
	}
}

func TestStore_RecordFailure_Lockout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, 3, 15*time.Minute, 30*time.Minute)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var lockedOut bool
	var lockedUntil *time.Time
	for i := 0; i < 3; i++ {
		lockedOut, lockedUntil = store.RecordFailure(ctx, "alice", "10.0.0.1")
	}

	if !lockedOut {
		t.Error("RecordFailure() third failure should trigger lockout")
	}
	if lockedUntil == nil || !lockedUntil.After(time.Now()) {
		t.Errorf("RecordFailure() lockedUntil = %v, want future time", lockedUntil)
	}

	allowed, remaining, until := store.CheckAllowed(ctx, "alice", "10.0.0.1")
	if allowed {
		t.Error("CheckAllowed() should deny a locked pair")
	}
	if remaining != -1 {
		t.Errorf("CheckAllowed() remaining = %d, want -1 while locked", remaining)
	}
	if until == nil {
		t.Error("CheckAllowed() lockedUntil should be set while locked")
	}
}

func TestStore_SeparateIPsSeparateBudgets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, 3, 15*time.Minute, 30*time.Minute)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 3; i++ {
		store.RecordFailure(ctx, "alice", "10.0.0.1")
	}

	// Lockout is per username+IP; a different source is unaffected.
	allowed, remaining, _ := store.CheckAllowed(ctx, "alice", "10.0.0.2")
	if !allowed {
		t.Error("CheckAllowed() should allow the same user from another IP")
	}
	if remaining != 3 {
		t.Errorf("CheckAllowed() remaining = %d, want 3", remaining)
	}
}

func TestStore_ClearOnSuccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, 3, 15*time.Minute, 30*time.Minute)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store.RecordFailure(ctx, "alice", "10.0.0.1")
	store.RecordFailure(ctx, "alice", "10.0.0.1")

	if err := store.ClearOnSuccess(ctx, "alice", "10.0.0.1"); err != nil {
		t.Fatalf("ClearOnSuccess() error = %v", err)
	}

	_, remaining, _ := store.CheckAllowed(ctx, "alice", "10.0.0.1")
	if remaining != 3 {
		t.Errorf("CheckAllowed() after clear remaining = %d, want 3", remaining)
	}
}
