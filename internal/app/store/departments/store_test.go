package departments

import (
	"errors"
	"testing"
	"time"

	"github.com/workwatchhq/workwatch/internal/domain/models"
	"github.com/workwatchhq/workwatch/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func createDept(t *testing.T, store *Store, name string) models.Department {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	dept, err := store.Create(ctx, models.Department{Name: name, Color: "#3366ff"})
	if err != nil {
		t.Fatalf("Create(%q) error = %v", name, err)
	}
	return dept
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	dept := createDept(t, store, "Engineering")
	if dept.ID.IsZero() {
		t.Error("Create() did not assign ID")
	}
	if dept.CreatedAt.IsZero() || dept.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	createDept(t, store, "Engineering")
	_, err := store.Create(ctx, models.Department{Name: "Engineering"})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Create(duplicate) error = %v, want ErrDuplicateName", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	dept := createDept(t, store, "Engineering")

	name := "Platform Engineering"
	color := "#ff0000"
	updated, err := store.Update(ctx, dept.ID, DepartmentUpdate{Name: &name, Color: &color})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != name || updated.Color != color {
		t.Errorf("Update() = %+v, want name %q color %q", updated, name, color)
	}

	_, err = store.Update(ctx, primitive.NewObjectID(), DepartmentUpdate{Name: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_Delete_CascadesMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	dept := createDept(t, store, "Engineering")
	if _, err := store.Assign(ctx, "alice", dept.ID); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	if err := store.Delete(ctx, dept.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	members, err := store.MembershipsByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("MembershipsByUsername() error = %v", err)
	}
	if len(members) != 0 {
		t.Errorf("memberships after cascade delete = %d, want 0", len(members))
	}

	if err := store.Delete(ctx, dept.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(gone) error = %v, want ErrNotFound", err)
	}
}

func TestStore_Assign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	dept := createDept(t, store, "Engineering")

	m, err := store.Assign(ctx, " Alice ", dept.ID)
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	if m.Username != "alice" {
		t.Errorf("Assign() Username = %q, want normalized %q", m.Username, "alice")
	}

	_, err = store.Assign(ctx, "alice", dept.ID)
	if !errors.Is(err, ErrAlreadyAssigned) {
		t.Errorf("Assign(duplicate) error = %v, want ErrAlreadyAssigned", err)
	}

	_, err = store.Assign(ctx, "alice", primitive.NewObjectID())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Assign(missing dept) error = %v, want ErrNotFound", err)
	}
}

func TestStore_Unassign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	dept := createDept(t, store, "Engineering")
	if _, err := store.Assign(ctx, "alice", dept.ID); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	removed, err := store.Unassign(ctx, "alice", dept.ID)
	if err != nil {
		t.Fatalf("Unassign() error = %v", err)
	}
	if !removed {
		t.Error("Unassign() removed = false, want true")
	}

	removed, err = store.Unassign(ctx, "alice", dept.ID)
	if err != nil {
		t.Fatalf("Unassign(gone) error = %v", err)
	}
	if removed {
		t.Error("Unassign(gone) removed = true, want false")
	}
}

func TestStore_DepartmentNamesByUsername_MostRecentWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := createDept(t, store, "Engineering")
	sales := createDept(t, store, "Sales")

	if _, err := store.Assign(ctx, "alice", eng.ID); err != nil {
		t.Fatalf("Assign(eng) error = %v", err)
	}
	// The later assignment must win the per-user name lookup.
	time.Sleep(5 * time.Millisecond)
	if _, err := store.Assign(ctx, "alice", sales.ID); err != nil {
		t.Fatalf("Assign(sales) error = %v", err)
	}
	if _, err := store.Assign(ctx, "bob", eng.ID); err != nil {
		t.Fatalf("Assign(bob) error = %v", err)
	}

	names, err := store.DepartmentNamesByUsername(ctx)
	if err != nil {
		t.Fatalf("DepartmentNamesByUsername() error = %v", err)
	}
	if names["alice"] != "Sales" {
		t.Errorf("names[alice] = %q, want Sales", names["alice"])
	}
	if names["bob"] != "Engineering" {
		t.Errorf("names[bob] = %q, want Engineering", names["bob"])
	}
}

func TestStore_UsernamesGroupedByDepartment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := createDept(t, store, "Engineering")
	sales := createDept(t, store, "Sales")

	for _, username := range []string{"alice", "bob"} {
		if _, err := store.Assign(ctx, username, eng.ID); err != nil {
			t.Fatalf("Assign(%q) error = %v", username, err)
		}
	}

	groups, err := store.UsernamesGroupedByDepartment(ctx)
	if err != nil {
		t.Fatalf("UsernamesGroupedByDepartment() error = %v", err)
	}
	if len(groups[eng.ID]) != 2 {
		t.Errorf("groups[eng] = %v, want 2 members", groups[eng.ID])
	}
	// Departments with no members still get an entry.
	if members, ok := groups[sales.ID]; !ok || len(members) != 0 {
		t.Errorf("groups[sales] = %v (present %v), want empty slice", members, ok)
	}
}

func TestStore_RemoveUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := createDept(t, store, "Engineering")
	sales := createDept(t, store, "Sales")
	if _, err := store.Assign(ctx, "alice", eng.ID); err != nil {
		t.Fatalf("Assign(eng) error = %v", err)
	}
	if _, err := store.Assign(ctx, "alice", sales.ID); err != nil {
		t.Fatalf("Assign(sales) error = %v", err)
	}

	removed, err := store.RemoveUser(ctx, "alice")
	if err != nil {
		t.Fatalf("RemoveUser() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("RemoveUser() removed = %d, want 2", removed)
	}
}
