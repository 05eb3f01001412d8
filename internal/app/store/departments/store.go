// internal/app/store/departments/store.go
package departments

import (
	"context"
	"errors"
	"time"

	"github.com/workwatchhq/workwatch/internal/app/system/normalize"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no department matches the given ID.
	ErrNotFound = errors.New("department not found")

	// ErrDuplicateName is returned when creating or renaming a department
	// to a name that already exists.
	ErrDuplicateName = errors.New("a department with this name already exists")

	// ErrAlreadyAssigned is returned when assigning a user to a department
	// they already belong to.
	ErrAlreadyAssigned = errors.New("user is already in this department")
)

// Store manages departments and user-to-department assignments. A user may
// belong to several departments at once.
type Store struct {
	depts   *mongo.Collection
	members *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		depts:   db.Collection("departments"),
		members: db.Collection("user_departments"),
	}
}

// EnsureIndexes creates the unique name index and the compound membership
// index that makes assignments idempotent-safe.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	deptIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_departments_name").SetUnique(true),
		},
	}
	if _, err := s.depts.Indexes().CreateMany(ctx, deptIndexes); err != nil {
		return err
	}

	memberIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}, {Key: "department_id", Value: 1}},
			Options: options.Index().SetName("idx_user_departments_pair").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "department_id", Value: 1}},
			Options: options.Index().SetName("idx_user_departments_dept"),
		},
	}
	_, err := s.members.Indexes().CreateMany(ctx, memberIndexes)
	return err
}

// Create inserts a new department.
func (s *Store) Create(ctx context.Context, dept models.Department) (models.Department, error) {
	dept.ID = primitive.NewObjectID()
	dept.Name = normalize.Name(dept.Name)
	now := time.Now().UTC()
	dept.CreatedAt = now
	dept.UpdatedAt = now

	if _, err := s.depts.InsertOne(ctx, dept); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Department{}, ErrDuplicateName
		}
		return models.Department{}, err
	}
	return dept, nil
}

// GetByID loads one department.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Department, error) {
	var dept models.Department
	err := s.depts.FindOne(ctx, bson.M{"_id": id}).Decode(&dept)
	if err == mongo.ErrNoDocuments {
		return models.Department{}, ErrNotFound
	}
	return dept, err
}

// List returns all departments sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Department, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := s.depts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var depts []models.Department
	if err := cur.All(ctx, &depts); err != nil {
		return nil, err
	}
	if depts == nil {
		depts = []models.Department{}
	}
	return depts, nil
}

// DepartmentUpdate holds the fields that can change on a department. Nil
// pointers leave the stored value untouched.
type DepartmentUpdate struct {
	Name        *string
	Color       *string
	Description *string
}

// Update applies the given changes to a department.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd DepartmentUpdate) (models.Department, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = normalize.Name(*upd.Name)
	}
	if upd.Color != nil {
		set["color"] = *upd.Color
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var dept models.Department
	err := s.depts.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&dept)
	if err == mongo.ErrNoDocuments {
		return models.Department{}, ErrNotFound
	}
	if wafflemongo.IsDup(err) {
		return models.Department{}, ErrDuplicateName
	}
	return dept, err
}

// Delete removes a department and cascades to its membership rows.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.depts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	_, err = s.members.DeleteMany(ctx, bson.M{"department_id": id})
	return err
}

// Assign adds a user to a department.
func (s *Store) Assign(ctx context.Context, username string, deptID primitive.ObjectID) (models.UserDepartment, error) {
	if _, err := s.GetByID(ctx, deptID); err != nil {
		return models.UserDepartment{}, err
	}

	m := models.UserDepartment{
		ID:           primitive.NewObjectID(),
		Username:     normalize.Username(username),
		DepartmentID: deptID,
		AssignedAt:   time.Now().UTC(),
	}
	if _, err := s.members.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.UserDepartment{}, ErrAlreadyAssigned
		}
		return models.UserDepartment{}, err
	}
	return m, nil
}

// Unassign removes a user from a department. Removing an assignment that
// does not exist is not an error.
func (s *Store) Unassign(ctx context.Context, username string, deptID primitive.ObjectID) (bool, error) {
	res, err := s.members.DeleteMany(ctx, bson.M{
		"username":      normalize.Username(username),
		"department_id": deptID,
	})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// Membership pairs an assignment row with its department record.
type Membership struct {
	Department models.Department `json:"department"`
	AssignedAt time.Time         `json:"assigned_at"`
}

// MembershipsByUsername returns every department the user belongs to, most
// recent assignment first.
func (s *Store) MembershipsByUsername(ctx context.Context, username string) ([]Membership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "assigned_at", Value: -1}})
	cur, err := s.members.Find(ctx, bson.M{"username": normalize.Username(username)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.UserDepartment
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]Membership, 0, len(rows))
	for _, row := range rows {
		dept, err := s.GetByID(ctx, row.DepartmentID)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Membership{Department: dept, AssignedAt: row.AssignedAt})
	}
	return out, nil
}

// DepartmentNamesByUsername returns one department name per user, covering
// every user that has at least one assignment. When a user belongs to
// several departments the most recently assigned one wins.
func (s *Store) DepartmentNamesByUsername(ctx context.Context) (map[string]string, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "assigned_at", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$username",
			"department_id": bson.M{"$first": "$department_id"},
		}}},
	}
	cur, err := s.members.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Username     string             `bson:"_id"`
		DepartmentID primitive.ObjectID `bson:"department_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	names, err := s.nameByID(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		if name, ok := names[row.DepartmentID]; ok {
			out[row.Username] = name
		}
	}
	return out, nil
}

// UsernamesByDepartment returns the members of one department sorted by
// username.
func (s *Store) UsernamesByDepartment(ctx context.Context, deptID primitive.ObjectID) ([]string, error) {
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	cur, err := s.members.Find(ctx, bson.M{"department_id": deptID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.UserDepartment
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Username)
	}
	return names, nil
}

// UsernamesGroupedByDepartment returns the membership lists of every
// department keyed by department ID. Departments with no members get an
// empty slice.
func (s *Store) UsernamesGroupedByDepartment(ctx context.Context) (map[primitive.ObjectID][]string, error) {
	depts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[primitive.ObjectID][]string, len(depts))
	for _, dept := range depts {
		out[dept.ID] = []string{}
	}

	cur, err := s.members.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.UserDepartment
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if _, ok := out[row.DepartmentID]; ok {
			out[row.DepartmentID] = append(out[row.DepartmentID], row.Username)
		}
	}
	return out, nil
}

// RemoveUser deletes every assignment for the given user. Used by the
// admin data wipe and user deletion.
func (s *Store) RemoveUser(ctx context.Context, username string) (int64, error) {
	res, err := s.members.DeleteMany(ctx, bson.M{"username": normalize.Username(username)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the total number of departments.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.depts.CountDocuments(ctx, bson.M{})
}

func (s *Store) nameByID(ctx context.Context) (map[primitive.ObjectID]string, error) {
	opts := options.Find().SetProjection(bson.M{"name": 1})
	cur, err := s.depts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID   primitive.ObjectID `bson:"_id"`
		Name string             `bson:"name"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}
