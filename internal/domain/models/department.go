// internal/domain/models/department.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Department is an organizational grouping of usernames, independent of
// login accounts.
type Department struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Color       string             `bson:"color,omitempty" json:"color,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// UserDepartment is a many-to-many join row between a username and a
// department. Rows are cascade-deleted when their department is deleted;
// events and screenshots are not touched.
type UserDepartment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	DepartmentID primitive.ObjectID `bson:"department_id" json:"departmentId"`

	// AssignedAt orders memberships: when a user belongs to several
	// departments, the most recently assigned one wins for enrichment.
	AssignedAt time.Time `bson:"assigned_at" json:"assignedAt"`
}
