// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a dashboard login identity.
//
// Username is the identifier operators type to log in; it is stored
// lowercase and is unique. The password is stored only as a bcrypt hash.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password_hash" json:"-"` // bcrypt hash (never in JSON)
	Role         string             `bson:"role" json:"role"`       // admin, viewer
	DisplayName  string             `bson:"display_name,omitempty" json:"displayName,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	LastLogin *time.Time `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
}

// User roles. Admins manage users, departments, and data; viewers get
// read-only access to the dashboards.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// AllRoles returns all valid user roles.
func AllRoles() []string {
	return []string{RoleAdmin, RoleViewer}
}

// IsValidRole checks if a role is valid.
func IsValidRole(role string) bool {
	for _, r := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// UserProfile maps a username seen in ingested events to a display name,
// independent of any login account. Agents report actors that usually have
// no User record; profiles let admins label them in the dashboard.
type UserProfile struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username    string             `bson:"username" json:"username"`
	DisplayName string             `bson:"display_name" json:"displayName"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}
