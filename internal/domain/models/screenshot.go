// internal/domain/models/screenshot.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Screenshot is the metadata record for one captured image. The binary lives
// in object storage (or on local disk in the alternate deployment mode),
// keyed by Filename; this document is the index over it.
type Screenshot struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Filename string             `bson:"filename" json:"filename"`
	URL      string             `bson:"url,omitempty" json:"url,omitempty"`

	// MTime is the capture time reported by the agent.
	MTime time.Time `bson:"mtime" json:"mtime"`

	Domain   string `bson:"domain,omitempty" json:"domain,omitempty"`
	Username string `bson:"username,omitempty" json:"username,omitempty"`
	DeviceID string `bson:"device_id,omitempty" json:"deviceId,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
