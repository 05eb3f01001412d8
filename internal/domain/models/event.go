// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is one recorded activity occurrence reported by a tracking agent.
//
// Timestamp and Username are always present; everything else is optional.
// Events are insert-only: they are never updated, and only the per-username
// admin wipe removes them.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Username  string             `bson:"username" json:"username"`
	Domain    string             `bson:"domain,omitempty" json:"domain,omitempty"`
	Type      string             `bson:"type,omitempty" json:"type,omitempty"`

	// DurationMs is how long the activity lasted, in milliseconds.
	DurationMs int64 `bson:"duration_ms,omitempty" json:"durationMs,omitempty"`

	// Data is the opaque agent payload (process/context metadata).
	Data bson.M `bson:"data,omitempty" json:"data,omitempty"`

	// Legacy agent fields, retained for backward compatibility.
	DeviceIDHash string `bson:"device_id_hash,omitempty" json:"deviceIdHash,omitempty"`
	Reason       string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Common event types reported by agents. Type is free-form; these are the
// values current agents send.
const (
	EventTypeWindowActivity = "window_activity"
	EventTypeClick          = "click"
	EventTypeKeypress       = "keypress"
	EventTypeScreenshot     = "screenshot"
	EventTypeClipboard      = "clipboard"
)
