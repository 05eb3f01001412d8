// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/workwatchhq/workwatch/internal/app/system/blobstore"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// This struct is created in ConnectDB and passed to subsequent lifecycle
// hooks: EnsureSchema, Startup, BuildHandler, and Shutdown.
//
// Blobs is nil when no screenshot storage is configured; the screenshot
// upload endpoint reports that state to agents and everything else keeps
// working without stored images.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Blobs stores screenshot images (S3-compatible or local disk).
	Blobs blobstore.Store
}
