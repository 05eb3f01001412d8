// Package timeouts centralizes the context deadlines used for database
// and storage calls that run outside the request middleware's 30 second
// window, such as health probes and background sweeps.
package timeouts

import "time"

const (
	// Ping bounds connectivity probes against Mongo.
	Ping = 2 * time.Second

	// Lookup bounds single-document reads done on behalf of another
	// operation, such as refreshing the session user.
	Lookup = 5 * time.Second

	// Sweep bounds one batch of a background cleanup pass. Retention
	// deletes blobs one by one, so this covers a batch, not the job.
	Sweep = 60 * time.Second
)
