// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging, CORS, timeouts). AppConfig is everything specific to this
// service: the MongoDB connection, session cookies, the shared collector
// token agents authenticate with, screenshot storage, and retention.
//
// Values come from config files, WORKWATCH_* environment variables, or
// command-line flags, loaded in LoadConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: workwatch-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Maximum session cookie lifetime (default: 24h)

	// CSRF protection configuration
	CSRFKey string // Secret key for CSRF token signing (32 bytes, must be strong in production)

	// Collector token shared by tracking agents. When set, /collect-*
	// endpoints require it as a Bearer token; empty leaves them open
	// (development setups only).
	CollectorToken string

	// Rate limiting configuration for login attempts
	RateLimitEnabled       bool          // Enable rate limiting for login attempts (default: true)
	RateLimitLoginAttempts int           // Max failed login attempts before lockout (default: 5)
	RateLimitLoginWindow   time.Duration // Time window for counting failed attempts (default: 15m)
	RateLimitLoginLockout  time.Duration // Lockout duration after exceeding limit (default: 15m)

	// Screenshot storage configuration
	StorageBackend   string // Storage backend: "s3", "local", or "none"
	StorageLocalPath string // Local storage path (e.g., "./screenshots")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")

	// S3-compatible object storage (only used if StorageBackend is "s3")
	S3Endpoint       string        // Endpoint host (blank for AWS)
	S3Region         string        // Region (default: us-east-1)
	S3Bucket         string        // Bucket name
	S3AccessKey      string        // Access key ID
	S3SecretKey      string        // Secret access key
	S3ForcePathStyle bool          // Path-style addressing (MinIO and most self-hosted setups)
	S3DisableTLS     bool          // Use http:// for the endpoint (local MinIO)
	S3PublicBaseURL  string        // When set, screenshot URLs are built from this instead of presigning
	SignedURLTTL     time.Duration // Presigned URL lifetime (default: 15m)

	// Screenshot retention. Zero disables the sweep.
	RetentionDays int

	// Audit logging configuration
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	AuditLogAuth  string // Authentication events (login, logout, lockout)
	AuditLogAdmin string // Admin actions (user CRUD, deletions, exports)

	// Admin seeding configuration. Both must be set for seeding to run,
	// and seeding only happens on an empty users collection.
	SeedAdminUser     string
	SeedAdminPassword string
}
