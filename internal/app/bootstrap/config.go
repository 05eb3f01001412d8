// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "WORKWATCH"

// devSessionKey and devCSRFKey are the baked-in development defaults.
// ValidateConfig rejects them in production.
const (
	devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"
	devCSRFKey    = "dev-only-csrf-key-please-change-0123456789"
)

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: WORKWATCH_MONGO_URI, WORKWATCH_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "workwatch", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "workwatch-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie max age (e.g., 24h, 720h, 30m)"},

	{Name: "csrf_key", Default: devCSRFKey, Desc: "CSRF token signing key (32+ chars in production)"},

	{Name: "collector_token", Default: "", Desc: "Shared token agents send on /collect-* requests (empty disables the check)"},

	// Rate limiting configuration
	{Name: "rate_limit_enabled", Default: true, Desc: "Enable rate limiting for login attempts"},
	{Name: "rate_limit_login_attempts", Default: 5, Desc: "Max failed login attempts before lockout"},
	{Name: "rate_limit_login_window", Default: "15m", Desc: "Time window for counting failed attempts"},
	{Name: "rate_limit_login_lockout", Default: "15m", Desc: "Lockout duration after exceeding limit"},

	// Screenshot storage configuration
	{Name: "storage_backend", Default: "none", Desc: "Screenshot storage backend: 's3', 'local', or 'none'"},
	{Name: "storage_local_path", Default: "./screenshots", Desc: "Local storage path for screenshots"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},

	// S3-compatible object storage
	{Name: "s3_endpoint", Default: "", Desc: "S3 endpoint host (blank for AWS)"},
	{Name: "s3_region", Default: "us-east-1", Desc: "S3 region"},
	{Name: "s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "s3_access_key", Default: "", Desc: "S3 access key ID"},
	{Name: "s3_secret_key", Default: "", Desc: "S3 secret access key"},
	{Name: "s3_force_path_style", Default: true, Desc: "Use path-style S3 addressing (MinIO)"},
	{Name: "s3_disable_tls", Default: false, Desc: "Use plain http for the S3 endpoint"},
	{Name: "s3_public_base_url", Default: "", Desc: "Public base URL for screenshots (skips presigning when set)"},
	{Name: "signed_url_ttl", Default: "15m", Desc: "Presigned screenshot URL lifetime"},

	// Screenshot retention
	{Name: "retention_days", Default: 0, Desc: "Delete screenshots older than this many days (0 disables)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Admin seeding configuration
	{Name: "seed_admin_user", Default: "", Desc: "Username of admin account to create on first startup"},
	{Name: "seed_admin_password", Default: "", Desc: "Password for the seeded admin account"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, WORKWATCH_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		CSRFKey: appValues.String("csrf_key"),

		CollectorToken: appValues.String("collector_token"),

		// Rate limiting
		RateLimitEnabled:       appValues.Bool("rate_limit_enabled"),
		RateLimitLoginAttempts: appValues.Int("rate_limit_login_attempts"),
		RateLimitLoginWindow:   appValues.Duration("rate_limit_login_window", 15*time.Minute),
		RateLimitLoginLockout:  appValues.Duration("rate_limit_login_lockout", 15*time.Minute),

		// Screenshot storage
		StorageBackend:   strings.ToLower(appValues.String("storage_backend")),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		S3Endpoint:       appValues.String("s3_endpoint"),
		S3Region:         appValues.String("s3_region"),
		S3Bucket:         appValues.String("s3_bucket"),
		S3AccessKey:      appValues.String("s3_access_key"),
		S3SecretKey:      appValues.String("s3_secret_key"),
		S3ForcePathStyle: appValues.Bool("s3_force_path_style"),
		S3DisableTLS:     appValues.Bool("s3_disable_tls"),
		S3PublicBaseURL:  appValues.String("s3_public_base_url"),
		SignedURLTTL:     appValues.Duration("signed_url_ttl", 15*time.Minute),

		RetentionDays: appValues.Int("retention_days"),

		// Audit logging
		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		// Admin seeding
		SeedAdminUser:     appValues.String("seed_admin_user"),
		SeedAdminPassword: appValues.String("seed_admin_password"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Production mode rejects the baked-in development secrets so a deploy
// cannot silently ship with signable dev keys.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.StorageBackend {
	case "s3", "local", "none", "":
	default:
		return fmt.Errorf("unknown storage backend: %q", appCfg.StorageBackend)
	}

	if appCfg.RetentionDays < 0 {
		return fmt.Errorf("retention_days must not be negative (got %d)", appCfg.RetentionDays)
	}

	if coreCfg.Env == "prod" {
		if appCfg.SessionKey == devSessionKey || len(appCfg.SessionKey) < 32 {
			return fmt.Errorf("session_key must be set to a strong value in production")
		}
		if appCfg.CSRFKey == devCSRFKey || len(appCfg.CSRFKey) < 32 {
			return fmt.Errorf("csrf_key must be set to a strong value in production")
		}
		if appCfg.CollectorToken == "" {
			logger.Warn("collector_token is empty; /collect-* endpoints accept unauthenticated agents")
		}
		if appCfg.StorageBackend == "s3" && appCfg.S3Bucket == "" {
			return fmt.Errorf("storage_backend is 's3' but s3_bucket is not set")
		}
	}

	return nil
}
