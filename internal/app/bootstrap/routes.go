// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"time"

	activityfeature "github.com/workwatchhq/workwatch/internal/app/features/activity"
	adminusersfeature "github.com/workwatchhq/workwatch/internal/app/features/adminusers"
	analyticsfeature "github.com/workwatchhq/workwatch/internal/app/features/analytics"
	auditapifeature "github.com/workwatchhq/workwatch/internal/app/features/auditapi"
	authapifeature "github.com/workwatchhq/workwatch/internal/app/features/authapi"
	collectfeature "github.com/workwatchhq/workwatch/internal/app/features/collect"
	departmentsfeature "github.com/workwatchhq/workwatch/internal/app/features/departments"
	exportfeature "github.com/workwatchhq/workwatch/internal/app/features/export"
	healthfeature "github.com/workwatchhq/workwatch/internal/app/features/health"
	profilesapifeature "github.com/workwatchhq/workwatch/internal/app/features/profilesapi"
	screenshotsfeature "github.com/workwatchhq/workwatch/internal/app/features/screenshots"
	auditstore "github.com/workwatchhq/workwatch/internal/app/store/audit"
	deptstore "github.com/workwatchhq/workwatch/internal/app/store/departments"
	eventstore "github.com/workwatchhq/workwatch/internal/app/store/events"
	profilestore "github.com/workwatchhq/workwatch/internal/app/store/profiles"
	"github.com/workwatchhq/workwatch/internal/app/store/ratelimit"
	screenshotstore "github.com/workwatchhq/workwatch/internal/app/store/screenshots"
	userstore "github.com/workwatchhq/workwatch/internal/app/store/users"
	"github.com/workwatchhq/workwatch/internal/app/system/auditlog"
	"github.com/workwatchhq/workwatch/internal/app/system/auth"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// # Route layout
//
// Agent ingestion lives at the root and authenticates with the shared
// collector token:
//   - POST /collect-activity
//   - POST /collect-screenshot
//
// Everything under /api is the dashboard API. Session endpoints are open,
// the rest requires a signed-in user, and mutating admin surfaces
// additionally require the admin role.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on
	// each request. Role changes and deleted accounts take effect
	// immediately instead of riding out the cookie.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase, logger))

	// Stores shared across features.
	events := eventstore.New(deps.MongoDatabase)
	shots := screenshotstore.New(deps.MongoDatabase)
	users := userstore.New(deps.MongoDatabase)
	depts := deptstore.New(deps.MongoDatabase)
	profiles := profilestore.New(deps.MongoDatabase)

	// Audit store and logger for security event tracking.
	auditStore := auditstore.New(deps.MongoDatabase)
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	// Rate limiting for login attempts (nil if disabled).
	var rateLimitStore *ratelimit.Store
	if appCfg.RateLimitEnabled {
		rateLimitStore = ratelimit.New(
			deps.MongoDatabase,
			appCfg.RateLimitLoginAttempts,
			appCfg.RateLimitLoginWindow,
			appCfg.RateLimitLoginLockout,
		)
	}

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Session middleware: loads SessionUser into context if logged in.
	// Collector routes simply have no session, which is fine.
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection with path-based exemption. Agent ingestion uses the
	// collector token and the JSON API is called with fetch + SameSite
	// session cookies, so both skip token validation. Cookie name is
	// scoped to this service to avoid collisions on a shared domain.
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("workwatch_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	csrfProtect := csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...)

	csrfMiddleware := func(next http.Handler) http.Handler {
		csrfHandler := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			path := req.URL.Path
			if path == "/collect-activity" || path == "/collect-screenshot" || strings.HasPrefix(path, "/api/") {
				next.ServeHTTP(w, req)
				return
			}
			csrfHandler.ServeHTTP(w, req)
		})
	}
	r.Use(csrfMiddleware)

	// ─────────────────────────────────────────────────────────────────────
	// Routes
	// ─────────────────────────────────────────────────────────────────────

	// Health check endpoints for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Blobs != nil, logger)
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Agent ingestion (collector token auth).
	collectHandler := collectfeature.NewHandler(events, shots, deps.Blobs, logger)
	r.Mount("/", collectfeature.Routes(collectHandler, appCfg.CollectorToken, logger))

	// Dashboard API.
	authHandler := authapifeature.NewHandler(users, sessionMgr, rateLimitStore, auditLogger, logger)
	activityHandler := activityfeature.NewHandler(events, depts, profiles, logger)
	screenshotsHandler := screenshotsfeature.NewHandler(shots, deps.Blobs, auditLogger, logger)
	analyticsHandler := analyticsfeature.NewHandler(events, shots, users, logger)
	departmentsHandler := departmentsfeature.NewHandler(depts, events, auditLogger, logger)
	adminHandler := adminusersfeature.NewHandler(users, events, shots, depts, deps.Blobs, auditLogger, logger)
	profilesHandler := profilesapifeature.NewHandler(profiles, auditLogger, logger)
	exportHandler := exportfeature.NewHandler(events, depts, auditLogger, logger)
	auditHandler := auditapifeature.NewHandler(auditStore, logger)

	r.Route("/api", func(api chi.Router) {
		api.Mount("/health", healthfeature.Routes(healthHandler))

		// Session endpoints: /api/login, /api/logout, /api/auth/status.
		api.Mount("/", authapifeature.Routes(authHandler))

		// Signed-in users (any role).
		api.Group(func(sr chi.Router) {
			sr.Use(sessionMgr.RequireSignedIn)
			sr.Mount("/activity", activityfeature.Routes(activityHandler))
			sr.Mount("/screenshots", screenshotsfeature.Routes(screenshotsHandler, sessionMgr))
			sr.Mount("/analytics", analyticsfeature.Routes(analyticsHandler))
			sr.Mount("/departments", departmentsfeature.Routes(departmentsHandler, sessionMgr))
		})

		// Admin-only surfaces.
		api.Group(func(ar chi.Router) {
			ar.Use(sessionMgr.RequireRole(models.RoleAdmin))
			ar.Mount("/users", adminusersfeature.Routes(adminHandler))
			ar.Mount("/user-departments", departmentsfeature.AssignmentRoutes(departmentsHandler))
			ar.Mount("/profiles", profilesapifeature.Routes(profilesHandler))
			ar.Mount("/export", exportfeature.Routes(exportHandler))
			ar.Mount("/audit", auditapifeature.Routes(auditHandler))
		})
	})

	return r, nil
}
