// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	groupsfeature "github.com/cardfolio/clubhouse/internal/app/features/groups"
	healthfeature "github.com/cardfolio/clubhouse/internal/app/features/health"
	notificationsfeature "github.com/cardfolio/clubhouse/internal/app/features/notifications"
	"github.com/cardfolio/clubhouse/internal/app/store/audit"
	"github.com/cardfolio/clubhouse/internal/app/system/auditlog"
	"github.com/cardfolio/clubhouse/internal/app/system/authn"
	"github.com/cardfolio/clubhouse/internal/app/system/httpapi"
	"github.com/cardfolio/clubhouse/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
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
// Clubhouse mounts three surfaces: the public/authed groups API, the
// caller-scoped notifications inbox, and the health endpoint. The bearer
// verifier runs globally so any handler can ask for the caller's identity;
// routes that require one add authn.RequireIdentity themselves.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.ClubhouseMongoDatabase

	verifier := authn.NewVerifier(appCfg.AuthTokenSecret, appCfg.AuthTokenIssuer)

	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Membership: appCfg.AuditLogMembership,
		Moderation: appCfg.AuditLogModeration,
	})

	modLimiter := ratelimit.New(appCfg.ModerationRateLimit, appCfg.ModerationRateWindow)

	r := chi.NewRouter()

	r.Use(httpapi.RequestLogger(logger))
	r.Use(authn.Load(verifier, logger))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.ClubhouseMongoClient, logger)
	r.Route("/health", healthHandler.MountRoutes)

	// Group membership and moderation
	groupsHandler := groupsfeature.NewHandler(db, logger, auditLogger, modLimiter)
	r.Route("/groups", groupsHandler.MountRoutes)

	// Per-user notification inbox
	notificationsHandler := notificationsfeature.NewHandler(db, logger)
	r.Route("/notifications", notificationsHandler.MountRoutes)

	return r, nil
}
