// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devTokenSecret is the out-of-the-box signing secret. Fine for local
// development, rejected by ValidateConfig in prod.
const devTokenSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for clubhouse.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, auth_token_secret, etc.
//   - Environment variables: CLUBHOUSE_MONGO_URI, CLUBHOUSE_AUTH_TOKEN_SECRET, etc.
//   - Command-line flags: --mongo_uri, --auth_token_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "clubhouse", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer token verification
	{Name: "auth_token_secret", Default: devTokenSecret, Desc: "HS256 token signing secret (must be strong in production)"},
	{Name: "auth_token_issuer", Default: "cardfolio-accounts", Desc: "Expected token issuer claim (blank disables the check)"},

	// Moderation rate limiting
	{Name: "moderation_rate_limit", Default: 30, Desc: "Moderation requests allowed per caller per window"},
	{Name: "moderation_rate_window", Default: "1m", Desc: "Moderation rate limit window (e.g., 1m, 30s)"},

	// Audit logging settings
	{Name: "audit_log_membership", Default: "db", Desc: "Membership event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_moderation", Default: "all", Desc: "Moderation event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Notification retention
	{Name: "notification_retention", Default: "2160h", Desc: "How long notifications are kept (e.g., 2160h for 90 days)"},
	{Name: "notification_cleanup_interval", Default: "1h", Desc: "How often the notification pruning worker runs"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CLUBHOUSE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CLUBHOUSE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		AuthTokenSecret: appValues.String("auth_token_secret"),
		AuthTokenIssuer: appValues.String("auth_token_issuer"),

		ModerationRateLimit:  appValues.Int("moderation_rate_limit"),
		ModerationRateWindow: appValues.Duration("moderation_rate_window", time.Minute),

		AuditLogMembership: appValues.String("audit_log_membership"),
		AuditLogModeration: appValues.String("audit_log_moderation"),

		NotificationRetention:       appValues.Duration("notification_retention", 90*24*time.Hour),
		NotificationCleanupInterval: appValues.Duration("notification_cleanup_interval", time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is validated up front so a typo fails the process before
// any connection attempt, and the dev token secret is refused in prod.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env == "prod" && appCfg.AuthTokenSecret == devTokenSecret {
		return fmt.Errorf("auth_token_secret must be set in production")
	}

	if appCfg.ModerationRateLimit < 1 {
		return fmt.Errorf("moderation_rate_limit must be at least 1, got %d", appCfg.ModerationRateLimit)
	}

	switch appCfg.AuditLogMembership {
	case "all", "db", "log", "off":
	default:
		return fmt.Errorf("audit_log_membership must be 'all', 'db', 'log', or 'off', got %q", appCfg.AuditLogMembership)
	}
	switch appCfg.AuditLogModeration {
	case "all", "db", "log", "off":
	default:
		return fmt.Errorf("audit_log_moderation must be 'all', 'db', 'log', or 'off', got %q", appCfg.AuditLogModeration)
	}

	return nil
}
