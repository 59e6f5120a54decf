// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging level, environment). AppConfig is everything specific to the
// clubhouse service: the Mongo connection, the token verifier, moderation
// rate limits, audit routing, and notification retention.
//
// The struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown should live here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connections in the driver pool
	MongoMinPoolSize uint64 // Min connections kept warm

	// Bearer token verification. Tokens are minted by the platform's
	// account service; this service only verifies them.
	AuthTokenSecret string // HS256 signing secret shared with the issuer
	AuthTokenIssuer string // Expected "iss" claim (blank disables the check)

	// Moderation rate limiting (per caller uid)
	ModerationRateLimit  int           // Requests allowed per window
	ModerationRateWindow time.Duration // Window length

	// Audit event routing: "all" (db+log), "db", "log", or "off"
	AuditLogMembership string // group created / join / leave events
	AuditLogModeration string // remove / ban / unban events

	// Notification retention
	NotificationRetention       time.Duration // How long inbox records are kept
	NotificationCleanupInterval time.Duration // How often the pruning worker runs
}
