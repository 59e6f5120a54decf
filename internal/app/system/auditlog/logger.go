// internal/app/system/auditlog/logger.go
package auditlog

// Terminology: User Identifiers
//   - uid / actor_id / target_id: The opaque string identifier issued by the
//     identity provider (the JWT subject), not a MongoDB ObjectID.

import (
	"context"
	"net"
	"net/http"

	"github.com/cardfolio/clubhouse/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Membership controls logging for membership events (group created, join, leave).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Membership string
	// Moderation controls logging for moderation events (remove, ban, unban).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Moderation string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// Fall back to RemoteAddr with the port stripped
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.TargetID != "" {
		fields = append(fields, zap.String("target_id", event.TargetID))
	}
	if event.GroupID != nil {
		fields = append(fields, zap.String("group_id", event.GroupID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	// Determine which config setting applies based on event category
	var setting string
	switch event.Category {
	case audit.CategoryMembership:
		setting = l.config.Membership
	case audit.CategoryModeration:
		setting = l.config.Moderation
	default:
		setting = "all" // Default to logging everything for unknown categories
	}

	// Check if logging is disabled for this category
	if setting == "off" {
		return
	}

	// Log to zap if configured
	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	// Log to MongoDB if configured
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Membership Events ---

// GroupCreated logs when a user creates a group.
func (l *Logger) GroupCreated(ctx context.Context, r *http.Request, actorID string, groupID primitive.ObjectID, groupName string, isPrivate bool) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMembership,
		EventType: audit.EventGroupCreated,
		ActorID:   actorID,
		GroupID:   &groupID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"group_name": groupName,
			"is_private": boolToString(isPrivate),
		},
	})
}

// MemberJoined logs when a user joins a group.
func (l *Logger) MemberJoined(ctx context.Context, r *http.Request, actorID string, groupID primitive.ObjectID, groupName string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMembership,
		EventType: audit.EventMemberJoined,
		ActorID:   actorID,
		GroupID:   &groupID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"group_name": groupName,
		},
	})
}

// MemberLeft logs when a user leaves a group voluntarily.
func (l *Logger) MemberLeft(ctx context.Context, r *http.Request, actorID string, groupID primitive.ObjectID, groupName string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMembership,
		EventType: audit.EventMemberLeft,
		ActorID:   actorID,
		GroupID:   &groupID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"group_name": groupName,
		},
	})
}

// --- Moderation Events ---

// MemberRemoved logs when the group owner removes a member.
func (l *Logger) MemberRemoved(ctx context.Context, r *http.Request, actorID, targetID string, groupID primitive.ObjectID, groupName string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryModeration,
		EventType: audit.EventMemberRemoved,
		ActorID:   actorID,
		TargetID:  targetID,
		GroupID:   &groupID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"group_name": groupName,
		},
	})
}

// MemberBanned logs when the group owner bans a user.
// wasMember records whether the ban also evicted an active member.
func (l *Logger) MemberBanned(ctx context.Context, r *http.Request, actorID, targetID string, groupID primitive.ObjectID, groupName string, wasMember bool) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryModeration,
		EventType: audit.EventMemberBanned,
		ActorID:   actorID,
		TargetID:  targetID,
		GroupID:   &groupID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"group_name": groupName,
			"was_member": boolToString(wasMember),
		},
	})
}

// MemberUnbanned logs when the group owner lifts a ban.
func (l *Logger) MemberUnbanned(ctx context.Context, r *http.Request, actorID, targetID string, groupID primitive.ObjectID, groupName string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryModeration,
		EventType: audit.EventMemberUnbanned,
		ActorID:   actorID,
		TargetID:  targetID,
		GroupID:   &groupID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"group_name": groupName,
		},
	})
}

// --- Helper functions ---

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
