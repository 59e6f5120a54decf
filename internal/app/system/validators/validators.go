// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/cardfolio/clubhouse/internal/app/store/audit"
	"github.com/cardfolio/clubhouse/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("groups", groupsSchema())
	ensure("group_members", groupMembersSchema())
	ensure("notifications", notificationsSchema())
	ensure("audit_events", auditEventsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func groupsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "owner_id", "is_private", "member_ids"},
			"properties": bson.M{
				"name":         bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"name_ci":      bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"description":  bson.M{"bsonType": "string"},
				"owner_id":     bson.M{"bsonType": "string", "minLength": 1},
				"is_private":   bson.M{"bsonType": "bool"},
				"member_ids":   bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"member_count": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"banned_users": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},

				"last_activity": bson.M{"bsonType": "date"},
				"created_at":    bson.M{"bsonType": "date"},
				"updated_at":    bson.M{"bsonType": "date"},
			},
		},
	}
}

func groupMembersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"group_id", "user_id", "role"},
			"properties": bson.M{
				"group_id":  bson.M{"bsonType": "objectId"},
				"user_id":   bson.M{"bsonType": "string", "minLength": 1},
				"role":      bson.M{"enum": bson.A{models.RoleOwner, models.RoleMember}},
				"joined_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func notificationsSchema() bson.M {
	// Build the type enum from the canonical constants in the domain models.
	typeEnum := bson.A{
		models.NotificationRemovedFromGroup,
		models.NotificationBannedFromGroup,
		models.NotificationUnbannedFromGroup,
	}

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"recipient_id", "type", "read", "created_at"},
			"properties": bson.M{
				"recipient_id": bson.M{"bsonType": "string", "minLength": 1},
				"sender_id":    bson.M{"bsonType": "string"},
				"type":         bson.M{"enum": typeEnum},
				"title":        bson.M{"bsonType": "string"},
				"message":      bson.M{"bsonType": "string"},
				"data": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"group_id":   bson.M{"bsonType": "string"},
						"group_name": bson.M{"bsonType": "string"},
					},
				},
				"read":       bson.M{"bsonType": "bool"},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func auditEventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"timestamp", "category", "event_type", "success"},
			"properties": bson.M{
				"timestamp": bson.M{"bsonType": "date"},
				"category":  bson.M{"enum": bson.A{audit.CategoryMembership, audit.CategoryModeration}},
				"event_type": bson.M{"enum": bson.A{
					audit.EventGroupCreated,
					audit.EventMemberJoined,
					audit.EventMemberLeft,
					audit.EventMemberRemoved,
					audit.EventMemberBanned,
					audit.EventMemberUnbanned,
				}},
				"actor_id":       bson.M{"bsonType": "string"},
				"target_id":      bson.M{"bsonType": "string"},
				"group_id":       bson.M{"bsonType": "objectId"},
				"ip":             bson.M{"bsonType": "string"},
				"user_agent":     bson.M{"bsonType": "string"},
				"success":        bson.M{"bsonType": "bool"},
				"failure_reason": bson.M{"bsonType": "string"},
				"details":        bson.M{"bsonType": "object"},
			},
		},
	}
}
