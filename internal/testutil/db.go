// Package testutil provides shared helpers for integration and handler tests.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cardfolio/clubhouse/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// testMongoURI returns the MongoDB URI for tests.
// Override with TEST_MONGO_URI; defaults to a local instance.
func testMongoURI() string {
	if uri := os.Getenv("TEST_MONGO_URI"); uri != "" {
		return uri
	}
	return "mongodb://localhost:27017"
}

// SetupTestDB connects to MongoDB and returns a database unique to the
// calling test. The test is skipped when no MongoDB instance is reachable.
// Indexes are ensured so unique-constraint behavior matches production.
// The database is dropped and the client disconnected when the test ends.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(testMongoURI()))
	if err != nil {
		t.Skipf("mongodb not available: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("mongodb not available: %v", err)
	}

	db := client.Database("clubhouse_test_" + primitive.NewObjectID().Hex())

	if err := indexes.EnsureAll(ctx, db); err != nil {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
		t.Fatalf("failed to ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cleanupCancel()
		_ = db.Drop(cleanupCtx)
		_ = client.Disconnect(cleanupCtx)
	})

	return db
}

// TestContext returns a context with a generous timeout for test operations.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
