package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SetupTestMongoDB connects to TEST_MONGO_URI and returns a fresh database.
// The test is skipped when TEST_MONGO_URI is not set. The cleanup function
// drops the database and disconnects the client.
func SetupTestMongoDB(t *testing.T, dbNamePrefix string) (*mongo.Database, func()) {
	t.Helper()

	mongoURI := os.Getenv("TEST_MONGO_URI")
	if mongoURI == "" {
		t.Skip("Skipping MongoDB integration test: TEST_MONGO_URI not set")
	}

	dbName := fmt.Sprintf("%s_%d", dbNamePrefix, time.Now().UnixNano())

	clientOpts := options.Client().ApplyURI(mongoURI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		t.Fatalf("Failed to create MongoDB client: %v (URI: %s)", err, mongoURI)
	}

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err = client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Fatalf("Failed to connect to MongoDB (ping failed): %v (URI: %s)", err, mongoURI)
	}

	db := client.Database(dbName)

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("Warning: Failed to drop database %s: %v", dbName, err)
		}
		if err := client.Disconnect(ctx); err != nil {
			t.Logf("Warning: Failed to disconnect MongoDB client: %v", err)
		}
	}

	return db, cleanup
}
