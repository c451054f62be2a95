package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoTestImage is the MongoDB image used for integration tests.
const MongoTestImage = "mongo:7"

// TestMongo holds a shared MongoDB container and a client connected to it.
type TestMongo struct {
	Container testcontainers.Container
	Client    *mongo.Client
	Host      string
	Port      int
	URI       string
}

var (
	sharedTestMongo     *TestMongo
	sharedTestMongoOnce sync.Once
	sharedTestMongoErr  error
)

// GetTestMongo returns a shared MongoDB container for integration tests.
// The container is created once and reused across all tests in the run.
func GetTestMongo(t *testing.T) *TestMongo {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestMongoOnce.Do(func() {
		sharedTestMongo, sharedTestMongoErr = setupTestMongo()
	})

	if sharedTestMongoErr != nil {
		t.Fatalf("Failed to setup test mongodb: %v", sharedTestMongoErr)
	}

	return sharedTestMongo
}

func setupTestMongo() (*TestMongo, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        MongoTestImage,
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor: wait.ForLog("Waiting for connections").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	uri := fmt.Sprintf("mongodb://%s:%s/", host, port.Port())

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	// Verify connection with retry
	for i := 0; i < 10; i++ {
		if err = client.Ping(ctx, readpref.Primary()); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to ping test mongodb: %w", err)
	}

	return &TestMongo{
		Container: container,
		Client:    client,
		Host:      host,
		Port:      port.Int(),
		URI:       uri,
	}, nil
}

// Seed replaces the contents of database.collection with docs.
func (m *TestMongo) Seed(t *testing.T, database, collection string, docs ...bson.D) {
	t.Helper()

	ctx := context.Background()
	coll := m.Client.Database(database).Collection(collection)
	if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
		t.Fatalf("failed to clear %s.%s: %v", database, collection, err)
	}
	if len(docs) == 0 {
		return
	}

	insert := make([]any, len(docs))
	for i, d := range docs {
		insert[i] = d
	}
	if _, err := coll.InsertMany(ctx, insert); err != nil {
		t.Fatalf("failed to seed %s.%s: %v", database, collection, err)
	}
}
