package datasource

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// ConnectionTester tests database connectivity.
// Each implementation owns its connection and must be closed when done.
type ConnectionTester interface {
	// TestConnection verifies the database is reachable with valid credentials.
	// Returns nil if connection is healthy, error otherwise.
	TestConnection(ctx context.Context) error

	// Close releases the database connection.
	Close() error
}

// DocumentReader reads raw documents from a document store.
// Used by the repositories to load projects and their resources.
type DocumentReader interface {
	// FindDocuments returns every document in database.collection matching filter,
	// in the order the server returns them. An empty result is not an error.
	FindDocuments(ctx context.Context, database, collection string, filter bson.D) ([]bson.Raw, error)

	// Close releases the underlying client.
	Close() error
}
