package testhelpers

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// Query records one FindDocuments call made against a MemoryReader.
type Query struct {
	Database   string
	Collection string
	Filter     bson.D
}

// MemoryReader is an in-memory datasource.DocumentReader for unit tests.
// Filters match top-level fields by exact BSON type and value, the way an
// equality filter behaves on the server.
type MemoryReader struct {
	mu       sync.Mutex
	docs     map[string][]bson.Raw
	failures map[string]error
	queries  []Query
	closed   bool
}

// NewMemoryReader returns an empty reader.
func NewMemoryReader() *MemoryReader {
	return &MemoryReader{
		docs:     make(map[string][]bson.Raw),
		failures: make(map[string]error),
	}
}

func namespace(database, collection string) string {
	return database + "." + collection
}

// Insert adds documents to database.collection. It panics on documents that
// cannot be marshalled, which is a broken test fixture.
func (m *MemoryReader) Insert(database, collection string, docs ...bson.D) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns := namespace(database, collection)
	for _, d := range docs {
		raw, err := bson.Marshal(d)
		if err != nil {
			panic(fmt.Sprintf("marshal fixture for %s: %v", ns, err))
		}
		m.docs[ns] = append(m.docs[ns], raw)
	}
}

// FailOn makes every query against database.collection return err.
func (m *MemoryReader) FailOn(database, collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[namespace(database, collection)] = err
}

// Queries returns the calls made so far.
func (m *MemoryReader) Queries() []Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Query(nil), m.queries...)
}

// Closed reports whether Close was called.
func (m *MemoryReader) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MemoryReader) FindDocuments(ctx context.Context, database, collection string, filter bson.D) ([]bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.queries = append(m.queries, Query{Database: database, Collection: collection, Filter: filter})

	ns := namespace(database, collection)
	if err := m.failures[ns]; err != nil {
		return nil, err
	}

	var out []bson.Raw
	for _, doc := range m.docs[ns] {
		ok, err := matches(doc, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *MemoryReader) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func matches(doc bson.Raw, filter bson.D) (bool, error) {
	for _, e := range filter {
		t, data, err := bson.MarshalValue(e.Value)
		if err != nil {
			return false, fmt.Errorf("marshal filter %s: %w", e.Key, err)
		}
		got, err := doc.LookupErr(e.Key)
		if err != nil {
			return false, nil
		}
		if got.Type != t || !bytes.Equal(got.Value, data) {
			return false, nil
		}
	}
	return true, nil
}
