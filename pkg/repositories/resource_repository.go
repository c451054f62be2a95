package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ekaya-inc/ekaya-export/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-export/pkg/models"
)

// DefaultDatabasePrefix is prepended to a resource type's backing name to form
// its database name.
const DefaultDatabasePrefix = "service-"

// ResourceRepository defines the interface for resource data access.
type ResourceRepository interface {
	// Find returns the documents for one worklist key: every flow whose
	// parentId is key, or the single resource whose _id is key for any other
	// type. Zero results is not an error.
	Find(ctx context.Context, t models.ResourceType, key models.ObjectRef) ([]*models.Resource, error)
}

type resourceRepository struct {
	reader datasource.DocumentReader
	prefix string
}

// NewResourceRepository creates a new resource repository. Resources of type T
// live in database prefix+T.BackingName(), collection T.Collection().
func NewResourceRepository(reader datasource.DocumentReader, prefix string) ResourceRepository {
	return &resourceRepository{
		reader: reader,
		prefix: prefix,
	}
}

// Location returns the database and collection holding resources of type t.
func Location(prefix string, t models.ResourceType) (database, collection string) {
	return prefix + t.BackingName(), t.Collection()
}

func (r *resourceRepository) Find(ctx context.Context, t models.ResourceType, key models.ObjectRef) ([]*models.Resource, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid resource type %q", t)
	}

	field := "_id"
	if t == models.ResourceFlow {
		field = "parentId"
	}

	database, collection := Location(r.prefix, t)
	filter := bson.D{{Key: field, Value: key.Value()}}

	docs, err := r.reader.FindDocuments(ctx, database, collection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s %s: %w", t, key, err)
	}

	resources := make([]*models.Resource, 0, len(docs))
	for _, doc := range docs {
		res, err := models.DecodeResource(t, doc)
		if err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, nil
}
