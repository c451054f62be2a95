package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ekaya-inc/ekaya-export/pkg/models"
	"github.com/ekaya-inc/ekaya-export/pkg/testhelpers"
)

func TestLocation(t *testing.T) {
	tests := []struct {
		typ        models.ResourceType
		database   string
		collection string
	}{
		{models.ResourceFlow, "service-flows", "flows"},
		{models.ResourceEndpoint, "service-endpoints", "endpoints"},
		{models.ResourceDatabaseConnection, "service-database-connections", "databaseconnections"},
		{models.ResourceNLPConnector, "service-nlp-connectors", "nlpconnectors"},
		{models.ResourceSettings, "service-settings", "settings"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			database, collection := Location(DefaultDatabasePrefix, tt.typ)
			assert.Equal(t, tt.database, database)
			assert.Equal(t, tt.collection, collection)
		})
	}
}

func TestResourceRepository_FindFlowsByParent(t *testing.T) {
	parent := primitive.NewObjectID()
	reader := testhelpers.NewMemoryReader()
	reader.Insert("service-flows", "flows",
		bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "parentId", Value: parent}, {Key: "name", Value: "en"}},
		bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "parentId", Value: primitive.NewObjectID()}},
		bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "parentId", Value: parent}, {Key: "name", Value: "de"}},
	)

	repo := NewResourceRepository(reader, DefaultDatabasePrefix)
	flows, err := repo.Find(context.Background(), models.ResourceFlow, models.OIDRef(parent))
	require.NoError(t, err)
	require.Len(t, flows, 2)

	for _, f := range flows {
		assert.Equal(t, models.ResourceFlow, f.Type)
		assert.Equal(t, parent.Hex(), f.ParentID.String())
	}

	queries := reader.Queries()
	require.Len(t, queries, 1)
	assert.Equal(t, bson.D{{Key: "parentId", Value: parent}}, queries[0].Filter)
}

func TestResourceRepository_FindByID(t *testing.T) {
	id := primitive.NewObjectID()
	reader := testhelpers.NewMemoryReader()
	reader.Insert("service-database-connections", "databaseconnections",
		bson.D{{Key: "_id", Value: id}, {Key: "name", Value: "crm"}},
	)

	repo := NewResourceRepository(reader, DefaultDatabasePrefix)
	found, err := repo.Find(context.Background(), models.ResourceDatabaseConnection, models.OIDRef(id))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, id.Hex(), found[0].ID.String())

	missing, err := repo.Find(context.Background(), models.ResourceDatabaseConnection, models.OIDRef(primitive.NewObjectID()))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestResourceRepository_StringKeys(t *testing.T) {
	reader := testhelpers.NewMemoryReader()
	reader.Insert("service-secrets", "secrets", bson.D{{Key: "_id", Value: "legacy-secret"}})

	repo := NewResourceRepository(reader, DefaultDatabasePrefix)
	found, err := repo.Find(context.Background(), models.ResourceSecret, models.ParseObjectRef("legacy-secret"))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "legacy-secret", found[0].ID.String())
}

func TestResourceRepository_Errors(t *testing.T) {
	reader := testhelpers.NewMemoryReader()
	boom := errors.New("cursor killed")
	reader.FailOn("service-forms", "forms", boom)

	repo := NewResourceRepository(reader, DefaultDatabasePrefix)

	_, err := repo.Find(context.Background(), models.ResourceForm, models.OIDRef(primitive.NewObjectID()))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "form")

	_, err = repo.Find(context.Background(), models.ResourceType("widget"), models.StringRef("x"))
	assert.Error(t, err)
}
