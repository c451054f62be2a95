package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ekaya-inc/ekaya-export/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-export/pkg/models"
)

// ProjectsCollection is the collection holding project documents.
const ProjectsCollection = "projects"

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	// ListByOrganisation returns every project owned by the organisation, in
	// the order the store returns them.
	ListByOrganisation(ctx context.Context, organisation models.ObjectRef) ([]*models.Project, error)
}

// projectRepository implements ProjectRepository on a DocumentReader.
type projectRepository struct {
	reader   datasource.DocumentReader
	database string
}

// NewProjectRepository creates a new project repository reading from the
// projects collection of database.
func NewProjectRepository(reader datasource.DocumentReader, database string) ProjectRepository {
	return &projectRepository{
		reader:   reader,
		database: database,
	}
}

func (r *projectRepository) ListByOrganisation(ctx context.Context, organisation models.ObjectRef) ([]*models.Project, error) {
	if organisation.IsZero() {
		return nil, fmt.Errorf("organisation is required")
	}

	filter := bson.D{{Key: "organisation", Value: organisation.Value()}}
	docs, err := r.reader.FindDocuments(ctx, r.database, ProjectsCollection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]*models.Project, 0, len(docs))
	for _, doc := range docs {
		project, err := models.DecodeProject(doc)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, nil
}
