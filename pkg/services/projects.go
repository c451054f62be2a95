package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-export/pkg/models"
	"github.com/ekaya-inc/ekaya-export/pkg/repositories"
)

// ProjectService defines the interface for project operations.
type ProjectService interface {
	// ListProjects returns the source organisation's projects.
	ListProjects(ctx context.Context) ([]*models.Project, error)

	// Select returns the identifiers to export: every known project when all
	// is set, otherwise ids with unknown identifiers dropped and reported.
	Select(known []*models.Project, ids []string, all bool) (selected, unknown []string)
}

// projectService implements ProjectService.
type projectService struct {
	repo         repositories.ProjectRepository
	organisation string
	logger       *zap.Logger
}

// NewProjectService creates a project service scoped to one source organisation.
func NewProjectService(repo repositories.ProjectRepository, organisation string, logger *zap.Logger) ProjectService {
	return &projectService{
		repo:         repo,
		organisation: organisation,
		logger:       logger,
	}
}

func (s *projectService) ListProjects(ctx context.Context) ([]*models.Project, error) {
	if s.organisation == "" {
		return nil, fmt.Errorf("source organisation is required")
	}

	projects, err := s.repo.ListByOrganisation(ctx, models.ParseObjectRef(s.organisation))
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loaded projects",
		zap.String("organisation", s.organisation),
		zap.Int("count", len(projects)))
	return projects, nil
}

func (s *projectService) Select(known []*models.Project, ids []string, all bool) (selected, unknown []string) {
	if all {
		selected = make([]string, 0, len(known))
		for _, p := range known {
			selected = append(selected, p.ID.String())
		}
		return selected, nil
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if models.FindProject(known, id) == nil {
			s.logger.Warn("Project not found in source organisation", zap.String("project_id", id))
			unknown = append(unknown, id)
			continue
		}
		selected = append(selected, id)
	}
	return selected, unknown
}

// Ensure projectService implements ProjectService at compile time.
var _ ProjectService = (*projectService)(nil)
