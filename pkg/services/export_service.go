package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-export/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-export/pkg/dependencies"
	"github.com/ekaya-inc/ekaya-export/pkg/models"
	"github.com/ekaya-inc/ekaya-export/pkg/normalize"
	"github.com/ekaya-inc/ekaya-export/pkg/repositories"
	"github.com/ekaya-inc/ekaya-export/pkg/snapshot"
)

// ExportOptions controls how projects are exported.
type ExportOptions struct {
	// TargetOrganisation replaces the organisation of every project root when set.
	TargetOrganisation string

	// ContinueOnError moves on to the next project after a failure.
	// Missing dependency mappings always stop the run.
	ContinueOnError bool
}

// ExportSummary reports the outcome of ExportProjects.
type ExportSummary struct {
	RunID     string
	Exported  int
	Skipped   int
	Failed    int
	Resources int
}

// ExportService defines the interface for snapshot export operations.
type ExportService interface {
	// ExportProject exports one project from known. A project that is not in
	// known is skipped without error.
	ExportProject(ctx context.Context, projectID string, known []*models.Project) error

	// ExportProjects exports the projects one after the other.
	ExportProjects(ctx context.Context, projectIDs []string, known []*models.Project) (*ExportSummary, error)
}

// exportService implements ExportService.
type exportService struct {
	resources repositories.ResourceRepository
	resolver  *dependencies.Resolver
	writer    snapshot.Writer
	opts      ExportOptions
	logger    *zap.Logger
}

// NewExportService creates a new export service with dependencies.
func NewExportService(
	resources repositories.ResourceRepository,
	resolver *dependencies.Resolver,
	writer snapshot.Writer,
	opts ExportOptions,
	logger *zap.Logger,
) ExportService {
	return &exportService{
		resources: resources,
		resolver:  resolver,
		writer:    writer,
		opts:      opts,
		logger:    logger,
	}
}

// projectResult is the outcome of exporting one project.
type projectResult struct {
	found     bool
	resources int
}

func (s *exportService) ExportProject(ctx context.Context, projectID string, known []*models.Project) error {
	_, err := s.exportProject(ctx, s.logger, projectID, known)
	return err
}

func (s *exportService) ExportProjects(ctx context.Context, projectIDs []string, known []*models.Project) (*ExportSummary, error) {
	runID := uuid.New().String()
	logger := s.logger.With(zap.String("run_id", runID))
	summary := &ExportSummary{RunID: runID}

	logger.Info("Starting export", zap.Int("projects", len(projectIDs)))

	for _, id := range projectIDs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := s.exportProject(ctx, logger, id, known)
		summary.Resources += result.resources
		switch {
		case err == nil && result.found:
			summary.Exported++
		case err == nil:
			summary.Skipped++
		case errors.Is(err, apperrors.ErrMissingDependency):
			summary.Failed++
			logger.Error("Missing dependency mapping, stopping export",
				zap.String("project_id", id),
				zap.Error(err))
			return summary, err
		case s.opts.ContinueOnError:
			summary.Failed++
			logger.Error("Failed to export project, continuing",
				zap.String("project_id", id),
				zap.Error(err))
		default:
			summary.Failed++
			return summary, err
		}
	}

	logger.Info("Finished export",
		zap.Int("exported", summary.Exported),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("resources", summary.Resources))

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d of %d projects failed to export", summary.Failed, len(projectIDs))
	}
	return summary, nil
}

func (s *exportService) exportProject(ctx context.Context, logger *zap.Logger, projectID string, known []*models.Project) (projectResult, error) {
	var result projectResult

	project := models.FindProject(known, projectID)
	if project == nil {
		logger.Debug("Project not found, skipping", zap.String("project_id", projectID))
		return result, nil
	}
	result.found = true
	logger = logger.With(zap.String("project_id", projectID))

	worklist, err := ExpandResourceGraph(project)
	if err != nil {
		return result, err
	}

	if err := s.writer.ResetProject(projectID); err != nil {
		return result, fmt.Errorf("failed to reset project %s: %w", projectID, err)
	}

	root := normalize.Document(project.RootDocument(s.opts.TargetOrganisation))
	if err := s.writer.WriteProject(projectID, root); err != nil {
		return result, fmt.Errorf("failed to write project %s: %w", projectID, err)
	}
	logger.Info("Exported project",
		zap.String("name", project.Name),
		zap.Int("descriptors", len(project.Resources)))

	err = worklist.Each(func(t models.ResourceType, keys []models.ObjectRef) error {
		if len(keys) == 0 {
			return nil
		}
		logger.Info("Exporting resources",
			zap.String("type", string(t)),
			zap.Int("count", len(keys)))

		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := s.exportKey(ctx, logger, projectID, t, key)
			result.resources += n
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	logger.Info("Finished project", zap.Int("resources", result.resources))
	return result, nil
}

// exportKey fetches and writes the documents behind one worklist key.
func (s *exportService) exportKey(ctx context.Context, logger *zap.Logger, projectID string, t models.ResourceType, key models.ObjectRef) (int, error) {
	found, err := s.resources.Find(ctx, t, key)
	if err != nil {
		return 0, err
	}
	if len(found) == 0 {
		logger.Info(fmt.Sprintf("No %s found", t.Collection()), zap.String("id", key.String()))
		return 0, nil
	}

	written := 0
	for _, res := range found {
		if err := s.exportResource(logger, projectID, res); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (s *exportService) exportResource(logger *zap.Logger, projectID string, res *models.Resource) error {
	if res.ID.IsZero() {
		return fmt.Errorf("%s in project %s has no _id", res.Type, projectID)
	}

	if res.Type == models.ResourceFlow {
		if err := s.resolver.Resolve(res); err != nil {
			return err
		}
		res.ResetTraining()
	}

	doc := normalize.Document(res.Document)
	if err := s.writer.WriteResource(projectID, res.Type.Collection(), res.ID.String(), doc); err != nil {
		return fmt.Errorf("failed to write %s %s: %w", res.Type, res.ID, err)
	}

	logger.Debug("Exported resource",
		zap.String("type", string(res.Type)),
		zap.String("id", res.ID.String()))
	return nil
}

// Ensure exportService implements ExportService at compile time.
var _ ExportService = (*exportService)(nil)
