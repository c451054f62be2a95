package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-export/pkg/dependencies"
	"github.com/ekaya-inc/ekaya-export/pkg/repositories"
	"github.com/ekaya-inc/ekaya-export/pkg/services"
	"github.com/ekaya-inc/ekaya-export/pkg/snapshot"
)

func (a *app) exportCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "export [projectID...]",
		Short: "Export projects of the source organisation into the snapshot directory",
		Args: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return errors.New("give at least one project id or --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			exportCfg := a.cfg.Export
			if err := exportCfg.Validate(); err != nil {
				return fmt.Errorf("invalid export configuration: %w", err)
			}

			mappings, err := dependencies.LoadMap(a.fs, exportCfg.DependencyMap)
			if err != nil {
				return err
			}
			a.logger.Info("Loaded dependency map",
				zap.String("path", exportCfg.DependencyMap),
				zap.Int("entries", len(mappings)))

			lock, err := snapshot.AcquireRunLock(a.fs, exportCfg.OutputDir)
			if err != nil {
				return err
			}
			defer lock.Unlock()
			a.logger.Debug("Acquired run lock", zap.String("path", lock.Path()))

			reader, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer reader.Close()

			projectService := services.NewProjectService(
				repositories.NewProjectRepository(reader, a.cfg.Source.ProjectsDatabaseName()),
				exportCfg.SourceOrgID,
				a.logger,
			)
			known, err := projectService.ListProjects(ctx)
			if err != nil {
				return err
			}
			ids, _ := projectService.Select(known, args, all)

			exportService := services.NewExportService(
				repositories.NewResourceRepository(reader, a.cfg.Source.DatabasePrefix),
				dependencies.NewResolver(mappings),
				snapshot.NewFileWriter(a.fs, snapshot.Layout{
					Root:         exportCfg.OutputDir,
					Organisation: exportCfg.SourceOrgID,
				}),
				services.ExportOptions{
					TargetOrganisation: exportCfg.TargetOrgID,
					ContinueOnError:    exportCfg.ContinueOnError,
				},
				a.logger,
			)

			summary, err := exportService.ExportProjects(ctx, ids, known)
			if summary != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d project(s) with %d resource(s) to %s (skipped %d, failed %d)\n",
					summary.Exported, summary.Resources, exportCfg.OutputDir, summary.Skipped, summary.Failed)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "export every project of the source organisation")
	return cmd
}
