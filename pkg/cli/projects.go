package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ekaya-inc/ekaya-export/pkg/models"
	"github.com/ekaya-inc/ekaya-export/pkg/repositories"
	"github.com/ekaya-inc/ekaya-export/pkg/services"
)

func (a *app) projectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List the projects of the source organisation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if a.cfg.Export.SourceOrgID == "" {
				return fmt.Errorf("source_org_id is required (set SOURCE_ORG_ID)")
			}

			reader, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer reader.Close()

			projects, err := services.NewProjectService(
				repositories.NewProjectRepository(reader, a.cfg.Source.ProjectsDatabaseName()),
				a.cfg.Export.SourceOrgID,
				a.logger,
			).ListProjects(ctx)
			if err != nil {
				return err
			}

			renderProjects(cmd.OutOrStdout(), projects)
			return nil
		},
	}
}

func renderProjects(w io.Writer, projects []*models.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects found.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "NAME", "RESOURCES", "SETTINGS"})
	for _, p := range projects {
		table.Append([]string{p.ID.String(), p.Name, strconv.Itoa(len(p.Resources)), p.SettingsID.String()})
	}
	table.Render()
}
