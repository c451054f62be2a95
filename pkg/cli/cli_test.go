package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-export/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-export/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-export/pkg/models"
	"github.com/ekaya-inc/ekaya-export/pkg/snapshot"
	"github.com/ekaya-inc/ekaya-export/pkg/testhelpers"
)

const memoryAdapterType = "cli-memory"

// currentReader is served by the in-memory adapter registered below.
var currentReader *testhelpers.MemoryReader

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Info: datasource.DatasourceAdapterInfo{Type: memoryAdapterType, DisplayName: "Memory"},
		DocumentReaderFactory: func(ctx context.Context, config map[string]any, logger *zap.Logger) (datasource.DocumentReader, error) {
			if currentReader == nil {
				return nil, errors.New("no reader configured")
			}
			return currentReader, nil
		},
	})
}

type cliTestContext struct {
	t         *testing.T
	dir       string
	outputDir string
	org       primitive.ObjectID
	reader    *testhelpers.MemoryReader
}

func setupCLITest(t *testing.T, mappings string) *cliTestContext {
	t.Helper()

	dir := t.TempDir()
	tc := &cliTestContext{
		t:         t,
		dir:       dir,
		outputDir: filepath.Join(dir, "data"),
		org:       primitive.NewObjectID(),
		reader:    testhelpers.NewMemoryReader(),
	}
	currentReader = tc.reader
	t.Cleanup(func() { currentReader = nil })

	mapPath := filepath.Join(dir, "dependencies.yaml")
	require.NoError(t, os.WriteFile(mapPath, []byte(mappings), 0o644))

	cfg := fmt.Sprintf(`
source:
  type: %s
  host: memory
export:
  output_dir: %q
  source_org_id: %q
  dependency_map: %q
log:
  level: error
  format: json
`, memoryAdapterType, tc.outputDir, tc.org.Hex(), mapPath)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0o644))
	return tc
}

func (tc *cliTestContext) run(args ...string) (string, error) {
	tc.t.Helper()
	cmd := NewRootCommand("1.2.3")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(tc.dir, "config.yaml")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// seedProject stores a project with one flow family whose flow uses lexicon.
func (tc *cliTestContext) seedProject(name, lexicon string) primitive.ObjectID {
	tc.t.Helper()
	projectID, settingsID, parent := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	tc.reader.Insert("service-projects", "projects", bson.D{
		{Key: "_id", Value: projectID},
		{Key: "name", Value: name},
		{Key: "organisation", Value: tc.org},
		{Key: "settingsId", Value: settingsID},
		{Key: "resources", Value: bson.A{
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "parentId", Value: parent}, {Key: "type", Value: "flow"}},
		}},
	})
	tc.reader.Insert("service-flows", "flows", bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "parentId", Value: parent},
		{Key: "lexica", Value: bson.D{{Key: "cognigy", Value: bson.A{lexicon}}}},
		{Key: "newIntents", Value: bson.D{{Key: "trained", Value: true}}},
	})
	tc.reader.Insert("service-settings", "settings", bson.D{{Key: "_id", Value: settingsID}})
	return projectID
}

func (tc *cliTestContext) projectDir(id primitive.ObjectID) string {
	return filepath.Join(tc.outputDir, "organisations", tc.org.Hex(), "projects", id.Hex())
}

func TestVersionCommand(t *testing.T) {
	cmd := NewRootCommand("1.2.3")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", "does-not-matter.yaml", "version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "1.2.3\n", out.String())
}

func TestExportCommand_RequiresSelection(t *testing.T) {
	tc := setupCLITest(t, "{}")

	_, err := tc.run("export")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--all")
}

func TestExportCommand_All(t *testing.T) {
	tc := setupCLITest(t, "Cities: 5f0c8a7e2b1d4c3a9e8f7a01\n")
	p1 := tc.seedProject("Support", "Cities")
	p2 := tc.seedProject("Sales", "Cities")

	out, err := tc.run("export", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 project(s) with 4 resource(s)")

	for _, id := range []primitive.ObjectID{p1, p2} {
		assert.FileExists(t, filepath.Join(tc.projectDir(id), id.Hex()+".json"))
		entries, err := os.ReadDir(filepath.Join(tc.projectDir(id), "flows"))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	}
	assert.True(t, tc.reader.Closed())
}

func TestExportCommand_SelectedProject(t *testing.T) {
	tc := setupCLITest(t, "Cities: x\n")
	p1 := tc.seedProject("Support", "Cities")
	p2 := tc.seedProject("Sales", "Cities")

	_, err := tc.run("export", p2.Hex(), primitive.NewObjectID().Hex())
	require.NoError(t, err)

	assert.NoDirExists(t, tc.projectDir(p1))
	assert.DirExists(t, tc.projectDir(p2))
}

func TestExportCommand_MissingDependencyExitCode(t *testing.T) {
	tc := setupCLITest(t, "Other: x\n")
	id := tc.seedProject("Support", "Cities")

	_, err := tc.run("export", id.Hex())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingDependency)
	assert.Equal(t, ExitMissingDependency, exitCode(err))
	assert.NoDirExists(t, filepath.Join(tc.projectDir(id), "flows"))
}

func TestExportCommand_SnapshotLocked(t *testing.T) {
	tc := setupCLITest(t, "Cities: x\n")
	id := tc.seedProject("Support", "Cities")

	lock, err := snapshot.AcquireRunLock(afero.NewOsFs(), tc.outputDir)
	require.NoError(t, err)
	defer lock.Unlock()

	_, err = tc.run("export", id.Hex())
	assert.ErrorIs(t, err, apperrors.ErrSnapshotLocked)
	assert.Equal(t, ExitError, exitCode(err))
	assert.NoDirExists(t, tc.projectDir(id))
}

func TestProjectsCommand(t *testing.T) {
	tc := setupCLITest(t, "{}")
	id := tc.seedProject("Support Bot", "Cities")

	out, err := tc.run("projects")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Support Bot")
	assert.Contains(t, out, id.Hex())
}

func TestRenderProjects_Empty(t *testing.T) {
	var out bytes.Buffer
	renderProjects(&out, []*models.Project{})
	assert.Equal(t, "No projects found.\n", out.String())
}

func TestCheckCommand(t *testing.T) {
	tc := setupCLITest(t, "{}")

	out, err := tc.run("check")
	require.NoError(t, err)
	assert.Contains(t, out, "Connection to memory:27017 OK")
}

func TestReport(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, ExitOK, report(&out, nil))
	assert.Empty(t, out.String())

	assert.Equal(t, ExitError, report(&out, errors.New("boom")))
	assert.Equal(t, "Error: boom\n", out.String())

	wrapped := fmt.Errorf("project p1: %w", &apperrors.MissingDependencyError{Kind: apperrors.DependencyLexicon, Name: "Cities"})
	assert.Equal(t, ExitMissingDependency, report(&bytes.Buffer{}, wrapped))
}
