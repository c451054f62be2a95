// Package cli implements the ekaya-export command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-export/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-export/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-export/pkg/config"
	"github.com/ekaya-inc/ekaya-export/pkg/logging"
)

// Exit codes returned by Execute.
const (
	ExitOK                = 0
	ExitError             = 1
	ExitMissingDependency = 2
)

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	version    string
	configPath string
	logLevel   string

	cfg     *config.Config
	logger  *zap.Logger
	fs      afero.Fs
	factory datasource.DatasourceAdapterFactory
}

// NewRootCommand builds the command tree. Configuration and the logger are
// loaded before any subcommand other than version runs.
func NewRootCommand(version string) *cobra.Command {
	a := &app{
		version: version,
		fs:      afero.NewOsFs(),
	}
	return a.rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ekaya-export",
		Short:         "Export projects from the source document store into a portable snapshot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "path to the YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(
		a.exportCommand(),
		a.projectsCommand(),
		a.checkCommand(),
		a.versionCommand(),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath, a.version)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	logger, err := logging.NewLogger(level, cfg.Log.Format)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger.With(zap.String("env", cfg.Env))
	if a.factory == nil {
		a.factory = datasource.NewDatasourceAdapterFactory(a.logger)
	}
	return nil
}

// connect opens a document reader on the source store and verifies the
// connection before anything is exported.
func (a *app) connect(ctx context.Context) (datasource.DocumentReader, error) {
	src := a.cfg.Source
	reader, err := a.factory.NewDocumentReader(ctx, src.Type, src.ToMap())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s source: %w", src.Type, err)
	}

	if tester, ok := reader.(datasource.ConnectionTester); ok {
		if err := tester.TestConnection(ctx); err != nil {
			reader.Close()
			return nil, fmt.Errorf("source %s is not reachable: %s", a.sourceLabel(), logging.SanitizeError(err))
		}
	}

	a.logger.Info("Connected to source", zap.String("source", a.sourceLabel()))
	return reader, nil
}

// sourceLabel describes the configured source without credentials.
func (a *app) sourceLabel() string {
	src := a.cfg.Source
	if src.URI != "" {
		return logging.SanitizeConnectionString(src.URI)
	}
	return fmt.Sprintf("%s:%d", src.Host, src.Port)
}

// Execute runs the command line and returns the process exit code.
func Execute(version string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		version: version,
		fs:      afero.NewOsFs(),
	}
	err := a.rootCommand().ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return report(os.Stderr, err)
}

// report prints err and maps it to an exit code.
func report(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, apperrors.ErrMissingDependency):
		return ExitMissingDependency
	default:
		return ExitError
	}
}
