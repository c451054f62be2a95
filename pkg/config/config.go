package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "config.yaml"

// Config holds all configuration for ekaya-export.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, connection URIs) must only come from environment variables.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	// Source document store
	Source SourceConfig `yaml:"source"`

	// Snapshot export settings
	Export ExportConfig `yaml:"export"`

	Log LogConfig `yaml:"log"`
}

// SourceConfig holds the connection settings for the source document store.
type SourceConfig struct {
	Type     string `yaml:"type" env:"SOURCE_DB_TYPE" env-default:"mongodb"`
	URI      string `yaml:"-" env:"SOURCE_DB_URI"` // Secret - may embed credentials
	Host     string `yaml:"host" env:"SOURCE_DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"SOURCE_DB_PORT" env-default:"27017"`
	User     string `yaml:"user" env:"SOURCE_DB_USERNAME" env-default:""`
	Password string `yaml:"-" env:"SOURCE_DB_PASSWORD"` // Secret - not in YAML

	AuthSource string `yaml:"auth_source" env:"SOURCE_DB_AUTH_SOURCE" env-default:"admin"`

	// DatabasePrefix is prepended to every backing database name.
	DatabasePrefix string `yaml:"database_prefix" env:"SOURCE_DB_PREFIX" env-default:"service-"`

	// ProjectsDatabase overrides the database holding the projects collection.
	// Empty means DatabasePrefix + "projects".
	ProjectsDatabase string `yaml:"projects_database" env:"SOURCE_DB_PROJECTS_DATABASE" env-default:""`

	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds" env:"SOURCE_DB_CONNECT_TIMEOUT" env-default:"10"`
}

// ExportConfig holds snapshot export settings.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" env:"EXPORT_OUTPUT_DIR" env-default:"data"`

	// SourceOrgID selects the projects to export and names the snapshot organisation directory.
	SourceOrgID string `yaml:"source_org_id" env:"SOURCE_ORG_ID" env-default:""`

	// TargetOrgID, when set, replaces the organisation of every exported project root.
	TargetOrgID string `yaml:"target_org_id" env:"TARGET_ORG_ID" env-default:""`

	// DependencyMap is a YAML or JSON file mapping symbolic names to identifiers.
	DependencyMap string `yaml:"dependency_map" env:"EXPORT_DEPENDENCY_MAP" env-default:""`

	// ContinueOnError keeps the run going after a project fails.
	// Missing dependency mappings always stop the run.
	ContinueOnError bool `yaml:"continue_on_error" env:"EXPORT_CONTINUE_ON_ERROR" env-default:"false"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
}

// Load reads configuration from the YAML file at path with environment variable
// overrides. A missing file is not an error when path is the default; the
// configuration then comes from the environment alone.
func Load(path, version string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else {
		if path != DefaultPath || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.Source.validate(); err != nil {
		return nil, fmt.Errorf("invalid source configuration: %w", err)
	}

	return cfg, nil
}

func (s *SourceConfig) validate() error {
	if s.Type == "" {
		return fmt.Errorf("type is required")
	}
	if s.URI == "" && s.Host == "" {
		return fmt.Errorf("either SOURCE_DB_URI or host is required")
	}
	if s.ConnectTimeoutSeconds <= 0 {
		return fmt.Errorf("connect_timeout_seconds must be positive")
	}
	return nil
}

// ProjectsDatabaseName returns the database holding the projects collection.
func (s *SourceConfig) ProjectsDatabaseName() string {
	if s.ProjectsDatabase != "" {
		return s.ProjectsDatabase
	}
	return s.DatabasePrefix + "projects"
}

// ToMap returns the adapter configuration map consumed by datasource factories.
func (s *SourceConfig) ToMap() map[string]any {
	return map[string]any{
		"uri":                     s.URI,
		"host":                    s.Host,
		"port":                    s.Port,
		"user":                    s.User,
		"password":                s.Password,
		"auth_source":             s.AuthSource,
		"connect_timeout_seconds": s.ConnectTimeoutSeconds,
	}
}

// Validate checks the settings needed to select and write projects.
func (e *ExportConfig) Validate() error {
	if strings.TrimSpace(e.SourceOrgID) == "" {
		return fmt.Errorf("source_org_id is required (set SOURCE_ORG_ID)")
	}
	if strings.TrimSpace(e.OutputDir) == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	return nil
}
