package mongodb

import "fmt"

// Config contains MongoDB-specific connection options.
// URI, when set, is used as is and the discrete fields are ignored.
type Config struct {
	URI                   string
	Host                  string
	Port                  int
	User                  string
	Password              string
	AuthSource            string
	ConnectTimeoutSeconds int
}

// DefaultPort returns the default MongoDB port.
func DefaultPort() int {
	return 27017
}

// DefaultAuthSource returns the default authentication database.
func DefaultAuthSource() string {
	return "admin"
}

// DefaultConnectTimeoutSeconds returns the default connect and server selection timeout.
func DefaultConnectTimeoutSeconds() int {
	return 10
}

// FromMap creates a Config from a generic config map.
func FromMap(config map[string]any) (*Config, error) {
	cfg := &Config{
		Port:                  DefaultPort(),
		AuthSource:            DefaultAuthSource(),
		ConnectTimeoutSeconds: DefaultConnectTimeoutSeconds(),
	}

	if uri, ok := config["uri"].(string); ok {
		cfg.URI = uri
	}

	if host, ok := config["host"].(string); ok {
		cfg.Host = host
	}
	if cfg.URI == "" && cfg.Host == "" {
		return nil, fmt.Errorf("host or uri is required")
	}

	cfg.Port = intValue(config["port"], cfg.Port)

	if user, ok := config["user"].(string); ok {
		cfg.User = user
	}

	if password, ok := config["password"].(string); ok {
		cfg.Password = password
	}

	if authSource, ok := config["auth_source"].(string); ok && authSource != "" {
		cfg.AuthSource = authSource
	}

	cfg.ConnectTimeoutSeconds = intValue(config["connect_timeout_seconds"], cfg.ConnectTimeoutSeconds)
	if cfg.ConnectTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("connect_timeout_seconds must be positive")
	}

	return cfg, nil
}

func intValue(v any, fallback int) int {
	switch n := v.(type) {
	case float64: // JSON numbers are float64
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	}
	return fallback
}
