package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	WordPress WordPressConfig `toml:"wordpress"`
	SSE       SSEConfig       `toml:"sse"`
	Logging   LoggingConfig   `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port      int    `toml:"port"`
	Host      string `toml:"host"`
	PublicURL string `toml:"public_url"`
}

// WordPressConfig contains the upstream site and its credentials.
type WordPressConfig struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Timeout  string `toml:"timeout"`
}

// SSEConfig contains streaming session settings.
type SSEConfig struct {
	HeartbeatInterval string `toml:"heartbeat_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// GetTimeout parses the upstream timeout, falling back to 30s.
func (c *WordPressConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetHeartbeatInterval parses the heartbeat interval, falling back to 15s.
func (c *SSEConfig) GetHeartbeatInterval() time.Duration {
	d, err := time.ParseDuration(c.HeartbeatInterval)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// BaseURL returns the externally reachable base URL of this server.
// A wildcard bind host is advertised as localhost.
func (c *Config) BaseURL() string {
	if c.Server.PublicURL != "" {
		return strings.TrimRight(c.Server.PublicURL, "/")
	}
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Server.Port)
}

// Validate returns a list of human-readable problems with the configuration.
// An empty list means the configuration is usable.
func (c *Config) Validate() []string {
	var issues []string

	if strings.TrimSpace(c.WordPress.URL) == "" {
		issues = append(issues, "wordpress.url is required (WORDPRESS_URL)")
	} else if u, err := url.Parse(c.WordPress.URL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, fmt.Sprintf("wordpress.url %q is not an absolute URL", c.WordPress.URL))
	}
	if strings.TrimSpace(c.WordPress.Username) == "" {
		issues = append(issues, "wordpress.username is required (WORDPRESS_USERNAME)")
	}
	if c.WordPress.Password == "" {
		issues = append(issues, "wordpress.password is required (WORDPRESS_PASSWORD)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.WordPress.Timeout != "" {
		if _, err := time.ParseDuration(c.WordPress.Timeout); err != nil {
			issues = append(issues, fmt.Sprintf("wordpress.timeout %q is not a duration", c.WordPress.Timeout))
		}
	}
	if c.SSE.HeartbeatInterval != "" {
		if _, err := time.ParseDuration(c.SSE.HeartbeatInterval); err != nil {
			issues = append(issues, fmt.Sprintf("sse.heartbeat_interval %q is not a duration", c.SSE.HeartbeatInterval))
		}
	}

	return issues
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies WORDPRESS_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("WORDPRESS_MCP_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("WORDPRESS_MCP_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if publicURL := os.Getenv("WORDPRESS_MCP_PUBLIC_URL"); publicURL != "" {
		config.Server.PublicURL = publicURL
	}
	if level := os.Getenv("WORDPRESS_MCP_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if wpURL := os.Getenv("WORDPRESS_URL"); wpURL != "" {
		config.WordPress.URL = wpURL
	}
	if username := os.Getenv("WORDPRESS_USERNAME"); username != "" {
		config.WordPress.Username = username
	}
	if password := os.Getenv("WORDPRESS_PASSWORD"); password != "" {
		config.WordPress.Password = password
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
