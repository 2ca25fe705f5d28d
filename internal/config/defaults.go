package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8000,
			Host: "0.0.0.0",
		},
		WordPress: WordPressConfig{
			Timeout: "30s",
		},
		SSE: SSEConfig{
			HeartbeatInterval: "15s",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console"},
			FilePath:   "logs/wordpress-mcp.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}
