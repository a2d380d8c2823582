package config

// Config represents the full KitchenHelper configuration
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// Server configuration
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
}

// ServerConfig configures the HTTP API server
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// DatabaseConfig configures SQLite storage
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}
