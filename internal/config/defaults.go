package config

import (
	"os"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			Addr: ":8080",
		},
		Database: DatabaseConfig{
			Path: "~/.kitchenhelper/kitchenhelper.db",
		},
	}
}

// WriteDefault writes the default global configuration to a file
func WriteDefault(path string) error {
	content := `# KitchenHelper Configuration
version: "1"

# HTTP API server
server:
  addr: ":8080"

# SQLite storage
database:
  path: ~/.kitchenhelper/kitchenhelper.db
`
	return os.WriteFile(path, []byte(content), 0644)
}
