package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PrinceLenny001/KitchenHelper-sub000/internal/config"
	"github.com/PrinceLenny001/KitchenHelper-sub000/internal/core"
	"github.com/PrinceLenny001/KitchenHelper-sub000/internal/storage"
)

// loadConfig resolves configuration from the --config flag or the standard
// discovery paths.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// openEngine opens storage at the configured path and wraps it in an engine
func openEngine(cfg *config.Config) (*core.Engine, error) {
	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return core.NewEngine(store, core.NewClock()), nil
}
