package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/PrinceLenny001/KitchenHelper-sub000/internal/web"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the KitchenHelper API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			engine, err := openEngine(cfg)
			if err != nil {
				return err
			}
			defer engine.Close()

			log.Printf("Starting API server on %s (db: %s)", cfg.Server.Addr, cfg.Database.Path)
			server := web.NewServer(engine)
			return server.Run(cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}
