/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/tabula/pkg/api"
	"github.com/ssargent/tabula/pkg/val"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the frame catalog over HTTP",
		Long: `Start the tabula REST API over the frame catalog.

Routes are under /api/v1 and require the X-API-Key header when an API key
is configured. Prometheus metrics are served at /metrics.

Examples:
  tabula serve
  tabula serve --port 9000 --bind 0.0.0.0 --api-key mysecretkey`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				settings.Server.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("bind") {
				settings.Server.Bind, _ = cmd.Flags().GetString("bind")
			}
			if cmd.Flags().Changed("api-key") {
				settings.Server.APIKey, _ = cmd.Flags().GetString("api-key")
			}
			display, err := val.ParseDisplayMode(settings.Decode.Display)
			if err != nil {
				return err
			}

			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			defer catalog.Close()

			if settings.Server.APIKey == "" {
				cmd.PrintErrln("Warning: no API key configured; the API is unauthenticated")
			}
			cmd.Printf("Serving %s on %s:%d\n", settings.DataDir, settings.Server.Bind, settings.Server.Port)

			starter := container.GetServerFactory().CreateServerStarter()
			err = starter.StartServer(cmd.Context(), catalog, api.ServerConfig{
				Port:    settings.Server.Port,
				Bind:    settings.Server.Bind,
				APIKey:  settings.Server.APIKey,
				Display: display,
			})
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	cmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	cmd.Flags().String("api-key", "", "API key for authentication (default: from config)")
	return cmd
}
