/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/tabula/pkg/config"
	"github.com/ssargent/tabula/pkg/di"
	"github.com/ssargent/tabula/pkg/logging"
)

var container *di.Container

// SetContainer sets the dependency injection container
func SetContainer(c *di.Container) {
	container = c
}

// settings is the configuration resolved by the root command before any
// subcommand runs.
var settings = config.DefaultConfig()

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tabula",
		Short: "tabula - typed CSV tables",
		Long: `tabula loads CSV files into typed tables. Without a schema every cell is
inferred as an integer, a float or a string; with --schema the columns are
decoded as the fields of a Go struct declaration.

Tables can be inspected, filtered, transformed, exported to Parquet, Arrow
or SQLite, stored in a local catalog and served over HTTP.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadSettings,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: "+config.GetDefaultConfigPath()+" when present)")
	flags.StringP("data-dir", "d", "", "Data directory for the frame catalog")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("schema", "", "Go file declaring the struct that types the CSV columns")
	flags.StringP("type", "t", "", "Struct type in --schema (default: first struct)")
	flags.Bool("exact", false, "Decode schema fields into width- and sign-exact values")
	flags.String("display", "", "String rendering: raw or quoted")

	rootCmd.AddCommand(
		newShowCmd(),
		newColCmd(),
		newRowCmd(),
		newSchemaCmd(),
		newMutateCmd(),
		newQueryCmd(),
		newExportCmd(),
		newSaveCmd(),
		newLoadCmd(),
		newListCmd(),
		newDeleteCmd(),
		newServeCmd(),
		newWatchCmd(),
		newReplCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once.
func Execute() {
	if container == nil {
		container = di.NewContainer()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadSettings reads the config file, applies flag overrides and
// initializes logging.
func loadSettings(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	explicit := configPath != ""
	if !explicit {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if explicit || config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if display, _ := cmd.Flags().GetString("display"); display != "" {
		cfg.Decode.Display = display
	}
	if exact, _ := cmd.Flags().GetBool("exact"); exact {
		cfg.Decode.ExactTypes = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	settings = cfg

	return logging.Init(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Format: cfg.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	})
}
