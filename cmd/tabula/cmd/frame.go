/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/gen"
	"github.com/ssargent/tabula/pkg/logging"
	"github.com/ssargent/tabula/pkg/storage"
	"github.com/ssargent/tabula/pkg/val"
)

// readFrame loads the CSV file at path, typed by --schema when given.
func readFrame(cmd *cobra.Command, path string) (*dataframe.DataFrame, error) {
	fields, err := schemaFields(cmd)
	if err != nil {
		return nil, err
	}
	display, err := val.ParseDisplayMode(settings.Decode.Display)
	if err != nil {
		return nil, err
	}

	var df *dataframe.DataFrame
	if fields == nil {
		df, err = dataframe.ReadCSV(path)
		if err != nil {
			return nil, err
		}
		if cmd.Flags().Changed("display") {
			df.SetDisplayMode(display)
		}
	} else {
		opts := []dataframe.Option{}
		if settings.Decode.ExactTypes {
			opts = append(opts, dataframe.WithExactTypes())
		}
		if cmd.Flags().Changed("display") {
			opts = append(opts, dataframe.WithDisplayMode(display))
		}
		df, err = dataframe.ReadCSVAs(path, fields, opts...)
		if err != nil {
			return nil, err
		}
	}
	logging.Debug("frame loaded", "path", path, "width", df.Width(), "height", df.Height())
	return df, nil
}

// schemaFields resolves --schema and --type into column bindings. It
// returns nil when no schema was given.
func schemaFields(cmd *cobra.Command) ([]dataframe.Field, error) {
	path, _ := cmd.Flags().GetString("schema")
	if path == "" {
		return nil, nil
	}
	typeName, _ := cmd.Flags().GetString("type")

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	loader, err := gen.Resolve(gen.Config{
		Source:     string(src),
		SourceName: filepath.Base(path),
		Type:       typeName,
		Package:    "main",
		Exact:      settings.Decode.ExactTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	fields := make([]dataframe.Field, len(loader.Fields))
	for i, f := range loader.Fields {
		fields[i] = dataframe.Field{Name: f.Column, Type: f.Type}
	}
	return fields, nil
}

// openCatalog opens the frame catalog under the configured data dir.
func openCatalog() (*storage.Catalog, error) {
	if err := os.MkdirAll(settings.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	opts := storage.Options{Compress: settings.Storage.Compression == "zstd"}
	return container.OpenCatalog(filepath.Join(settings.DataDir, "catalog"), opts)
}

func render(cmd *cobra.Command, df *dataframe.DataFrame) error {
	return df.Render(cmd.OutOrStdout())
}
