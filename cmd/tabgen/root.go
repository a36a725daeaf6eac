/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/tabula/pkg/gen"
	"github.com/ssargent/tabula/pkg/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tabgen [file.go]",
		Short: "Generate typed CSV loaders for Go structs",
		Long: `tabgen reads a Go source file, extracts a struct declaration and writes
a loader file with Read<T>CSV and Read<T>String functions that decode CSV
input into a DataFrame typed by the struct's fields.

Run it from a go:generate directive; the file defaults to $GOFILE:

  //go:generate go run github.com/ssargent/tabula/cmd/tabgen --type Player`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runGenerate,
	}

	cmd.Flags().StringP("type", "t", "", "Struct type to generate for (default: first struct in the file)")
	cmd.Flags().StringP("output", "o", "", "Output file (default: <type>_frame.go next to the input)")
	cmd.Flags().String("package", "", "Package name override (default: $GOPACKAGE or the file's package clause)")
	cmd.Flags().Bool("exact", false, "Decode fields into width- and sign-exact values")
	cmd.Flags().Bool("stdout", false, "Write the loader to stdout instead of a file")
	cmd.Flags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	typeName, _ := cmd.Flags().GetString("type")
	output, _ := cmd.Flags().GetString("output")
	pkg, _ := cmd.Flags().GetString("package")
	exact, _ := cmd.Flags().GetBool("exact")
	toStdout, _ := cmd.Flags().GetBool("stdout")
	level, _ := cmd.Flags().GetString("log-level")

	if err := logging.Init(logging.Config{Level: logging.ParseLevel(level), Writer: cmd.ErrOrStderr()}); err != nil {
		return err
	}
	defer logging.Close()

	input := os.Getenv("GOFILE")
	if len(args) == 1 {
		input = args[0]
	}
	if input == "" {
		return fmt.Errorf("no input file: pass one or run from go:generate")
	}
	if pkg == "" {
		pkg = os.Getenv("GOPACKAGE")
	}

	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}

	cfg := gen.Config{
		Source:     string(src),
		SourceName: filepath.Base(input),
		Type:       typeName,
		Package:    pkg,
		Exact:      exact,
	}
	loader, err := gen.Resolve(cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	cfg.Type = loader.TypeName

	code, err := gen.Generate(cfg)
	if err != nil {
		return err
	}

	if toStdout {
		_, err = cmd.OutOrStdout().Write(code)
		return err
	}
	if output == "" {
		output = filepath.Join(filepath.Dir(input), gen.OutputName(loader.TypeName))
	}
	if err := os.WriteFile(output, code, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	logging.Info("loader written", "type", loader.TypeName, "fields", len(loader.Fields), "output", output)
	return nil
}
