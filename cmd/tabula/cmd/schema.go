/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/tabula/pkg/schema"
	"github.com/ssargent/tabula/pkg/val"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema <file.go>",
		Short: "Print the type declarations of a Go file",
		Long: `Print each type declaration of a Go source file with its visibility,
type parameters and, for structs, the field list with the CSV column each
field binds to and whether tabula can decode its type.

Examples:
  tabula schema player.go
  tabula schema player.go --type Player`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			typeName, _ := cmd.Flags().GetString("type")

			var decls []*schema.Schema
			if typeName != "" {
				s, err := schema.ExtractType(string(src), typeName)
				if err != nil {
					return err
				}
				decls = []*schema.Schema{s}
			} else if decls, err = schema.ExtractAll(string(src)); err != nil {
				return err
			}

			supported := val.NormalizedKind
			if settings.Decode.ExactTypes {
				supported = val.DeclaredKind
			}

			out := cmd.OutOrStdout()
			for i, s := range decls {
				if i > 0 {
					fmt.Fprintln(out)
				}
				header := fmt.Sprintf("type %s (%s)", s.Name, s.Visibility)
				if s.Generics != nil {
					header = fmt.Sprintf("type %s[%s] (%s)", s.Name, s.TypeParams(), s.Visibility)
				}
				fmt.Fprintln(out, header)
				if !s.IsStruct {
					continue
				}

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "  FIELD\tTYPE\tCOLUMN\tDECODES AS")
				for _, f := range s.Fields {
					as := "unsupported"
					if k, ok := supported(f.Type); ok {
						as = k.String()
					}
					fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", f.Name, f.Type, f.Column, as)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return cmd
}
