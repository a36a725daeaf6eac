/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/tabula/pkg/logging"
	"github.com/ssargent/tabula/pkg/transform"
)

func newMutateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mutate <file.csv>",
		Short: "Rewrite a column with a Go expression",
		Long: `Rewrite every cell of a column with a Go expression and render the result.
The expression sees the cell as v; fmt, math, strconv and strings are
available. The result's Go type becomes the cell's new type.

Examples:
  tabula mutate players.csv --column goals --expr 'v * 2'
  tabula mutate players.csv --column name --expr 'strings.ToUpper(v)'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			column, _ := cmd.Flags().GetString("column")
			expr, _ := cmd.Flags().GetString("expr")

			prog, err := transform.Compile(expr)
			if err != nil {
				return err
			}
			df, err := readFrame(cmd, args[0])
			if err != nil {
				return err
			}
			if err := df.Loc(column, prog.Apply); err != nil {
				return err
			}
			logging.WithColumn(column).Debug("column rewritten", "expr", prog.String())
			return render(cmd, df)
		},
	}
	cmd.Flags().StringP("column", "c", "", "Column to rewrite (required)")
	cmd.Flags().StringP("expr", "e", "", "Go expression over v (required)")
	_ = cmd.MarkFlagRequired("column")
	_ = cmd.MarkFlagRequired("expr")
	return cmd
}
