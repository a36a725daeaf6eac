/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ssargent/tabula/pkg/dataframe"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file.csv>",
		Short: "Render a CSV file as a table",
		Long: `Render a CSV file as an aligned table.

Examples:
  tabula show players.csv
  tabula show players.csv --schema player.go --type Player`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(cmd, args[0])
			if err != nil {
				return err
			}
			return render(cmd, df)
		},
	}
}

func newColCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "col <file.csv> <column>",
		Short: "Print one column, one cell per line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(cmd, args[0])
			if err != nil {
				return err
			}
			cells, ok := df.Col(args[1])
			if !ok {
				return fmt.Errorf("%w: %s", dataframe.ErrHeaderNotFound, args[1])
			}
			out := cmd.OutOrStdout()
			for _, c := range cells {
				fmt.Fprintln(out, c.Format(df.DisplayMode()))
			}
			return nil
		},
	}
}

func newRowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "row <file.csv> <index>",
		Short: "Print one row as header: value lines",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(cmd, args[0])
			if err != nil {
				return err
			}
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid row index %q", args[1])
			}
			row, ok := df.RowValues(idx)
			if !ok {
				return fmt.Errorf("row %d out of range [0, %d)", idx, df.Height())
			}
			out := cmd.OutOrStdout()
			for i, h := range df.Headers() {
				fmt.Fprintf(out, "%s: %s\n", h, row[i].Format(df.DisplayMode()))
			}
			return nil
		},
	}
}
