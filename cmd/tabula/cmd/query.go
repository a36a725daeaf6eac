/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/tabula/pkg/query"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <file.csv> <condition>...",
		Short: "Render the rows matching every condition",
		Long: `Render the rows of a CSV file that satisfy every condition. A condition is
<column><op><literal> with op one of =, !=, >, <, >=, <=. The literal is
read as the type of each compared cell; cells it cannot be read as never
match.

Examples:
  tabula query players.csv 'goals>=10'
  tabula query players.csv 'nationality=Argentine' 'xg<70'
  tabula query players.csv 'goals>5' --count`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			countOnly, _ := cmd.Flags().GetBool("count")

			queries, err := parseQueries(args[1:])
			if err != nil {
				return err
			}

			df, err := readFrame(cmd, args[0])
			if err != nil {
				return err
			}
			rows, err := query.Execute(df, queries...)
			if err != nil {
				return err
			}
			if countOnly {
				fmt.Fprintln(cmd.OutOrStdout(), len(rows))
				return nil
			}
			filtered, err := query.Select(df, rows)
			if err != nil {
				return err
			}
			return render(cmd, filtered)
		},
	}
	cmd.Flags().Bool("count", false, "Print only the number of matching rows")
	return cmd
}
