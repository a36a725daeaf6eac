/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

func newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <file.csv>",
		Short: "Store a CSV file in the frame catalog",
		Long: `Decode a CSV file and store the frame in the catalog under the data
directory. Prints the new frame id.

Example:
  tabula save players.csv --name players`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			df, err := readFrame(cmd, args[0])
			if err != nil {
				return err
			}
			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			defer catalog.Close()

			id, err := catalog.Save(name, df)
			if err != nil {
				return fmt.Errorf("failed to save frame: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id.String())
			return nil
		},
	}
	cmd.Flags().StringP("name", "n", "", "Frame name (default: input file name)")
	return cmd
}

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <id>",
		Short: "Render a stored frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ksuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid frame id %q: %w", args[0], err)
			}
			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			defer catalog.Close()

			df, err := catalog.Load(id)
			if err != nil {
				return err
			}
			return render(cmd, df)
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			defer catalog.Close()

			frames, err := catalog.List()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCOLUMNS\tROWS\tBYTES\tCREATED")
			for _, f := range frames {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
					f.ID, f.Name, f.Width, f.Height, f.Size, f.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a stored frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ksuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid frame id %q: %w", args[0], err)
			}
			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			defer catalog.Close()

			if err := catalog.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
}
