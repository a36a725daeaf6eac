/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/tabula/pkg/arrowconv"
	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/logging"
	"github.com/ssargent/tabula/pkg/report"
	"github.com/ssargent/tabula/pkg/sqlexport"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Export a CSV file to Parquet, Arrow, Markdown, HTML or a SQL table",
		Long: `Export a CSV file, typed by --schema when given, to another format.

Formats:
  parquet   Snappy-compressed Parquet file
  arrow     Arrow IPC file
  markdown  GitHub-flavored Markdown table
  html      HTML table
  sqlite    table in a SQLite database file
  postgres  table in a PostgreSQL database, --out is the connection string
  mysql     table in a MySQL database, --out is the DSN

SQL tables are replaced if they exist.

Examples:
  tabula export players.csv --format parquet --out players.parquet
  tabula export players.csv --format sqlite --out stats.db --table players
  tabula export players.csv --format postgres --out 'postgres://localhost/stats?sslmode=disable'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")
			table, _ := cmd.Flags().GetString("table")

			df, err := readFrame(cmd, args[0])
			if err != nil {
				return err
			}

			switch strings.ToLower(format) {
			case "parquet":
				err = arrowconv.WriteParquet(df, out)
			case "arrow":
				err = arrowconv.WriteIPC(df, out)
			case "markdown", "md":
				err = writeFile(out, func(w io.Writer) error { return report.WriteMarkdown(w, df) })
			case "html":
				err = writeFile(out, func(w io.Writer) error { return report.WriteHTML(w, df) })
			case "sqlite", "postgres", "mysql":
				dialect, _ := sqlexport.ParseDialect(format)
				if table == "" {
					table = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				}
				err = exportSQL(cmd, dialect, out, table, df)
			default:
				return fmt.Errorf("unknown export format %q (want parquet, arrow, markdown, html, sqlite, postgres or mysql)", format)
			}
			if err != nil {
				return err
			}
			logging.Info("frame exported", "format", format, "out", out, "rows", df.Height())
			return nil
		},
	}
	cmd.Flags().StringP("format", "f", "parquet", "Output format: parquet, arrow, markdown, html, sqlite, postgres or mysql")
	cmd.Flags().StringP("out", "o", "", "Output path or database DSN (required)")
	cmd.Flags().String("table", "", "SQL table name (default: input file name)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func exportSQL(cmd *cobra.Command, dialect sqlexport.Dialect, dsn, table string, df *dataframe.DataFrame) error {
	db, err := sql.Open(dialect.Driver(), dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	defer db.Close()
	return sqlexport.Export(cmd.Context(), db, table, df, sqlexport.WithDialect(dialect))
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
