/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/logging"
)

// watchDebounce lets a burst of writes settle before the file is re-read.
const watchDebounce = 100 * time.Millisecond

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file.csv>",
		Short: "Re-render a CSV file whenever it changes",
		Long: `Render a CSV file, then render it again every time it is written, until
interrupted. Decode errors are reported and watching continues.

Example:
  tabula watch players.csv --schema player.go`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return watchFile(cmd.Context(), path, cmd.OutOrStdout(), func() (*dataframe.DataFrame, error) {
				return readFrame(cmd, path)
			})
		},
	}
}

// watchFile renders load's frame to out once and again after every change
// to path, until ctx is cancelled. The parent directory is watched so
// editors that replace the file on save are followed.
func watchFile(ctx context.Context, path string, out io.Writer, load func() (*dataframe.DataFrame, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	show := func() {
		df, err := load()
		if err != nil {
			logging.Error("failed to load frame", "path", path, "error", err)
			return
		}
		fmt.Fprintf(out, "%s (%s)\n", path, time.Now().Format(time.TimeOnly))
		if err := df.Render(out); err != nil {
			logging.Error("failed to render frame", "path", path, "error", err)
		}
	}
	show()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logging.Debug("file changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(watchDebounce)

		case <-timer.C:
			show()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watcher error", "error", err)
		}
	}
}
