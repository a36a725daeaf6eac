/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/query"
	"github.com/ssargent/tabula/pkg/transform"
)

const replPrompt = "tabula> "

var replCommands = []string{"show", "cols", "col", "row", "where", "count", "mutate", "reset", "help", "exit", "quit"}

const replHelp = `Commands:
  show                     render the current frame
  cols                     list columns with their kinds
  col <name>               print one column
  row <index>              print one row
  where <cond>...          keep only rows matching every condition
  count <cond>...          count matching rows
  mutate <column> <expr>   rewrite a column with a Go expression over v
  reset                    reload the file, dropping filters and mutations
  exit                     leave (also quit or Ctrl+D)
`

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl <file.csv>",
		Short: "Explore a CSV file interactively",
		Long: `Load a CSV file and open an interactive prompt with line editing, history
and tab completion of commands and column names. Type 'help' at the prompt
for the command list.

Example:
  tabula repl players.csv --schema player.go`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			s, err := newSession(cmd.OutOrStdout(), func() (*dataframe.DataFrame, error) {
				return readFrame(cmd, path)
			})
			if err != nil {
				return err
			}
			return s.run()
		},
	}
}

// session holds the frame a prompt works on.
type session struct {
	load func() (*dataframe.DataFrame, error)
	df   *dataframe.DataFrame
	out  io.Writer
}

func newSession(out io.Writer, load func() (*dataframe.DataFrame, error)) (*session, error) {
	df, err := load()
	if err != nil {
		return nil, err
	}
	return &session{load: load, df: df, out: out}, nil
}

func (s *session) run() error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(s.complete)

	historyFile := filepath.Join(os.TempDir(), ".tabula_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(s.out, "%d rows, %d columns. Type 'help' for commands.\n", s.df.Height(), s.df.Width())
	for {
		input, err := line.Prompt(replPrompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		more, err := s.exec(input)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if !more {
			return nil
		}
	}
}

// exec runs one input line. It returns false when the session should end.
func (s *session) exec(input string) (bool, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(input), " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch name {
	case "exit", "quit":
		return false, nil

	case "help":
		fmt.Fprint(s.out, replHelp)

	case "show":
		return true, s.df.Render(s.out)

	case "cols":
		for _, h := range s.df.Headers() {
			k, _ := s.df.ColumnKind(h)
			fmt.Fprintf(s.out, "%s\t%s\n", h, k)
		}

	case "col":
		if len(args) != 1 {
			return true, errors.New("usage: col <name>")
		}
		cells, ok := s.df.Col(args[0])
		if !ok {
			return true, fmt.Errorf("%w: %s", dataframe.ErrHeaderNotFound, args[0])
		}
		for _, c := range cells {
			fmt.Fprintln(s.out, c.Format(s.df.DisplayMode()))
		}

	case "row":
		if len(args) != 1 {
			return true, errors.New("usage: row <index>")
		}
		idx, err := strconv.Atoi(args[0])
		if err != nil {
			return true, fmt.Errorf("invalid row index %q", args[0])
		}
		row, ok := s.df.RowValues(idx)
		if !ok {
			return true, fmt.Errorf("row %d out of range [0, %d)", idx, s.df.Height())
		}
		for i, h := range s.df.Headers() {
			fmt.Fprintf(s.out, "%s: %s\n", h, row[i].Format(s.df.DisplayMode()))
		}

	case "where", "count":
		queries, err := parseQueries(args)
		if err != nil {
			return true, err
		}
		if name == "count" {
			rows, err := query.Execute(s.df, queries...)
			if err != nil {
				return true, err
			}
			fmt.Fprintln(s.out, len(rows))
			return true, nil
		}
		filtered, err := query.Filter(s.df, queries...)
		if err != nil {
			return true, err
		}
		s.df = filtered
		fmt.Fprintf(s.out, "%d rows\n", s.df.Height())

	case "mutate":
		column, expr, _ := strings.Cut(rest, " ")
		if column == "" || strings.TrimSpace(expr) == "" {
			return true, errors.New("usage: mutate <column> <expr>")
		}
		prog, err := transform.Compile(expr)
		if err != nil {
			return true, err
		}
		if err := s.df.Loc(column, prog.Apply); err != nil {
			return true, err
		}

	case "reset":
		df, err := s.load()
		if err != nil {
			return true, err
		}
		s.df = df
		fmt.Fprintf(s.out, "%d rows\n", s.df.Height())

	default:
		return true, fmt.Errorf("unknown command %q, type 'help'", name)
	}
	return true, nil
}

// complete offers command names for the first word and column names
// after it.
func (s *session) complete(line string) []string {
	i := strings.LastIndex(line, " ")
	head, word := line[:i+1], line[i+1:]

	candidates := replCommands
	if i >= 0 {
		candidates = s.df.Headers()
	}
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, word) {
			out = append(out, head+c)
		}
	}
	return out
}

func parseQueries(exprs []string) ([]query.FieldQuery, error) {
	if len(exprs) == 0 {
		return nil, errors.New("at least one condition is required")
	}
	queries := make([]query.FieldQuery, 0, len(exprs))
	for _, expr := range exprs {
		q, err := query.ParseFieldQuery(expr)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, nil
}
