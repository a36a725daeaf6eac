package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tabula/pkg/api"
	"github.com/ssargent/tabula/pkg/arrowconv"
	"github.com/ssargent/tabula/pkg/config"
	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/di"
)

const playersCSV = `name,nationality,xg,goals
Lionel Messi,Argentine,66.66,66
C. Ronaldo,Portugal,-0.69,3
Darwin Nunez,Uruguay,69.69,6969
`

const playerGo = "package players\n\n" +
	"type Player struct {\n" +
	"\tName        string  `csv:\"name\"`\n" +
	"\tNationality string  `csv:\"nationality\"`\n" +
	"\tXG          float64 `csv:\"xg\"`\n" +
	"\tGoals       uint    `csv:\"goals\"`\n" +
	"}\n"

// fixture writes the sample CSV and schema into a fresh directory and
// isolates the default config path under it.
func fixture(t *testing.T) (dir, csvPath, goPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("HOME", dir)

	csvPath = filepath.Join(dir, "players.csv")
	goPath = filepath.Join(dir, "player.go")
	require.NoError(t, os.WriteFile(csvPath, []byte(playersCSV), 0o644))
	require.NoError(t, os.WriteFile(goPath, []byte(playerGo), 0o644))

	SetContainer(di.NewContainer())
	return dir, csvPath, goPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestShow(t *testing.T) {
	_, csvPath, goPath := fixture(t)

	out, err := run(t, "show", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "| Lionel Messi ")
	assert.Contains(t, out, "| 6969 ")

	out, err = run(t, "show", csvPath, "--schema", goPath, "--type", "Player")
	require.NoError(t, err)
	assert.Contains(t, out, `| "Lionel Messi" `)

	out, err = run(t, "show", csvPath, "--schema", goPath, "--display", "raw")
	require.NoError(t, err)
	assert.NotContains(t, out, `"Lionel Messi"`)
}

func TestShow_Errors(t *testing.T) {
	dir, _, goPath := fixture(t)

	ragged := filepath.Join(dir, "ragged.csv")
	require.NoError(t, os.WriteFile(ragged, []byte("a,b\n1\n"), 0o644))
	_, err := run(t, "show", ragged)
	assert.ErrorIs(t, err, dataframe.ErrRaggedRow)

	_, err = run(t, "show", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("name,nationality,xg,goals\nx,y,z,1\n"), 0o644))
	_, err = run(t, "show", bad, "--schema", goPath)
	assert.Error(t, err)
}

func TestColAndRow(t *testing.T) {
	_, csvPath, _ := fixture(t)

	out, err := run(t, "col", csvPath, "nationality")
	require.NoError(t, err)
	assert.Equal(t, "Argentine\nPortugal\nUruguay\n", out)

	_, err = run(t, "col", csvPath, "assists")
	assert.ErrorIs(t, err, dataframe.ErrHeaderNotFound)

	out, err = run(t, "row", csvPath, "1")
	require.NoError(t, err)
	assert.Equal(t, "name: C. Ronaldo\nnationality: Portugal\nxg: -0.69\ngoals: 3\n", out)

	_, err = run(t, "row", csvPath, "3")
	assert.Error(t, err)
	_, err = run(t, "row", csvPath, "x")
	assert.Error(t, err)
}

func TestSchema(t *testing.T) {
	_, _, goPath := fixture(t)

	out, err := run(t, "schema", goPath)
	require.NoError(t, err)
	assert.Contains(t, out, "type Player (public)")
	assert.Regexp(t, `XG\s+float64\s+xg\s+Float64`, out)
	assert.Regexp(t, `Goals\s+uint\s+goals\s+Usize`, out)

	out, err = run(t, "schema", goPath, "--exact")
	require.NoError(t, err)
	assert.Regexp(t, `Goals\s+uint\s+goals\s+Usize`, out)

	_, err = run(t, "schema", goPath, "--type", "Missing")
	assert.Error(t, err)
}

func TestMutate(t *testing.T) {
	_, csvPath, _ := fixture(t)

	out, err := run(t, "mutate", csvPath, "--column", "goals", "--expr", "v * 2")
	require.NoError(t, err)
	assert.Contains(t, out, "| 132 ")
	assert.Contains(t, out, "| 13938 ")

	_, err = run(t, "mutate", csvPath, "--column", "goals", "--expr", "v +")
	assert.Error(t, err)
}

func TestQuery(t *testing.T) {
	_, csvPath, _ := fixture(t)

	out, err := run(t, "query", csvPath, "goals>10", "--count")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = run(t, "query", csvPath, "goals>10", "nationality=Uruguay")
	require.NoError(t, err)
	assert.Contains(t, out, "Darwin Nunez")
	assert.NotContains(t, out, "Lionel Messi")

	_, err = run(t, "query", csvPath, "goals")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	dir, csvPath, goPath := fixture(t)

	parquetPath := filepath.Join(dir, "players.parquet")
	_, err := run(t, "export", csvPath, "--schema", goPath, "--format", "parquet", "--out", parquetPath)
	require.NoError(t, err)
	df, err := arrowconv.ReadParquet(context.Background(), parquetPath)
	require.NoError(t, err)
	assert.Equal(t, 3, df.Height())

	arrowPath := filepath.Join(dir, "players.arrow")
	_, err = run(t, "export", csvPath, "--format", "arrow", "--out", arrowPath)
	require.NoError(t, err)
	df, err = arrowconv.ReadIPC(arrowPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "nationality", "xg", "goals"}, df.Headers())

	dbPath := filepath.Join(dir, "stats.db")
	_, err = run(t, "export", csvPath, "--format", "sqlite", "--out", dbPath)
	require.NoError(t, err)
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM players WHERE goals > 10`).Scan(&count))
	assert.Equal(t, 2, count)

	mdPath := filepath.Join(dir, "players.md")
	_, err = run(t, "export", csvPath, "--format", "markdown", "--out", mdPath)
	require.NoError(t, err)
	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "| name | nationality | xg | goals |\n| --- | --- | ---: | ---: |\n")

	htmlPath := filepath.Join(dir, "players.html")
	_, err = run(t, "export", csvPath, "--format", "html", "--out", htmlPath)
	require.NoError(t, err)
	page, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<td>Lionel Messi</td>")

	_, err = run(t, "export", csvPath, "--format", "postgres",
		"--out", "postgres://127.0.0.1:1/stats?sslmode=disable&connect_timeout=1")
	assert.Error(t, err)

	_, err = run(t, "export", csvPath, "--format", "xml", "--out", filepath.Join(dir, "x"))
	assert.Error(t, err)
}

func TestCatalogCommands(t *testing.T) {
	dir, csvPath, _ := fixture(t)
	dataDir := filepath.Join(dir, "data")

	out, err := run(t, "save", csvPath, "--data-dir", dataDir)
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.Len(t, id, 27)

	out, err = run(t, "list", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "players")

	out, err = run(t, "load", id, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "| Darwin Nunez ")

	out, err = run(t, "delete", id, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted "+id)

	_, err = run(t, "load", id, "--data-dir", dataDir)
	assert.Error(t, err)
	_, err = run(t, "load", "nope", "--data-dir", dataDir)
	assert.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	dir, _, _ := fixture(t)
	configPath := filepath.Join(dir, "tabula.yaml")

	out, err := run(t, "config", "init", "--config", configPath, "--data-dir", "./frames", "--print-key")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration created")
	assert.Contains(t, out, "API Key: ")

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "./frames", cfg.DataDir)
	assert.Len(t, cfg.Server.APIKey, 64)

	out, err = run(t, "config", "init", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	out, err = run(t, "config", "show", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "data_dir: ./frames")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, cfg.Server.APIKey)
}

func TestInvalidConfig(t *testing.T) {
	dir, csvPath, _ := fixture(t)
	configPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("storage:\n  compression: lz4\n"), 0o600))

	_, err := run(t, "show", csvPath, "--config", configPath)
	assert.Error(t, err)

	_, err = run(t, "show", csvPath, "--display", "fancy")
	assert.Error(t, err)
}

type recordingFactory struct {
	mu     sync.Mutex
	config api.ServerConfig
	called bool
}

func (f *recordingFactory) CreateServerStarter() api.ServerStarter { return f }

func (f *recordingFactory) StartServer(ctx context.Context, catalog api.FrameCatalog, cfg api.ServerConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called = true
	f.config = cfg
	_, err := catalog.List()
	return err
}

func TestServe(t *testing.T) {
	dir, _, _ := fixture(t)

	factory := &recordingFactory{}
	c := di.NewContainer()
	c.SetServerFactory(factory)
	SetContainer(c)

	out, err := run(t, "serve", "--data-dir", filepath.Join(dir, "data"), "--port", "9100", "--api-key", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, ":9100")

	assert.True(t, factory.called)
	assert.Equal(t, 9100, factory.config.Port)
	assert.Equal(t, "127.0.0.1", factory.config.Bind)
	assert.Equal(t, "secret", factory.config.APIKey)
}

// syncBuffer is a bytes.Buffer safe for the watcher goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchFile(t *testing.T) {
	_, csvPath, _ := fixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, csvPath, &out, func() (*dataframe.DataFrame, error) {
			return dataframe.ReadCSV(csvPath)
		})
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Lionel Messi")
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(csvPath, []byte(playersCSV+"Bukayo Saka,England,9.5,12\n"), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Bukayo Saka")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
