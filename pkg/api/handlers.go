package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/index"
	"github.com/ssargent/tabula/pkg/logging"
	"github.com/ssargent/tabula/pkg/query"
	"github.com/ssargent/tabula/pkg/report"
	"github.com/ssargent/tabula/pkg/storage"
	"github.com/ssargent/tabula/pkg/val"
)

const defaultMaxUpload = 32 << 20

// Server holds the API server state
type Server struct {
	catalog FrameCatalog
	indexes *index.IndexManager
	engine  query.QueryEngine
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(catalog FrameCatalog, config ServerConfig) *Server {
	indexes := index.NewIndexManager()
	return &Server{
		catalog: catalog,
		indexes: indexes,
		engine:  query.NewSimpleQueryEngine(indexes),
		config:  config,
		metrics: NewMetrics(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleListFrames(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	frames, err := s.catalog.List()
	s.metrics.RecordFrameOperation("list", err == nil, time.Since(start))
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list frames: %v", err), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, frames)
}

// handleCreateFrame decodes a CSV request body and stores it under the
// name given by the "name" query parameter.
func (s *Server) handleCreateFrame(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := r.URL.Query().Get("name")
	if name == "" {
		sendError(w, "Query parameter name is required", http.StatusBadRequest)
		return
	}

	limit := s.config.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUpload
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		sendError(w, "Failed to read request body", http.StatusRequestEntityTooLarge)
		return
	}

	df, err := dataframe.ReadString(string(body))
	if err != nil {
		sendError(w, fmt.Sprintf("Invalid CSV: %v", err), http.StatusBadRequest)
		return
	}
	df.SetDisplayMode(s.config.Display)

	id, err := s.catalog.Save(name, df)
	s.metrics.RecordFrameOperation("save", err == nil, time.Since(start))
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to save frame: %v", err), http.StatusInternalServerError)
		return
	}

	info, err := s.catalog.Info(id)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to read frame info: %v", err), http.StatusInternalServerError)
		return
	}
	logging.WithFrame(id.String()).Info("frame uploaded", "name", name, "width", info.Width, "height", info.Height)
	sendCreated(w, info)
}

func (s *Server) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	id, df, ok := s.loadFrame(w, r)
	if !ok {
		return
	}
	info, err := s.catalog.Info(id)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to read frame info: %v", err), http.StatusInternalServerError)
		return
	}

	limit := df.Height()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			sendError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, limit)
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
	case "markdown", "html":
		sendTable(w, df, limit, format)
		return
	default:
		sendError(w, "Invalid format", http.StatusBadRequest)
		return
	}

	rows := make([][]val.Value, 0, limit)
	for i := 0; i < limit; i++ {
		row, _ := df.RowValues(i)
		rows = append(rows, row)
	}
	sendSuccess(w, FrameResponse{FrameInfo: *info, Headers: df.Headers(), Rows: rows})
}

// sendTable writes the first limit rows of df as a Markdown or HTML table.
func sendTable(w http.ResponseWriter, df *dataframe.DataFrame, limit int, format string) {
	rows := make([]int, limit)
	for i := range rows {
		rows[i] = i
	}
	head, err := query.Select(df, rows)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to select rows: %v", err), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	contentType := "text/markdown; charset=utf-8"
	if format == "html" {
		contentType = "text/html; charset=utf-8"
		err = report.WriteHTML(&buf, head)
	} else {
		err = report.WriteMarkdown(&buf, head)
	}
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to render frame: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDeleteFrame(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	err := s.catalog.Delete(id)
	s.metrics.RecordFrameOperation("delete", err == nil, time.Since(start))
	if err != nil {
		sendCatalogError(w, err)
		return
	}
	s.indexes.Invalidate(id.String())
	sendSuccess(w, map[string]string{"message": "Frame deleted successfully"})
}

func (s *Server) handleGetColumn(w http.ResponseWriter, r *http.Request) {
	_, df, ok := s.loadFrame(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	cells, found := df.Col(name)
	if !found {
		sendError(w, fmt.Sprintf("Column %q not found", name), http.StatusNotFound)
		return
	}

	values := make([]val.Value, len(cells))
	for i, c := range cells {
		values[i] = *c
	}
	kind, _ := df.ColumnKind(name)
	sendSuccess(w, ColumnResponse{Name: name, Kind: kind.String(), Values: values})
}

func (s *Server) handleGetRow(w http.ResponseWriter, r *http.Request) {
	_, df, ok := s.loadFrame(w, r)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		sendError(w, "Row index must be an integer", http.StatusBadRequest)
		return
	}
	row, found := df.Row(idx)
	if !found {
		sendError(w, fmt.Sprintf("Row %d out of range", idx), http.StatusNotFound)
		return
	}
	sendSuccess(w, row)
}

// handleQuery runs a single "column op literal" filter given in q.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	id, df, ok := s.loadFrame(w, r)
	if !ok {
		return
	}
	q, err := query.ParseFieldQuery(r.URL.Query().Get("q"))
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	frameID := id.String()
	indexed := false
	if q.Operator == "=" {
		if _, err := s.indexes.GetOrBuild(frameID, df, q.Field); err == nil {
			indexed = true
		}
	}

	it, err := s.engine.ExecuteQuery(r.Context(), frameID, df, q)
	if err != nil {
		switch {
		case errors.Is(err, query.ErrInvalidQuery):
			sendError(w, err.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, dataframe.ErrHeaderNotFound):
			sendError(w, err.Error(), http.StatusNotFound)
			return
		}
		sendError(w, fmt.Sprintf("Query failed: %v", err), http.StatusInternalServerError)
		return
	}
	defer it.Close()

	resp := QueryResponse{Query: q.String(), Indexed: indexed, Rows: []int{}, Values: [][]val.Value{}}
	for it.Next() {
		res := it.Result()
		resp.Rows = append(resp.Rows, res.Row)
		resp.Values = append(resp.Values, res.Values)
	}
	s.metrics.RecordQuery(indexed)
	sendSuccess(w, resp)
}

// updateCatalogStats refreshes the catalog gauges.
func (s *Server) updateCatalogStats() {
	frames, err := s.catalog.List()
	if err != nil {
		logging.Warn("failed to refresh catalog metrics", "error", err)
		return
	}
	var total int64
	for _, f := range frames {
		total += int64(f.Size)
	}
	s.metrics.UpdateCatalogStats(len(frames), total)
}

func parseID(w http.ResponseWriter, r *http.Request) (ksuid.KSUID, bool) {
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid frame id", http.StatusBadRequest)
		return ksuid.Nil, false
	}
	return id, true
}

func (s *Server) loadFrame(w http.ResponseWriter, r *http.Request) (ksuid.KSUID, *dataframe.DataFrame, bool) {
	start := time.Now()
	id, ok := parseID(w, r)
	if !ok {
		return ksuid.Nil, nil, false
	}
	df, err := s.catalog.Load(id)
	s.metrics.RecordFrameOperation("load", err == nil, time.Since(start))
	if err != nil {
		sendCatalogError(w, err)
		return ksuid.Nil, nil, false
	}
	return id, df, true
}

func sendCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrFrameNotFound) {
		sendError(w, "Frame not found", http.StatusNotFound)
		return
	}
	sendError(w, fmt.Sprintf("Catalog error: %v", err), http.StatusInternalServerError)
}
