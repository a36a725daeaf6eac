package api

import (
	"github.com/segmentio/ksuid"

	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/storage"
	"github.com/ssargent/tabula/pkg/val"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string // empty disables authentication
	// MaxUploadBytes caps POST /frames bodies; zero means 32 MiB.
	MaxUploadBytes int64
	// Display is the display mode given to uploaded frames.
	Display val.DisplayMode
}

// FrameCatalog defines the frame store operations the API needs
type FrameCatalog interface {
	Save(name string, df *dataframe.DataFrame) (ksuid.KSUID, error)
	Load(id ksuid.KSUID) (*dataframe.DataFrame, error)
	Info(id ksuid.KSUID) (*storage.FrameInfo, error)
	Delete(id ksuid.KSUID) error
	List() ([]storage.FrameInfo, error)
}

// FrameResponse is a stored frame with its rows
type FrameResponse struct {
	storage.FrameInfo
	Headers []string      `json:"headers"`
	Rows    [][]val.Value `json:"rows"`
}

// ColumnResponse is a single column of a frame
type ColumnResponse struct {
	Name   string      `json:"name"`
	Kind   string      `json:"kind"`
	Values []val.Value `json:"values"`
}

// QueryResponse holds the rows matched by a field query
type QueryResponse struct {
	Query   string        `json:"query"`
	Indexed bool          `json:"indexed"`
	Rows    []int         `json:"rows"`
	Values  [][]val.Value `json:"values"`
}
