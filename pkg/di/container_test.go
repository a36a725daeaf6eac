package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tabula/pkg/api"
	"github.com/ssargent/tabula/pkg/storage"
)

type stubFactory struct{}

func (stubFactory) CreateServerStarter() api.ServerStarter { return stubStarter{} }

type stubStarter struct{}

func (stubStarter) StartServer(context.Context, api.FrameCatalog, api.ServerConfig) error { return nil }

func TestContainer_Defaults(t *testing.T) {
	c := NewContainer()
	assert.IsType(t, &api.DefaultServerFactory{}, c.GetServerFactory())

	catalog, err := c.OpenCatalog(t.TempDir(), storage.Options{})
	require.NoError(t, err)
	assert.NoError(t, catalog.Close())
}

func TestContainer_Overrides(t *testing.T) {
	c := NewContainer()
	c.SetServerFactory(stubFactory{})
	assert.IsType(t, stubFactory{}, c.GetServerFactory())

	var opened string
	c.SetCatalogOpener(func(path string, opts storage.Options) (*storage.Catalog, error) {
		opened = path
		return storage.Open(path, storage.Options{InMemory: true})
	})
	catalog, err := c.OpenCatalog("/virtual", storage.Options{})
	require.NoError(t, err)
	defer catalog.Close()
	assert.Equal(t, "/virtual", opened)
}
