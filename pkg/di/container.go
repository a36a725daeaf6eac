// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/tabula/pkg/api" //nolint:depguard
	"github.com/ssargent/tabula/pkg/storage"
)

// CatalogOpener opens the frame catalog at a path
type CatalogOpener func(path string, opts storage.Options) (*storage.Catalog, error)

// Container holds all the dependencies for the application
type Container struct {
	serverFactory api.ServerFactory
	openCatalog   CatalogOpener
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		serverFactory: api.NewServerFactory(),
		openCatalog:   storage.Open,
	}
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// OpenCatalog opens the frame catalog through the configured opener
func (c *Container) OpenCatalog(path string, opts storage.Options) (*storage.Catalog, error) {
	return c.openCatalog(path, opts)
}

// SetCatalogOpener allows overriding how the catalog is opened (for testing)
func (c *Container) SetCatalogOpener(open CatalogOpener) {
	c.openCatalog = open
}
