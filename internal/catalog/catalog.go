// Package catalog holds the library of built-in symbols offered as
// completions. The catalog is loaded once, shared read-only by every
// document, and never mutated after the load succeeds.
package catalog

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dshills/scriptsense/internal/logging"
	"github.com/dshills/scriptsense/internal/symbol"
)

// Fetcher retrieves catalog symbols from some source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]symbol.Symbol, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]symbol.Symbol, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context) ([]symbol.Symbol, error) {
	return f(ctx)
}

// Catalog is a lazily loaded, immutable symbol list.
type Catalog struct {
	fetcher Fetcher
	logger  *logging.Logger
	group   singleflight.Group

	mu      sync.RWMutex
	symbols []symbol.Symbol
	loaded  bool
	onLoad  func(n int)
	onError func(err error)
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLoadHandler sets a callback invoked once the catalog has loaded.
func WithLoadHandler(fn func(n int)) Option {
	return func(c *Catalog) {
		c.onLoad = fn
	}
}

// WithErrorHandler sets a callback invoked when a load fails.
func WithErrorHandler(fn func(err error)) Option {
	return func(c *Catalog) {
		c.onError = fn
	}
}

// New creates an unloaded catalog backed by fetcher.
func New(fetcher Fetcher, opts ...Option) *Catalog {
	c := &Catalog{fetcher: fetcher, logger: logging.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewStatic creates a catalog that is already loaded with symbols.
func NewStatic(symbols []symbol.Symbol) *Catalog {
	c := New(nil)
	c.symbols = withOrigin(symbols)
	c.loaded = true
	return c
}

// Loaded reports whether a load has succeeded.
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Symbols returns the loaded symbols, or nil before the first successful
// load. The returned slice must not be modified.
func (c *Catalog) Symbols() []symbol.Symbol {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.symbols[:len(c.symbols):len(c.symbols)]
}

// Len returns the number of loaded symbols.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.symbols)
}

// Load fetches the catalog unless it is already loaded. Concurrent calls
// share a single fetch. A failed load leaves the catalog empty so a later
// call retries.
func (c *Catalog) Load(ctx context.Context) error {
	if c.Loaded() {
		return nil
	}
	if c.fetcher == nil {
		return ErrNoFetcher
	}

	_, err, _ := c.group.Do("load", func() (any, error) {
		if c.Loaded() {
			return nil, nil
		}
		syms, err := c.fetcher.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		syms = withOrigin(syms)

		c.mu.Lock()
		c.symbols = syms
		c.loaded = true
		c.mu.Unlock()

		c.logger.Debug("catalog loaded with %d symbols", len(syms))
		if c.onLoad != nil {
			c.onLoad(len(syms))
		}
		return nil, nil
	})
	if err != nil {
		c.logger.Warn("catalog load failed: %v", err)
		if c.onError != nil {
			c.onError(err)
		}
	}
	return err
}

// LoadAsync starts Load in the background. The returned channel receives
// the result and is then closed.
func (c *Catalog) LoadAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- c.Load(ctx)
		close(done)
	}()
	return done
}

// ByKind returns the loaded symbols of the given kind.
func (c *Catalog) ByKind(kind symbol.Kind) []symbol.Symbol {
	var out []symbol.Symbol
	for _, s := range c.Symbols() {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

func withOrigin(in []symbol.Symbol) []symbol.Symbol {
	out := make([]symbol.Symbol, len(in))
	for i, s := range in {
		s.Origin = symbol.OriginCatalog
		out[i] = s
	}
	return out
}
