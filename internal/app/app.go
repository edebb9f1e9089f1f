// Package app wires the document intelligence components behind one
// facade for a host editor: documents and their persistence, syntax
// markers, and the suggestion popup.
//
// The facade is driven from the host's event loop. Its methods must be
// called from a single goroutine; change callbacks run on that goroutine,
// except persistence and catalog notifications which may arrive from
// timer or loader goroutines.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/dshills/scriptsense/internal/catalog"
	"github.com/dshills/scriptsense/internal/config"
	"github.com/dshills/scriptsense/internal/debounce"
	"github.com/dshills/scriptsense/internal/diagnostic"
	"github.com/dshills/scriptsense/internal/logging"
	"github.com/dshills/scriptsense/internal/popup"
	"github.com/dshills/scriptsense/internal/session"
	"github.com/dshills/scriptsense/internal/suggest"
	"github.com/dshills/scriptsense/internal/textmodel"
	"github.com/dshills/scriptsense/internal/workspace"
)

// compactRows is the popup height in compact mode.
const compactRows = 4

// stateSaveDelay coalesces tab bar changes into one state.json write.
const stateSaveDelay = 500 * time.Millisecond

// Sessions is the document arena specialized to the in-process editor.
type Sessions = session.Manager[*textmodel.Model, textmodel.ViewState]

// Application is the host facade.
type Application struct {
	cfg       config.Config
	logger    *logging.Logger
	workspace string

	store    *workspace.Store
	catalog  *catalog.Catalog
	editor   *textmodel.Editor
	sessions *Sessions
	markers  *diagnostic.Service
	ranker   *suggest.Ranker
	popup    *popup.Controller

	stateSaver *debounce.Debouncer

	// subscriptions holds the content listener removers per document.
	subscriptions map[string]func()
	// accepting suppresses the suggestion refresh caused by applying an
	// accepted suggestion.
	accepting bool
	// external suppresses persistence of content read from disk.
	external bool

	onMarkers     func(docID string, markers []diagnostic.Marker)
	onSuggestions func(state popup.State)
	onNotify      func(n Notification)

	mu       sync.Mutex
	watcher  *workspace.Watcher
	shutdown bool
}

// Option configures an Application.
type Option func(*Application)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Application) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCatalog replaces the configured catalog sources.
func WithCatalog(c *catalog.Catalog) Option {
	return func(a *Application) {
		a.catalog = c
	}
}

// OnMarkersChanged sets the callback for marker set changes. An empty set
// means the document has no markers.
func OnMarkersChanged(fn func(docID string, markers []diagnostic.Marker)) Option {
	return func(a *Application) {
		a.onMarkers = fn
	}
}

// OnSuggestionsChanged sets the callback for popup state changes.
func OnSuggestionsChanged(fn func(state popup.State)) Option {
	return func(a *Application) {
		a.onSuggestions = fn
	}
}

// OnNotify sets the callback for non-fatal problems.
func OnNotify(fn func(n Notification)) Option {
	return func(a *Application) {
		a.onNotify = fn
	}
}

// New builds an application from cfg. Nothing is loaded until
// LoadWorkspace is called.
func New(cfg config.Config, opts ...Option) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	a := &Application{
		cfg:           cfg,
		logger:        logging.Nop(),
		workspace:     cfg.Persistence.Workspace,
		subscriptions: make(map[string]func()),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.bootstrap()
	return a, nil
}

// bootstrap builds the components in dependency order.
func (a *Application) bootstrap() {
	cfg := a.cfg

	// 1. Store
	a.store = workspace.NewStore(cfg.Persistence.Root,
		workspace.WithLogger(a.logger.WithComponent("workspace")))

	// 2. Catalog
	if a.catalog == nil {
		fetcher := CatalogFetcher(cfg, func(err error) {
			a.notify(Notification{Level: NotifyWarning, Source: "catalog", Message: "catalog source failed", Err: err})
		})
		if fetcher == nil {
			a.catalog = catalog.NewStatic(nil)
		} else {
			a.catalog = catalog.New(fetcher,
				catalog.WithLogger(a.logger.WithComponent("catalog")),
				catalog.WithErrorHandler(func(err error) {
					a.notify(Notification{Level: NotifyWarning, Source: "catalog", Message: "catalog unavailable, using local symbols", Err: err})
				}))
		}
	}

	// 3. Editing surface and sessions
	a.editor = textmodel.NewEditor()
	a.editor.OnCursorMoved(a.handleCursor)
	a.sessions = session.New[*textmodel.Model, textmodel.ViewState](
		a.editor,
		func(doc session.Document) *textmodel.Model { return textmodel.NewModel(doc.Content) },
		session.WithPersister(&storePersister{store: a.store}, a.workspace),
		session.WithPersistDelay(cfg.PersistDelay()),
		session.WithLogger(a.logger.WithComponent("session")),
		session.OnPersistError(func(docID string, err error) {
			a.notify(Notification{Level: NotifyError, Source: "persistence", DocumentID: docID, Message: "could not save document", Err: err})
		}),
	)

	// 4. Diagnostics
	a.markers = diagnostic.NewService(
		diagnostic.NewAnalyzer(
			diagnostic.WithLogger(a.logger.WithComponent("analyzer")),
			diagnostic.WithWarnings(cfg.Diagnostics.Warnings),
		),
		diagnostic.WithLanguage(cfg.Diagnostics.Language),
		diagnostic.WithServiceLogger(a.logger.WithComponent("diagnostics")),
		diagnostic.WithChangeHandler(func(docID string, markers []diagnostic.Marker) {
			if a.onMarkers != nil {
				a.onMarkers(docID, markers)
			}
		}),
	)
	a.markers.SetEnabled(cfg.Diagnostics.ShowMarkers)

	// 5. Suggestions
	a.ranker = suggest.NewRanker(a.catalog, suggest.WithLogger(a.logger.WithComponent("suggest")))
	acceptKey, _ := popup.ParseKey(cfg.Intellisense.AcceptKey)
	rows := popup.DefaultRows
	if cfg.Intellisense.CompactMode {
		rows = compactRows
	}
	a.popup = popup.NewController(
		popup.WithAcceptKey(acceptKey),
		popup.WithRows(rows),
		popup.WithChangeHandler(func(s popup.State) {
			if a.onSuggestions != nil {
				a.onSuggestions(s)
			}
		}),
	)
	a.popup.SetEnabled(cfg.Intellisense.Enabled)

	// 6. Session state writer
	a.stateSaver = debounce.New(stateSaveDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.SaveSessionState(ctx); err != nil {
			a.notify(Notification{Level: NotifyError, Source: "persistence", Message: "could not save tab state", Err: err})
		}
	})
}

// Config returns the configuration the application was built with.
func (a *Application) Config() config.Config {
	return a.cfg
}

// Editor returns the editing surface.
func (a *Application) Editor() *textmodel.Editor {
	return a.editor
}

// Store returns the workspace store.
func (a *Application) Store() *workspace.Store {
	return a.store
}

// Catalog returns the symbol catalog.
func (a *Application) Catalog() *catalog.Catalog {
	return a.catalog
}

// WorkspaceID returns the id of the open workspace.
func (a *Application) WorkspaceID() string {
	return a.workspace
}

func (a *Application) notify(n Notification) {
	switch n.Level {
	case NotifyError:
		a.logger.Error("%s", n)
	case NotifyWarning:
		a.logger.Warn("%s", n)
	default:
		a.logger.Info("%s", n)
	}
	if a.onNotify != nil {
		a.onNotify(n)
	}
}

func (a *Application) isShutdown() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.shutdown
}
