package app

import (
	"context"

	"github.com/dshills/scriptsense/internal/catalog"
	"github.com/dshills/scriptsense/internal/config"
	"github.com/dshills/scriptsense/internal/session"
	"github.com/dshills/scriptsense/internal/textmodel"
	"github.com/dshills/scriptsense/internal/workspace"
)

// Compile-time interface checks.
var (
	_ session.Persister                                      = (*storePersister)(nil)
	_ session.Surface[*textmodel.Model, textmodel.ViewState] = (*textmodel.Editor)(nil)
)

// storePersister adapts workspace.Store to session.Persister.
type storePersister struct {
	store *workspace.Store
}

func (p *storePersister) SaveDocument(ctx context.Context, workspaceID string, doc session.Document) error {
	return p.store.SaveDocument(ctx, workspaceID, tabFromDocument(doc))
}

func tabFromDocument(doc session.Document) workspace.Tab {
	return workspace.Tab{
		ID:       doc.ID,
		Title:    doc.Title,
		Content:  doc.Content,
		Language: doc.Language,
	}
}

func documentFromTab(tab workspace.Tab) session.Document {
	return session.Document{
		ID:       tab.ID,
		Title:    tab.Title,
		Content:  tab.Content,
		Language: tab.Language,
	}
}

// CatalogFetcher merges the configured catalog sources in the order
// builtin, file, HTTP. It returns nil when no source is configured.
func CatalogFetcher(cfg config.Config, onError func(error)) catalog.Fetcher {
	var fetchers []catalog.Fetcher
	if cfg.Catalog.Builtin {
		fetchers = append(fetchers, catalog.NewLuaFetcher())
	}
	if cfg.Catalog.Path != "" {
		fetchers = append(fetchers, catalog.NewFileFetcher(cfg.Catalog.Path))
	}
	if cfg.Catalog.URL != "" {
		fetchers = append(fetchers, catalog.NewHTTPFetcher(cfg.Catalog.URL, cfg.CatalogTimeout()))
	}
	switch len(fetchers) {
	case 0:
		return nil
	case 1:
		return fetchers[0]
	default:
		return catalog.Merge(onError, fetchers...)
	}
}
