// Package workspace stores documents on disk: one ".lua" file per
// document under <root>/<workspace>/tabs, plus a state.json recording the
// active document, the document order and the id of every title.
package workspace

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/scriptsense/internal/logging"
)

const stateFile = "state.json"

// Tab is a stored document.
type Tab struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// TabMetadata maps a document id to its title.
type TabMetadata struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SessionState is the persisted tab bar of a workspace.
type SessionState struct {
	ActiveTab   string
	TabOrder    []string
	TabMetadata []TabMetadata
}

// SearchResult is the first match of a query on one line of a document.
// Columns are 1-based byte columns; EndColumn is exclusive.
type SearchResult struct {
	TabID       string `json:"tab_id"`
	Title       string `json:"title"`
	Line        int    `json:"line"`
	LineContent string `json:"line_content"`
	Column      int    `json:"column"`
	EndColumn   int    `json:"end_column"`
}

// Store reads and writes workspaces under a root directory.
//
// Thread-safety: Store is safe for concurrent use.
type Store struct {
	root   string
	logger *logging.Logger

	mu      sync.Mutex
	written map[string][sha256.Size]byte
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a store rooted at root.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{
		root:    root,
		logger:  logging.Nop(),
		written: make(map[string][sha256.Size]byte),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the root directory.
func (s *Store) Root() string {
	return s.root
}

// TabsDir returns the directory holding the documents of workspaceID.
func (s *Store) TabsDir(workspaceID string) string {
	return filepath.Join(s.root, workspaceID, "tabs")
}

// Path returns the file that stores title in workspaceID.
func (s *Store) Path(workspaceID, title string) string {
	return filepath.Join(s.TabsDir(workspaceID), SanitizeTitle(title))
}

// LoadDocuments reads every ".lua" file of the workspace. Ids come from
// state.json when recorded, otherwise they are derived from the title.
// Documents follow the saved order; unknown ids go last. An empty
// workspace yields a single default document.
func (s *Store) LoadDocuments(ctx context.Context, workspaceID string) ([]Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state, err := s.readState(workspaceID)
	if err != nil {
		s.logger.Warn("ignoring session state of %s: %v", workspaceID, err)
		state = nil
	}

	entries, err := os.ReadDir(s.TabsDir(workspaceID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, opError("load", workspaceID, "", err)
	}

	var tabs []Tab
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Extension {
			continue
		}
		title := entry.Name()
		data, err := os.ReadFile(filepath.Join(s.TabsDir(workspaceID), title))
		if err != nil {
			s.logger.Warn("skipping %s: %v", title, err)
			continue
		}
		tabs = append(tabs, Tab{
			ID:       s.idFor(workspaceID, title, state),
			Title:    title,
			Content:  string(data),
			Language: "lua",
		})
	}

	if state != nil {
		rank := func(id string) int {
			if i := slices.Index(state.TabOrder, id); i >= 0 {
				return i
			}
			return len(state.TabOrder)
		}
		slices.SortStableFunc(tabs, func(a, b Tab) int {
			return rank(a.ID) - rank(b.ID)
		})
	}

	if len(tabs) == 0 {
		tabs = append(tabs, Tab{
			ID:       TabID(workspaceID, DefaultTitle),
			Title:    DefaultTitle,
			Content:  DefaultContent,
			Language: "lua",
		})
	}
	return tabs, nil
}

func (s *Store) idFor(workspaceID, title string, state *SessionState) string {
	if state != nil {
		for _, meta := range state.TabMetadata {
			if meta.Title == title {
				return meta.ID
			}
		}
	}
	return TabID(workspaceID, title)
}

// SaveDocument writes the content of tab to its file.
func (s *Store) SaveDocument(ctx context.Context, workspaceID string, tab Tab) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(workspaceID, tab.Title)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return opError("save", workspaceID, tab.Title, err)
	}

	s.remember(path, []byte(tab.Content))
	if err := os.WriteFile(path, []byte(tab.Content), 0o644); err != nil {
		s.forget(path)
		return opError("save", workspaceID, tab.Title, err)
	}
	return nil
}

// DeleteDocument removes the file of title. A missing file is not an error.
func (s *Store) DeleteDocument(ctx context.Context, workspaceID, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(workspaceID, title)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return opError("delete", workspaceID, title, err)
	}
	s.forget(path)
	return nil
}

// RenameDocument moves the file of oldTitle to newTitle.
func (s *Store) RenameDocument(ctx context.Context, workspaceID, oldTitle, newTitle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from := s.Path(workspaceID, oldTitle)
	to := s.Path(workspaceID, newTitle)

	if _, err := os.Stat(from); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return opError("rename", workspaceID, oldTitle, ErrSourceMissing)
		}
		return opError("rename", workspaceID, oldTitle, err)
	}
	if err := os.Rename(from, to); err != nil {
		return opError("rename", workspaceID, oldTitle, err)
	}

	s.mu.Lock()
	if sum, ok := s.written[from]; ok {
		s.written[to] = sum
		delete(s.written, from)
	}
	s.mu.Unlock()
	return nil
}

// LoadSessionState reads state.json. A workspace without one reports the
// default document as its only and active tab.
func (s *Store) LoadSessionState(ctx context.Context, workspaceID string) (SessionState, error) {
	if err := ctx.Err(); err != nil {
		return SessionState{}, err
	}
	state, err := s.readState(workspaceID)
	if err != nil {
		return SessionState{}, opError("load state", workspaceID, "", err)
	}
	if state == nil {
		id := TabID(workspaceID, DefaultTitle)
		return SessionState{
			ActiveTab:   id,
			TabOrder:    []string{id},
			TabMetadata: []TabMetadata{{ID: id, Title: DefaultTitle}},
		}, nil
	}
	return *state, nil
}

// readState returns nil without error when there is no state file.
func (s *Store) readState(workspaceID string) (*SessionState, error) {
	data, err := os.ReadFile(filepath.Join(s.TabsDir(workspaceID), stateFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return decodeState(data)
}

func decodeState(data []byte) (*SessionState, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidState
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrInvalidState)
	}

	state := &SessionState{ActiveTab: doc.Get("active_tab").String()}
	for _, id := range doc.Get("tab_order").Array() {
		state.TabOrder = append(state.TabOrder, id.String())
	}
	doc.Get("tab_metadata").ForEach(func(_, meta gjson.Result) bool {
		state.TabMetadata = append(state.TabMetadata, TabMetadata{
			ID:    meta.Get("id").String(),
			Title: meta.Get("title").String(),
		})
		return true
	})
	return state, nil
}

// SaveSessionState writes state.json.
func (s *Store) SaveSessionState(ctx context.Context, workspaceID string, state SessionState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeState(state)
	if err != nil {
		return opError("save state", workspaceID, "", err)
	}

	dir := s.TabsDir(workspaceID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return opError("save state", workspaceID, "", err)
	}
	if err := os.WriteFile(filepath.Join(dir, stateFile), data, 0o644); err != nil {
		return opError("save state", workspaceID, "", err)
	}
	return nil
}

func encodeState(state SessionState) ([]byte, error) {
	var active any
	if state.ActiveTab != "" {
		active = state.ActiveTab
	}
	order := state.TabOrder
	if order == nil {
		order = []string{}
	}
	meta := state.TabMetadata
	if meta == nil {
		meta = []TabMetadata{}
	}

	doc := "{}"
	var err error
	if doc, err = sjson.Set(doc, "active_tab", active); err != nil {
		return nil, err
	}
	if doc, err = sjson.Set(doc, "tab_order", order); err != nil {
		return nil, err
	}
	if doc, err = sjson.Set(doc, "tab_metadata", meta); err != nil {
		return nil, err
	}
	return pretty.Pretty([]byte(doc)), nil
}

// Search returns, for every line of every document containing query
// (ignoring case), the first match on that line. A blank query matches
// nothing.
func (s *Store) Search(ctx context.Context, workspaceID, query string) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	tabs, err := s.LoadDocuments(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return SearchTabs(tabs, query), nil
}

// SearchTabs is Search over documents already in memory.
func SearchTabs(tabs []Tab, query string) []SearchResult {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	q := strings.ToLower(query)

	var out []SearchResult
	for _, tab := range tabs {
		for i, line := range strings.Split(tab.Content, "\n") {
			line = strings.TrimSuffix(line, "\r")
			idx := strings.Index(strings.ToLower(line), q)
			if idx < 0 {
				continue
			}
			out = append(out, SearchResult{
				TabID:       tab.ID,
				Title:       tab.Title,
				Line:        i + 1,
				LineContent: line,
				Column:      idx + 1,
				EndColumn:   idx + 1 + len(q),
			})
		}
	}
	return out
}

// Export writes content to an arbitrary path.
func Export(content, path string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

// IsOwnWrite reports whether content is what the store last wrote to path.
func (s *Store) IsOwnWrite(path string, content []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.written[filepath.Clean(path)]
	return ok && sum == sha256.Sum256(content)
}

func (s *Store) tracks(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.written[filepath.Clean(path)]
	return ok
}

func (s *Store) remember(path string, content []byte) {
	s.mu.Lock()
	s.written[filepath.Clean(path)] = sha256.Sum256(content)
	s.mu.Unlock()
}

func (s *Store) forget(path string) {
	s.mu.Lock()
	delete(s.written, filepath.Clean(path))
	s.mu.Unlock()
}
