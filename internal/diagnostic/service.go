package diagnostic

import (
	"sort"
	"strings"
	"sync"

	"github.com/dshills/scriptsense/internal/logging"
)

// DocumentMarkers is the marker set of one document.
type DocumentMarkers struct {
	DocumentID   string
	Markers      []Marker
	Version      int
	ErrorCount   int
	WarningCount int
}

// Service keeps the current marker set of every document and reports
// changes. Each Publish replaces the document's set entirely.
type Service struct {
	mu       sync.RWMutex
	analyzer *Analyzer
	logger   *logging.Logger
	language string
	enabled  bool
	docs     map[string]*DocumentMarkers
	onChange func(docID string, markers []Marker)
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLanguage sets the language tag the analyzer covers.
func WithLanguage(lang string) ServiceOption {
	return func(s *Service) {
		s.language = strings.ToLower(lang)
	}
}

// WithChangeHandler sets the callback invoked after every marker change.
func WithChangeHandler(fn func(docID string, markers []Marker)) ServiceOption {
	return func(s *Service) {
		s.onChange = fn
	}
}

// WithServiceLogger sets the logger.
func WithServiceLogger(l *logging.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a marker service backed by analyzer.
func NewService(analyzer *Analyzer, opts ...ServiceOption) *Service {
	if analyzer == nil {
		analyzer = NewAnalyzer()
	}
	s := &Service{
		analyzer: analyzer,
		logger:   logging.Nop(),
		language: "lua",
		enabled:  true,
		docs:     make(map[string]*DocumentMarkers),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Covers reports whether documents tagged lang are analyzed.
func (s *Service) Covers(lang string) bool {
	return strings.EqualFold(lang, s.language)
}

// Enabled reports whether markers are being produced.
func (s *Service) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// SetEnabled turns marker production on or off. Turning it off clears
// every document and reports the empty sets.
func (s *Service) SetEnabled(enabled bool) {
	s.mu.Lock()
	if s.enabled == enabled {
		s.mu.Unlock()
		return
	}
	s.enabled = enabled
	var cleared []string
	if !enabled {
		for id := range s.docs {
			cleared = append(cleared, id)
		}
		s.docs = make(map[string]*DocumentMarkers)
	}
	handler := s.onChange
	s.mu.Unlock()

	sort.Strings(cleared)
	s.logger.Debug("markers enabled=%v, cleared %d documents", enabled, len(cleared))
	if handler != nil {
		for _, id := range cleared {
			handler(id, nil)
		}
	}
}

// Publish analyzes content for docID and replaces its marker set. Content
// in an uncovered language, or any content while disabled, is ignored.
// It returns the new markers.
func (s *Service) Publish(docID, language, content string) []Marker {
	if !s.Covers(language) || !s.Enabled() {
		return nil
	}

	markers := s.analyzer.Analyze(content)
	errs, warns := Counts(markers)

	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return nil
	}
	dm := &DocumentMarkers{
		DocumentID:   docID,
		Markers:      markers,
		ErrorCount:   errs,
		WarningCount: warns,
	}
	if prev, ok := s.docs[docID]; ok {
		dm.Version = prev.Version + 1
	}
	s.docs[docID] = dm
	handler := s.onChange
	s.mu.Unlock()

	if handler != nil {
		handler(docID, copyMarkers(markers))
	}
	return copyMarkers(markers)
}

// Clear drops the markers of docID and reports an empty set if it had any.
func (s *Service) Clear(docID string) {
	s.mu.Lock()
	_, ok := s.docs[docID]
	delete(s.docs, docID)
	handler := s.onChange
	s.mu.Unlock()

	if ok && handler != nil {
		handler(docID, nil)
	}
}

// Markers returns a copy of the current markers of docID.
func (s *Service) Markers(docID string) []Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dm, ok := s.docs[docID]
	if !ok {
		return nil
	}
	return copyMarkers(dm.Markers)
}

// Document returns the full marker record of docID.
func (s *Service) Document(docID string) (DocumentMarkers, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dm, ok := s.docs[docID]
	if !ok {
		return DocumentMarkers{}, false
	}
	out := *dm
	out.Markers = copyMarkers(dm.Markers)
	return out, true
}

// Counts returns the error and warning counts of docID.
func (s *Service) Counts(docID string) (errors, warnings int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if dm, ok := s.docs[docID]; ok {
		return dm.ErrorCount, dm.WarningCount
	}
	return 0, 0
}

// DocumentsWithErrors returns the ids of documents that have error markers.
func (s *Service) DocumentsWithErrors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, dm := range s.docs {
		if dm.ErrorCount > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func copyMarkers(in []Marker) []Marker {
	if in == nil {
		return nil
	}
	out := make([]Marker, len(in))
	copy(out, in)
	return out
}
