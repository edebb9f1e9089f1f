package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/scriptsense/internal/symbol"
)

// responseKinds are the top-level arrays of a catalog document, in the
// order their symbols are listed.
var responseKinds = []symbol.Kind{
	symbol.KindFunction,
	symbol.KindProperty,
	symbol.KindClass,
	symbol.KindMethod,
}

// maxResponseSize bounds the catalog document read from the network.
const maxResponseSize = 16 << 20

// HTTPFetcher loads the catalog from a JSON endpoint.
type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher for url with the given request timeout.
func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFetcher{URL: url, Client: &http.Client{Timeout: timeout}}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]symbol.Symbol, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseJSON(body)
}

// ParseJSON decodes a catalog document of the form
// {"function":[{"label":..,"detail":..,"documentation":..}], "property":[..], ...}.
// Entries without a label are skipped.
func ParseJSON(data []byte) ([]symbol.Symbol, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidPayload
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrInvalidPayload)
	}

	var out []symbol.Symbol
	for _, kind := range responseKinds {
		doc.Get(string(kind)).ForEach(func(_, entry gjson.Result) bool {
			label := entry.Get("label").String()
			if label == "" {
				return true
			}
			out = append(out, symbol.Symbol{
				Label:         label,
				Kind:          kind,
				Detail:        entry.Get("detail").String(),
				Documentation: entry.Get("documentation").String(),
				Origin:        symbol.OriginCatalog,
			})
			return true
		})
	}
	return out, nil
}
