package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/scriptsense/internal/symbol"
)

// Merge combines fetchers in order. It fails only when every fetcher
// fails; partial failures are reported through onError when set.
func Merge(onError func(error), fetchers ...Fetcher) Fetcher {
	return FetcherFunc(func(ctx context.Context) ([]symbol.Symbol, error) {
		var out []symbol.Symbol
		var errs []error
		for _, f := range fetchers {
			syms, err := f.Fetch(ctx)
			if err != nil {
				errs = append(errs, err)
				if onError != nil {
					onError(err)
				}
				continue
			}
			out = append(out, syms...)
		}
		if len(fetchers) > 0 && len(errs) == len(fetchers) {
			return nil, fmt.Errorf("%w: %w", ErrAllFailed, errors.Join(errs...))
		}
		return out, nil
	})
}
