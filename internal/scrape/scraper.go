// Package scrape implements the marketplace source adapters and the
// concurrent aggregator that fans keyword searches out across them.
package scrape

import (
	"context"

	"marketwatch/internal/domain"
)

// Scraper extracts listings from one marketplace's search results for a
// single keyword. Implementations hold no shared mutable state and are safe
// to invoke concurrently for different keywords.
//
// Upstream markup or schema drift must degrade to an empty result plus a log
// entry, never an error that aborts the cycle; errors are reserved for
// failures the adapter could not absorb (bad fetch, unreadable body).
type Scraper interface {
	Source() string
	Scrape(ctx context.Context, keyword string) ([]domain.Listing, error)
}
