// Package storage owns the persistent listing and keyword state. Postgres
// is the production backend; MemoryStore mirrors its semantics for tests.
package storage

import (
	"context"
	"errors"

	"marketwatch/internal/domain"
)

// ErrEmptyKeyword rejects keywords that trim to nothing.
var ErrEmptyKeyword = errors.New("keyword cannot be empty")

// Store is the dedup store contract. Insert atomicity is per candidate URL:
// concurrent cycles inserting the same URL see exactly one "new" winner.
type Store interface {
	// InsertNewListings inserts each candidate keyed on URL and returns the
	// subset that was not already present, in the order considered. A
	// duplicate URL is a silent no-op, not an error.
	InsertNewListings(ctx context.Context, candidates []domain.Listing) ([]domain.Listing, error)

	// Listings returns all stored listings ordered per spec.
	Listings(ctx context.Context, sort domain.SortSpec) ([]domain.Listing, error)

	// Keywords returns all keywords in alphabetical order.
	Keywords(ctx context.Context) ([]string, error)

	// AddKeyword stores a trimmed keyword; duplicates are a no-op.
	AddKeyword(ctx context.Context, keyword string) error

	// DeleteKeyword removes the keyword and purges every listing whose title
	// contains it as a literal substring, in one consistent operation. It
	// reports whether the keyword existed.
	DeleteKeyword(ctx context.Context, keyword string) (bool, error)
}
