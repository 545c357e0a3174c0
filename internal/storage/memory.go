package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"marketwatch/internal/domain"
)

// MemoryStore is an in-memory Store with the same per-URL insert atomicity
// as the Postgres backend. It backs tests and local runs without a database.
type MemoryStore struct {
	mu       sync.Mutex
	byURL    map[string]int
	listings []domain.Listing
	keywords map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byURL:    make(map[string]int),
		keywords: make(map[string]struct{}),
	}
}

func (s *MemoryStore) InsertNewListings(_ context.Context, candidates []domain.Listing) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []domain.Listing
	for _, l := range candidates {
		if _, exists := s.byURL[l.URL]; exists {
			continue
		}
		l.PriceValue = domain.ParsePrice(l.Price)
		l.ObservedAt = time.Now()
		s.byURL[l.URL] = len(s.listings)
		s.listings = append(s.listings, l)
		fresh = append(fresh, l)
	}
	return fresh, nil
}

func (s *MemoryStore) Listings(_ context.Context, spec domain.SortSpec) ([]domain.Listing, error) {
	s.mu.Lock()
	out := make([]domain.Listing, len(s.listings))
	copy(out, s.listings)
	s.mu.Unlock()

	asc := spec.Order == domain.OrderAsc
	switch spec.By {
	case domain.SortByPrice:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].PriceValue, out[j].PriceValue
			// unparseable prices sort last in either direction
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			if asc {
				return *a < *b
			}
			return *a > *b
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			if asc {
				return out[i].ObservedAt.Before(out[j].ObservedAt)
			}
			return out[i].ObservedAt.After(out[j].ObservedAt)
		})
	}
	return out, nil
}

func (s *MemoryStore) Keywords(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keywords := make([]string, 0, len(s.keywords))
	for kw := range s.keywords {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	return keywords, nil
}

func (s *MemoryStore) AddKeyword(_ context.Context, keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return ErrEmptyKeyword
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keywords[keyword] = struct{}{}
	return nil
}

func (s *MemoryStore) DeleteKeyword(_ context.Context, keyword string) (bool, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.keywords[keyword]
	delete(s.keywords, keyword)

	kept := s.listings[:0:0]
	for _, l := range s.listings {
		if !strings.Contains(l.Title, keyword) {
			kept = append(kept, l)
		}
	}
	s.listings = kept
	s.byURL = make(map[string]int, len(kept))
	for i, l := range kept {
		s.byURL[l.URL] = i
	}
	return existed, nil
}
