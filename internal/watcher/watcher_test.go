package watcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"marketwatch/internal/domain"
	"marketwatch/internal/scrape"
	"marketwatch/internal/storage"
)

type fakeScraper struct {
	source   string
	listings []domain.Listing
	err      error
}

func (f *fakeScraper) Source() string { return f.source }

func (f *fakeScraper) Scrape(_ context.Context, keyword string) ([]domain.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listings, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	batches [][]domain.Listing
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, listings []domain.Listing) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.batches = append(n.batches, listings)
	return n.err
}

func newWatcher(t *testing.T, store Store, notifier Notifier, scrapers ...scrape.Scraper) *Watcher {
	t.Helper()
	agg := scrape.NewAggregator(scrapers, 4, nil, zap.NewNop())
	w, err := New(agg, store, notifier, nil, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func TestNew_FailsWithoutScrapers(t *testing.T) {
	agg := scrape.NewAggregator(nil, 4, nil, zap.NewNop())
	if _, err := New(agg, storage.NewMemoryStore(), nil, nil, nil, zap.NewNop()); !errors.Is(err, ErrNoScrapers) {
		t.Fatalf("New with no scrapers = %v, want ErrNoScrapers", err)
	}
}

func TestRunCycle_TwoSourcesTwoNewListingsNotified(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.AddKeyword(ctx, "camera")

	longTitle := strings.Repeat("very long camera title ", 5)
	notifier := &recordingNotifier{}
	w := newWatcher(t, store, notifier,
		&fakeScraper{source: "Mercari", listings: []domain.Listing{
			{Source: "Mercari", Title: longTitle, Price: "¥45,000", URL: "https://m.example.com/1"},
		}},
		&fakeScraper{source: "Yahoo Auctions", listings: []domain.Listing{
			{Source: "Yahoo Auctions", Title: "camera kit", Price: "5,500円", URL: "https://y.example.com/2"},
		}},
	)

	w.RunCycle(ctx)

	if len(notifier.batches) != 1 {
		t.Fatalf("notifier called %d times, want 1", len(notifier.batches))
	}
	if len(notifier.batches[0]) != 2 {
		t.Fatalf("notified %d listings, want 2", len(notifier.batches[0]))
	}

	stored, _ := store.Listings(ctx, domain.DefaultSort)
	if len(stored) != 2 {
		t.Fatalf("stored %d listings, want 2", len(stored))
	}
}

func TestRunCycle_SecondIdenticalRunNotifiesNothing(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.AddKeyword(ctx, "camera")

	notifier := &recordingNotifier{}
	w := newWatcher(t, store, notifier,
		&fakeScraper{source: "Mercari", listings: []domain.Listing{
			{Source: "Mercari", Title: "camera", Price: "¥100", URL: "https://m.example.com/1"},
		}},
	)

	w.RunCycle(ctx)
	w.RunCycle(ctx)

	if len(notifier.batches) != 1 {
		t.Fatalf("notifier called %d times, want 1 (second run found nothing new)", len(notifier.batches))
	}
}

func TestRunCycle_EmptyKeywordListHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	notifier := &recordingNotifier{}
	w := newWatcher(t, store, notifier, &fakeScraper{source: "Mercari", listings: nil})

	w.RunCycle(ctx)

	if len(notifier.batches) != 0 {
		t.Error("notifier must not be called when there are no keywords")
	}
	stored, _ := store.Listings(ctx, domain.DefaultSort)
	if len(stored) != 0 {
		t.Error("no listings should be stored when there are no keywords")
	}
}

func TestRunCycle_AllTasksFailingStillCompletes(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.AddKeyword(ctx, "camera")

	notifier := &recordingNotifier{}
	w := newWatcher(t, store, notifier,
		&fakeScraper{source: "Mercari", err: errors.New("403")},
		&fakeScraper{source: "Yahoo Auctions", err: errors.New("selector drift")},
	)

	w.RunCycle(ctx)

	if len(notifier.batches) != 0 {
		t.Error("a fully failed cycle must look like a cycle with no new listings")
	}
}

func TestRunCycle_NotifierFailureDoesNotAffectPersistence(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.AddKeyword(ctx, "camera")

	notifier := &recordingNotifier{err: errors.New("telegram down")}
	w := newWatcher(t, store, notifier,
		&fakeScraper{source: "Mercari", listings: []domain.Listing{
			{Source: "Mercari", Title: "camera", Price: "¥100", URL: "https://m.example.com/1"},
		}},
	)

	w.RunCycle(ctx)

	stored, _ := store.Listings(ctx, domain.DefaultSort)
	if len(stored) != 1 {
		t.Fatalf("stored %d listings, want 1 despite notifier failure", len(stored))
	}

	// a rerun must not re-report the listing the failed notification covered
	w.RunCycle(ctx)
	if len(notifier.batches) != 1 {
		t.Errorf("notifier called %d times, want 1", len(notifier.batches))
	}
}

func TestRunCycle_ConcurrentCyclesReportEachURLOnce(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.AddKeyword(ctx, "camera")

	notifier := &recordingNotifier{}
	w := newWatcher(t, store, notifier,
		&fakeScraper{source: "Mercari", listings: []domain.Listing{
			{Source: "Mercari", Title: "camera", Price: "¥100", URL: "https://m.example.com/contested"},
		}},
	)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.RunCycle(ctx)
		}()
	}
	wg.Wait()

	total := 0
	for _, batch := range notifier.batches {
		total += len(batch)
	}
	if total != 1 {
		t.Fatalf("the same URL was reported new %d times across overlapping cycles, want 1", total)
	}
}
