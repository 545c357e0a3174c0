// Package watcher drives one polling cycle end to end: load keywords,
// aggregate scrape results, insert-if-absent, notify the new subset.
package watcher

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"marketwatch/internal/domain"
	"marketwatch/internal/monitoring"
	"marketwatch/internal/scrape"
	"marketwatch/internal/storage"
)

// ErrNoScrapers means no source adapters were configured at startup. This is
// the only unrecoverable setup condition; everything at cycle time degrades.
var ErrNoScrapers = errors.New("no source adapters configured")

// Store is the slice of the dedup store the cycle needs.
type Store interface {
	Keywords(ctx context.Context) ([]string, error)
	InsertNewListings(ctx context.Context, candidates []domain.Listing) ([]domain.Listing, error)
}

// Notifier receives the ordered new-listing subset of one cycle.
type Notifier interface {
	Notify(ctx context.Context, listings []domain.Listing) error
}

// Watcher runs polling cycles. RunCycle is re-entrant: a manual trigger and
// a timer tick may overlap, and the store's per-URL insert atomicity
// guarantees the same listing is never reported new twice.
type Watcher struct {
	aggregator *scrape.Aggregator
	store      Store
	notifier   Notifier
	seen       *storage.SeenCache
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

// New wires a Watcher. notifier and seen may be nil when unconfigured.
func New(agg *scrape.Aggregator, store Store, notifier Notifier, seen *storage.SeenCache, m *monitoring.Metrics, logger *zap.Logger) (*Watcher, error) {
	if agg.SourceCount() == 0 {
		return nil, ErrNoScrapers
	}
	return &Watcher{
		aggregator: agg,
		store:      store,
		notifier:   notifier,
		seen:       seen,
		metrics:    m,
		logger:     logger,
	}, nil
}

// RunCycle executes one fetch -> dedup -> notify pass over all keywords.
// Nothing below the keyword load can abort it: task failures are isolated by
// the aggregator and notifier failures are logged after persistence has
// already committed.
func (w *Watcher) RunCycle(ctx context.Context) {
	w.metrics.IncCyclesTotal()
	w.logger.Info("scrape cycle started")

	keywords, err := w.store.Keywords(ctx)
	if err != nil {
		w.logger.Error("failed to load keywords", zap.Error(err))
		return
	}
	if len(keywords) == 0 {
		w.logger.Info("no keywords configured, nothing to scrape")
		return
	}

	candidates := w.aggregator.Aggregate(ctx, keywords)
	if len(candidates) == 0 {
		w.logger.Info("scrape cycle finished", zap.Int("new", 0))
		return
	}

	candidates = w.dropRecentlySeen(ctx, candidates)

	fresh, err := w.store.InsertNewListings(ctx, candidates)
	if err != nil {
		w.logger.Error("failed to persist listings", zap.Error(err))
		return
	}
	w.markSeen(ctx, candidates)

	if len(fresh) > 0 {
		w.metrics.AddNewListings(len(fresh))
		if w.notifier != nil {
			if err := w.notifier.Notify(ctx, fresh); err != nil {
				w.metrics.IncNotifyErrors()
				w.logger.Error("notification delivery failed", zap.Error(err))
			}
		}
	}

	w.logger.Info("scrape cycle finished",
		zap.Int("candidates", len(candidates)),
		zap.Int("new", len(fresh)))
}

// dropRecentlySeen filters out URLs the cache already holds. Cache errors
// fall through to the database, which stays authoritative either way.
func (w *Watcher) dropRecentlySeen(ctx context.Context, candidates []domain.Listing) []domain.Listing {
	if w.seen == nil {
		return candidates
	}
	kept := candidates[:0:0]
	for _, l := range candidates {
		seen, err := w.seen.Seen(ctx, l.URL)
		if err != nil {
			w.logger.Warn("seen-cache lookup failed", zap.String("url", l.URL), zap.Error(err))
			kept = append(kept, l)
			continue
		}
		if !seen {
			kept = append(kept, l)
		}
	}
	return kept
}

func (w *Watcher) markSeen(ctx context.Context, candidates []domain.Listing) {
	if w.seen == nil {
		return
	}
	for _, l := range candidates {
		if err := w.seen.Mark(ctx, l.URL); err != nil {
			w.logger.Warn("seen-cache mark failed", zap.String("url", l.URL), zap.Error(err))
		}
	}
}
