package scrape

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"marketwatch/internal/domain"
	"marketwatch/internal/monitoring"
)

const defaultWorkers = 10

// task pairs one keyword with one scraper for the duration of a cycle.
type task struct {
	scraper Scraper
	keyword string
}

// Aggregator fans the keyword × scraper cross product out across a bounded
// worker pool and collects results in completion order. A failing or
// panicking task is logged and isolated; it never affects other tasks.
type Aggregator struct {
	scrapers []Scraper
	workers  int
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

func NewAggregator(scrapers []Scraper, workers int, m *monitoring.Metrics, l *zap.Logger) *Aggregator {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Aggregator{scrapers: scrapers, workers: workers, metrics: m, logger: l}
}

// SourceCount reports how many scrapers are configured.
func (a *Aggregator) SourceCount() int { return len(a.scrapers) }

// Aggregate runs every (keyword, scraper) pair and returns the flat
// concatenation of all successful results. An empty keyword list
// short-circuits with nothing to scrape.
func (a *Aggregator) Aggregate(ctx context.Context, keywords []string) []domain.Listing {
	if len(keywords) == 0 || len(a.scrapers) == 0 {
		return nil
	}

	tasks := make(chan task)
	results := make(chan []domain.Listing)

	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				if out := a.runTask(ctx, t); len(out) > 0 {
					results <- out
				}
			}
		}()
	}

	go func() {
		for _, kw := range keywords {
			for _, s := range a.scrapers {
				tasks <- task{scraper: s, keyword: kw}
			}
		}
		close(tasks)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []domain.Listing
	for batch := range results {
		all = append(all, batch...)
	}
	return all
}

// runTask executes one scrape and absorbs both returned errors and panics,
// so one misbehaving adapter cannot take the cycle down.
func (a *Aggregator) runTask(ctx context.Context, t task) (out []domain.Listing) {
	defer func() {
		if r := recover(); r != nil {
			a.metrics.IncTaskErrors(t.scraper.Source())
			a.logger.Error("scrape task panicked",
				zap.String("source", t.scraper.Source()),
				zap.String("keyword", t.keyword),
				zap.Any("panic", r))
			out = nil
		}
	}()

	listings, err := t.scraper.Scrape(ctx, t.keyword)
	if err != nil {
		a.metrics.IncTaskErrors(t.scraper.Source())
		a.logger.Error("scrape task failed",
			zap.String("source", t.scraper.Source()),
			zap.String("keyword", t.keyword),
			zap.Error(err))
		return nil
	}
	return listings
}
