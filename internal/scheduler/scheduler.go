// Package scheduler wires up the cron job that periodically runs a polling
// cycle. A manual trigger is just another invocation of the same function;
// overlap safety lives in the dedup store, not here.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler struct {
	cron   *cron.Cron
	run    func()
	spec   string
	logger *zap.Logger
}

// New creates a Scheduler that fires run every intervalHours hours.
func New(run func(), intervalHours int, logger *zap.Logger) *Scheduler {
	if intervalHours < 1 {
		intervalHours = 1
	}
	return &Scheduler{
		cron:   cron.New(),
		run:    run,
		spec:   fmt.Sprintf("@every %dh", intervalHours),
		logger: logger,
	}
}

// Start registers the job and starts the cron loop. One cycle also runs
// immediately so a fresh deployment does not wait for the first tick.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))

	go s.run()
	return nil
}

// Stop halts the cron loop; an in-flight cycle keeps running to completion.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}
