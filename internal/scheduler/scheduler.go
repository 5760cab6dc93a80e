// Package scheduler runs the periodic subscription expiry sweep.
//
// Sessions already expire a lapsed plan when they read it; the sweep brings
// the stored rows in line for users who are not signed in, so reports and
// the next sign-in see the free tier without waiting for a session.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Expirer reverts lapsed paid subscriptions and reports how many it changed.
// service.AppService implements it.
type Expirer interface {
	ExpireSubscriptions(ctx context.Context) (int64, error)
}

// Scheduler wraps robfig/cron and manages the expiry sweep.
type Scheduler struct {
	cron    *cron.Cron
	expirer Expirer
	spec    string
	logger  *slog.Logger
}

// New creates a Scheduler that sweeps on spec, a standard cron expression or
// descriptor such as "@every 1h".
func New(expirer Expirer, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		expirer: expirer,
		spec:    spec,
		logger:  logger,
	}
}

// Start registers the sweep and starts the scheduler. It also runs one sweep
// immediately so plans that lapsed while the server was down are reverted at
// startup.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.Sweep(ctx) }); err != nil {
		return fmt.Errorf("scheduling expiry sweep %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("expiry sweep scheduled", slog.String("spec", s.spec))

	go s.Sweep(ctx)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("expiry sweep stopped")
}

// Sweep runs one expiry pass. Failures are logged; the next tick retries.
func (s *Scheduler) Sweep(ctx context.Context) {
	n, err := s.expirer.ExpireSubscriptions(ctx)
	if err != nil {
		s.logger.Error("expiry sweep failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		s.logger.Info("expired subscriptions", slog.Int64("count", n))
	}
}
