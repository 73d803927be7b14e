package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the sweeper on its two independent cadences. Cron specs
// come from configuration; the reference cadences are once per minute for
// payment timeouts and once daily at a low-traffic hour for deliveries.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler registers both sweeps with their cron specs.
func NewScheduler(sweeper *Sweeper, paymentSpec, deliverySpec string, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		logger: logger,
	}

	if _, err := s.cron.AddFunc(paymentSpec, func() {
		sweeper.SweepPaymentTimeouts(s.runContext())
	}); err != nil {
		return nil, fmt.Errorf("payment sweep spec %q: %w", paymentSpec, err)
	}
	if _, err := s.cron.AddFunc(deliverySpec, func() {
		sweeper.SweepDeliveryTimeouts(s.runContext())
	}); err != nil {
		return nil, fmt.Errorf("delivery sweep spec %q: %w", deliverySpec, err)
	}

	return s, nil
}

func (s *Scheduler) runContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// Start begins ticking. Sweeps launched after Stop observe a cancelled context.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("timeout sweeper started")
}

// Stop halts the cron loop and waits for in-flight sweeps to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("timeout sweeper stopped")
}
