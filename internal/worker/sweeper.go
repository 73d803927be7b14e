package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/feastline/ordercore/internal/domain/model"
	"github.com/feastline/ordercore/internal/domain/repository"
)

// OrderStore is the subset of order persistence the sweeper needs.
type OrderStore interface {
	ListStaleByStatus(ctx context.Context, status model.OrderStatus, before time.Time) ([]model.Order, error)
	ApplyTransition(ctx context.Context, tr repository.StatusTransition) error
}

// Sweeper reconciles stale orders: unpaid orders past the grace period are
// cancelled, deliveries stuck past the window are force-completed. Per-order
// failures are logged and the pass continues with the remainder.
type Sweeper struct {
	store          OrderStore
	paymentGrace   time.Duration
	deliveryWindow time.Duration
	logger         *slog.Logger
}

// NewSweeper constructs the timeout sweeper.
func NewSweeper(store OrderStore, paymentGrace, deliveryWindow time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:          store,
		paymentGrace:   paymentGrace,
		deliveryWindow: deliveryWindow,
		logger:         logger,
	}
}

// SweepPaymentTimeouts cancels orders stuck in PendingPayment past the grace
// period. A conflict means an interactive path won the race; that is fine.
func (s *Sweeper) SweepPaymentTimeouts(ctx context.Context) {
	cutoff := time.Now().Add(-s.paymentGrace)
	orders, err := s.store.ListStaleByStatus(ctx, model.OrderStatusPendingPayment, cutoff)
	if err != nil {
		s.logger.Error("list stale pending orders failed", slog.String("error", err.Error()))
		return
	}

	for _, order := range orders {
		now := time.Now()
		err := s.store.ApplyTransition(ctx, repository.StatusTransition{
			OrderID:        order.ID,
			ExpectedStatus: model.OrderStatusPendingPayment,
			Status:         model.OrderStatusCancelled,
			CancelReason:   "timeout",
			CancelTime:     &now,
		})
		if err != nil {
			s.logger.Warn("cancel timed-out order failed",
				slog.String("order", order.Number),
				slog.String("error", err.Error()),
			)
			continue
		}
		s.logger.Info("order cancelled on payment timeout", slog.String("order", order.Number))
	}
}

// SweepDeliveryTimeouts force-completes deliveries still in progress past the
// configured window and persists the transition.
func (s *Sweeper) SweepDeliveryTimeouts(ctx context.Context) {
	cutoff := time.Now().Add(-s.deliveryWindow)
	orders, err := s.store.ListStaleByStatus(ctx, model.OrderStatusDeliveryInProgress, cutoff)
	if err != nil {
		s.logger.Error("list stale deliveries failed", slog.String("error", err.Error()))
		return
	}

	for _, order := range orders {
		now := time.Now()
		err := s.store.ApplyTransition(ctx, repository.StatusTransition{
			OrderID:        order.ID,
			ExpectedStatus: model.OrderStatusDeliveryInProgress,
			Status:         model.OrderStatusCompleted,
			DeliveryTime:   &now,
		})
		if err != nil {
			s.logger.Warn("complete stale delivery failed",
				slog.String("order", order.Number),
				slog.String("error", err.Error()),
			)
			continue
		}
		s.logger.Info("delivery force-completed", slog.String("order", order.Number))
	}
}
