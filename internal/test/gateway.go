package test

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/feastline/ordercore/internal/domain/model"
)

// RefundCall records a single refund request seen by the gateway stub.
type RefundCall struct {
	OutTradeNo  string
	OutRefundNo string
	Refund      decimal.Decimal
	Total       decimal.Decimal
}

// GatewayStub fakes the payment gateway, recording calls and delegating to
// optional function fields.
type GatewayStub struct {
	mu          sync.Mutex
	PayFn       func(ctx context.Context, orderNumber string, amount decimal.Decimal, description string) (*model.PaymentIntent, error)
	RefundFn    func(ctx context.Context, outTradeNo, outRefundNo string, refund, total decimal.Decimal) error
	PayCalls    []string
	RefundCalls []RefundCall
}

// Pay records the call and returns a minimal intent unless PayFn overrides it.
func (s *GatewayStub) Pay(ctx context.Context, orderNumber string, amount decimal.Decimal, description string) (*model.PaymentIntent, error) {
	s.mu.Lock()
	s.PayCalls = append(s.PayCalls, orderNumber)
	s.mu.Unlock()
	if s.PayFn != nil {
		return s.PayFn(ctx, orderNumber, amount, description)
	}
	return &model.PaymentIntent{NonceStr: "stub", Package: "prepay_id=stub", SignType: "RSA"}, nil
}

// Refund records the call and delegates to RefundFn when set.
func (s *GatewayStub) Refund(ctx context.Context, outTradeNo, outRefundNo string, refund, total decimal.Decimal) error {
	s.mu.Lock()
	s.RefundCalls = append(s.RefundCalls, RefundCall{
		OutTradeNo:  outTradeNo,
		OutRefundNo: outRefundNo,
		Refund:      refund,
		Total:       total,
	})
	s.mu.Unlock()
	if s.RefundFn != nil {
		return s.RefundFn(ctx, outTradeNo, outRefundNo, refund, total)
	}
	return nil
}

// RefundCount reports how many refunds were requested.
func (s *GatewayStub) RefundCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.RefundCalls)
}

// BroadcasterStub records every notification pushed through it.
type BroadcasterStub struct {
	mu            sync.Mutex
	Notifications []model.Notification
}

// Broadcast appends the notification to the recorded list.
func (s *BroadcasterStub) Broadcast(n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notifications = append(s.Notifications, n)
}

// Sent returns a copy of the recorded notifications.
func (s *BroadcasterStub) Sent() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.Notification, len(s.Notifications))
	copy(result, s.Notifications)
	return result
}
