package test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feastline/ordercore/internal/domain/model"
	"github.com/feastline/ordercore/internal/usecase"
)

// OrderFacadeStub implements the handler facade with overridable functions.
// Unset functions answer with a benign default.
type OrderFacadeStub struct {
	SubmitFn         func(ctx context.Context, userID int64, in usecase.SubmitOrder) (*model.Order, error)
	CancelFn         func(ctx context.Context, orderID int64, reason string, actor usecase.Actor) error
	RepeatFn         func(ctx context.Context, userID, orderID int64) error
	RemindFn         func(ctx context.Context, orderID int64) error
	DetailsFn        func(ctx context.Context, orderID int64) (*model.Order, []model.OrderLine, error)
	HistoryFn        func(ctx context.Context, userID int64, status *model.OrderStatus, page, size int) (*usecase.HistoryPage, error)
	SearchFn         func(ctx context.Context, q usecase.SearchQuery, page, size int) (*usecase.SearchPage, error)
	RequestPaymentFn func(ctx context.Context, userID int64, orderNumber string) (*model.PaymentIntent, error)
	ConfirmFn        func(ctx context.Context, orderID int64) error
	RejectFn         func(ctx context.Context, orderID int64, reason string) error
	DispatchFn       func(ctx context.Context, orderID int64) error
	CompleteFn       func(ctx context.Context, orderID int64) error
	CallbackFn       func(ctx context.Context, raw []byte) error
}

// Submit delegates to SubmitFn or returns a minimal created order.
func (s OrderFacadeStub) Submit(ctx context.Context, userID int64, in usecase.SubmitOrder) (*model.Order, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, userID, in)
	}
	return &model.Order{
		ID:        1,
		Number:    "20260829120000000000",
		UserID:    userID,
		Status:    model.OrderStatusPendingPayment,
		Amount:    decimal.RequireFromString("35.00"),
		OrderTime: time.Now(),
	}, nil
}

// Cancel delegates to CancelFn or succeeds.
func (s OrderFacadeStub) Cancel(ctx context.Context, orderID int64, reason string, actor usecase.Actor) error {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, orderID, reason, actor)
	}
	return nil
}

// Repeat delegates to RepeatFn or succeeds.
func (s OrderFacadeStub) Repeat(ctx context.Context, userID, orderID int64) error {
	if s.RepeatFn != nil {
		return s.RepeatFn(ctx, userID, orderID)
	}
	return nil
}

// Remind delegates to RemindFn or succeeds.
func (s OrderFacadeStub) Remind(ctx context.Context, orderID int64) error {
	if s.RemindFn != nil {
		return s.RemindFn(ctx, orderID)
	}
	return nil
}

// Details delegates to DetailsFn or returns a minimal order without lines.
func (s OrderFacadeStub) Details(ctx context.Context, orderID int64) (*model.Order, []model.OrderLine, error) {
	if s.DetailsFn != nil {
		return s.DetailsFn(ctx, orderID)
	}
	return &model.Order{ID: orderID, Number: "20260829120000000000", OrderTime: time.Now()}, nil, nil
}

// History delegates to HistoryFn or returns an empty page.
func (s OrderFacadeStub) History(ctx context.Context, userID int64, status *model.OrderStatus, page, size int) (*usecase.HistoryPage, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, userID, status, page, size)
	}
	return &usecase.HistoryPage{}, nil
}

// Search delegates to SearchFn or returns an empty page.
func (s OrderFacadeStub) Search(ctx context.Context, q usecase.SearchQuery, page, size int) (*usecase.SearchPage, error) {
	if s.SearchFn != nil {
		return s.SearchFn(ctx, q, page, size)
	}
	return &usecase.SearchPage{}, nil
}

// RequestPayment delegates to RequestPaymentFn or returns a minimal intent.
func (s OrderFacadeStub) RequestPayment(ctx context.Context, userID int64, orderNumber string) (*model.PaymentIntent, error) {
	if s.RequestPaymentFn != nil {
		return s.RequestPaymentFn(ctx, userID, orderNumber)
	}
	return &model.PaymentIntent{NonceStr: "stub", Package: "prepay_id=stub", SignType: "RSA"}, nil
}

// Confirm delegates to ConfirmFn or succeeds.
func (s OrderFacadeStub) Confirm(ctx context.Context, orderID int64) error {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, orderID)
	}
	return nil
}

// Reject delegates to RejectFn or succeeds.
func (s OrderFacadeStub) Reject(ctx context.Context, orderID int64, reason string) error {
	if s.RejectFn != nil {
		return s.RejectFn(ctx, orderID, reason)
	}
	return nil
}

// Dispatch delegates to DispatchFn or succeeds.
func (s OrderFacadeStub) Dispatch(ctx context.Context, orderID int64) error {
	if s.DispatchFn != nil {
		return s.DispatchFn(ctx, orderID)
	}
	return nil
}

// Complete delegates to CompleteFn or succeeds.
func (s OrderFacadeStub) Complete(ctx context.Context, orderID int64) error {
	if s.CompleteFn != nil {
		return s.CompleteFn(ctx, orderID)
	}
	return nil
}

// ApplyPaymentCallback delegates to CallbackFn or succeeds.
func (s OrderFacadeStub) ApplyPaymentCallback(ctx context.Context, raw []byte) error {
	if s.CallbackFn != nil {
		return s.CallbackFn(ctx, raw)
	}
	return nil
}
