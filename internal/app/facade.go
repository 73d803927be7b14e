package app

import (
	"context"

	"github.com/feastline/ordercore/internal/domain/model"
	"github.com/feastline/ordercore/internal/usecase"
)

// OrderCoreFacade aggregates the lifecycle and payment use cases behind one
// surface consumed by the HTTP handlers.
type OrderCoreFacade struct {
	orders   *usecase.OrderUseCase
	payments *usecase.PaymentUseCase
}

// NewOrderCoreFacade constructs the facade.
func NewOrderCoreFacade(orders *usecase.OrderUseCase, payments *usecase.PaymentUseCase) *OrderCoreFacade {
	return &OrderCoreFacade{orders: orders, payments: payments}
}

func (f *OrderCoreFacade) Submit(ctx context.Context, userID int64, in usecase.SubmitOrder) (*model.Order, error) {
	return f.orders.Submit(ctx, userID, in)
}

func (f *OrderCoreFacade) Confirm(ctx context.Context, orderID int64) error {
	return f.orders.Confirm(ctx, orderID)
}

func (f *OrderCoreFacade) Reject(ctx context.Context, orderID int64, reason string) error {
	return f.orders.Reject(ctx, orderID, reason)
}

func (f *OrderCoreFacade) Cancel(ctx context.Context, orderID int64, reason string, actor usecase.Actor) error {
	return f.orders.Cancel(ctx, orderID, reason, actor)
}

func (f *OrderCoreFacade) Dispatch(ctx context.Context, orderID int64) error {
	return f.orders.Dispatch(ctx, orderID)
}

func (f *OrderCoreFacade) Complete(ctx context.Context, orderID int64) error {
	return f.orders.Complete(ctx, orderID)
}

func (f *OrderCoreFacade) Remind(ctx context.Context, orderID int64) error {
	return f.orders.Remind(ctx, orderID)
}

func (f *OrderCoreFacade) Repeat(ctx context.Context, userID, orderID int64) error {
	return f.orders.Repeat(ctx, userID, orderID)
}

func (f *OrderCoreFacade) Details(ctx context.Context, orderID int64) (*model.Order, []model.OrderLine, error) {
	return f.orders.Details(ctx, orderID)
}

func (f *OrderCoreFacade) History(ctx context.Context, userID int64, status *model.OrderStatus, page, size int) (*usecase.HistoryPage, error) {
	return f.orders.History(ctx, userID, status, page, size)
}

func (f *OrderCoreFacade) Search(ctx context.Context, q usecase.SearchQuery, page, size int) (*usecase.SearchPage, error) {
	return f.orders.Search(ctx, q, page, size)
}

func (f *OrderCoreFacade) RequestPayment(ctx context.Context, userID int64, orderNumber string) (*model.PaymentIntent, error) {
	return f.payments.RequestPayment(ctx, userID, orderNumber)
}

func (f *OrderCoreFacade) ApplyPaymentCallback(ctx context.Context, raw []byte) error {
	return f.payments.ApplyCallback(ctx, raw)
}
