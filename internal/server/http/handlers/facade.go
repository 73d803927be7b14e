package handlers

import (
	"context"

	"github.com/feastline/ordercore/internal/domain/model"
	"github.com/feastline/ordercore/internal/usecase"
)

// UserOrderFacade covers the order operations a customer may perform.
type UserOrderFacade interface {
	Submit(ctx context.Context, userID int64, in usecase.SubmitOrder) (*model.Order, error)
	Cancel(ctx context.Context, orderID int64, reason string, actor usecase.Actor) error
	Repeat(ctx context.Context, userID, orderID int64) error
	Remind(ctx context.Context, orderID int64) error
	Details(ctx context.Context, orderID int64) (*model.Order, []model.OrderLine, error)
	History(ctx context.Context, userID int64, status *model.OrderStatus, page, size int) (*usecase.HistoryPage, error)
	RequestPayment(ctx context.Context, userID int64, orderNumber string) (*model.PaymentIntent, error)
}

// AdminOrderFacade covers the merchant-side transitions.
type AdminOrderFacade interface {
	Confirm(ctx context.Context, orderID int64) error
	Reject(ctx context.Context, orderID int64, reason string) error
	Cancel(ctx context.Context, orderID int64, reason string, actor usecase.Actor) error
	Dispatch(ctx context.Context, orderID int64) error
	Complete(ctx context.Context, orderID int64) error
	Search(ctx context.Context, q usecase.SearchQuery, page, size int) (*usecase.SearchPage, error)
}

// CallbackFacade processes asynchronous payment-gateway notifications.
type CallbackFacade interface {
	ApplyPaymentCallback(ctx context.Context, raw []byte) error
}

// OrderCoreFacade aggregates the full set of operations used across handlers.
type OrderCoreFacade interface {
	UserOrderFacade
	AdminOrderFacade
	CallbackFacade
}
