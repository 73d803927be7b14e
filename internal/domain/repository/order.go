package repository

import (
	"context"
	"time"

	"github.com/feastline/ordercore/internal/domain/model"
)

// StatusTransition is a compare-and-set order mutation: the write applies only
// if the row's status still equals ExpectedStatus (and, when ExpectedPayStatus
// is set, its pay status too). A tripped guard surfaces ErrConflict.
type StatusTransition struct {
	OrderID           int64
	ExpectedStatus    model.OrderStatus
	ExpectedPayStatus *model.PayStatus
	Status            model.OrderStatus
	PayStatus         *model.PayStatus
	CancelReason      string
	RejectionReason   string
	CancelTime        *time.Time
	CheckoutTime      *time.Time
	DeliveryTime      *time.Time
}

// OrderPageFilter narrows a paged order listing. Zero-valued fields do not
// constrain; Number and Phone match as substrings.
type OrderPageFilter struct {
	UserID *int64
	Status *model.OrderStatus
	Number string
	Phone  string
	From   *time.Time
	To     *time.Time
}

// OrderRepository describes persistence operations with orders and their lines.
type OrderRepository interface {
	// Submit atomically persists the order with its lines and clears the
	// user's cart. Either all three writes land or none of them do.
	Submit(ctx context.Context, order *model.Order, lines []model.OrderLine) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByNumber(ctx context.Context, number string) (*model.Order, error)
	LinesByOrder(ctx context.Context, orderID int64) ([]model.OrderLine, error)
	// ListStaleByStatus returns orders in the given status whose order time
	// is strictly before the cutoff.
	ListStaleByStatus(ctx context.Context, status model.OrderStatus, before time.Time) ([]model.Order, error)
	// ListPage returns one page of orders matching the filter, newest
	// first, together with the total match count.
	ListPage(ctx context.Context, f OrderPageFilter, offset, limit int) ([]model.Order, int64, error)
	ApplyTransition(ctx context.Context, tr StatusTransition) error
}

// AddressRepository resolves delivery addresses owned by the address book
// collaborator.
type AddressRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Address, error)
}

// CartRepository exposes the cart operations the order core needs: reading a
// snapshot at submission time and re-materializing lines on repeat orders.
type CartRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]model.CartItem, error)
	AddBatch(ctx context.Context, items []model.CartItem) error
}
