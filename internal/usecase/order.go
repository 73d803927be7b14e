package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/feastline/ordercore/internal/adapter/wechatpay"
	domainErrors "github.com/feastline/ordercore/internal/domain/errors"
	"github.com/feastline/ordercore/internal/domain/model"
	"github.com/feastline/ordercore/internal/domain/repository"
)

// Broadcaster pushes notifications to connected operator clients.
type Broadcaster interface {
	Broadcast(n model.Notification)
}

// Actor identifies who requested a cancellation.
type Actor string

const (
	ActorUser     Actor = "user"
	ActorMerchant Actor = "merchant"
)

// SubmitOrder carries the user-supplied fields of an order submission.
type SubmitOrder struct {
	AddressID             int64
	PayMethod             int
	Remark                string
	EstimatedDeliveryTime *time.Time
	TablewareNumber       int
}

// OrderUseCase owns the order state machine: it validates and applies every
// transition, enforces the refund-before-cancel rule, and emits notifications.
type OrderUseCase struct {
	orders    repository.OrderRepository
	addresses repository.AddressRepository
	carts     repository.CartRepository
	gateway   wechatpay.Gateway
	hub       Broadcaster
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	orders repository.OrderRepository,
	addresses repository.AddressRepository,
	carts repository.CartRepository,
	gateway wechatpay.Gateway,
	hub Broadcaster,
) *OrderUseCase {
	return &OrderUseCase{
		orders:    orders,
		addresses: addresses,
		carts:     carts,
		gateway:   gateway,
		hub:       hub,
	}
}

const numberRetries = 3

// newOrderNumber allocates a business number: a UTC timestamp plus six random
// digits. The caller retries on a unique-constraint collision.
func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("%s%06d", now.UTC().Format("20060102150405"), rand.Intn(1_000_000))
}

// Submit creates an order in PendingPayment from the user's cart snapshot.
// The order, its frozen lines, and the cart clear land in one transaction.
func (u *OrderUseCase) Submit(ctx context.Context, userID int64, in SubmitOrder) (*model.Order, error) {
	address, err := u.addresses.GetByID(ctx, in.AddressID)
	if err != nil {
		return nil, err
	}

	items, err := u.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domainErrors.ErrEmptyCart
	}

	now := time.Now()
	order := &model.Order{
		UserID:                userID,
		AddressID:             address.ID,
		Status:                model.OrderStatusPendingPayment,
		PayStatus:             model.PayStatusUnpaid,
		PayMethod:             in.PayMethod,
		Remark:                in.Remark,
		Phone:                 address.Phone,
		Address:               address.Detail,
		Consignee:             address.Consignee,
		OrderTime:             now,
		EstimatedDeliveryTime: in.EstimatedDeliveryTime,
		TablewareNumber:       in.TablewareNumber,
	}

	lines := make([]model.OrderLine, 0, len(items))
	for _, item := range items {
		order.Amount = order.Amount.Add(item.Amount)
		lines = append(lines, model.OrderLine{
			DishID:    item.DishID,
			SetmealID: item.SetmealID,
			Name:      item.Name,
			Flavor:    item.Flavor,
			Quantity:  item.Quantity,
			Amount:    item.Amount,
			Image:     item.Image,
		})
	}

	var created *model.Order
	for attempt := 0; attempt < numberRetries; attempt++ {
		order.Number = newOrderNumber(now)
		created, err = u.orders.Submit(ctx, order, lines)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, domainErrors.ErrConflict) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("allocate order number: %w", err)
}

// Confirm moves a ToBeConfirmed order to Confirmed.
func (u *OrderUseCase) Confirm(ctx context.Context, orderID int64) error {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !model.CanTransition(order.Status, model.OrderStatusConfirmed) {
		return domainErrors.ErrOrderStatus
	}

	return u.orders.ApplyTransition(ctx, repository.StatusTransition{
		OrderID:        orderID,
		ExpectedStatus: order.Status,
		Status:         model.OrderStatusConfirmed,
	})
}

// Reject cancels a ToBeConfirmed order on the merchant's behalf. A paid order
// is refunded first; a failed refund aborts the transition.
func (u *OrderUseCase) Reject(ctx context.Context, orderID int64, reason string) error {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != model.OrderStatusToBeConfirmed {
		return domainErrors.ErrOrderStatus
	}

	tr := repository.StatusTransition{
		OrderID:         orderID,
		ExpectedStatus:  model.OrderStatusToBeConfirmed,
		Status:          model.OrderStatusCancelled,
		RejectionReason: reason,
	}
	now := time.Now()
	tr.CancelTime = &now

	if order.PayStatus == model.PayStatusPaid {
		if err := u.gateway.Refund(ctx, order.Number, order.Number, order.Amount, order.Amount); err != nil {
			return err
		}
		refunded := model.PayStatusRefunded
		tr.PayStatus = &refunded
	}

	return u.orders.ApplyTransition(ctx, tr)
}

// Cancel cancels an order for a user or merchant while it has not been
// confirmed yet. A paid order is refunded before the status flips.
func (u *OrderUseCase) Cancel(ctx context.Context, orderID int64, reason string, actor Actor) error {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Status.Cancellable() {
		return domainErrors.ErrOrderStatus
	}

	if reason == "" {
		reason = fmt.Sprintf("cancelled by %s", actor)
	}
	tr := repository.StatusTransition{
		OrderID:        orderID,
		ExpectedStatus: order.Status,
		Status:         model.OrderStatusCancelled,
		CancelReason:   reason,
	}
	now := time.Now()
	tr.CancelTime = &now

	if order.PayStatus == model.PayStatusPaid {
		if err := u.gateway.Refund(ctx, order.Number, order.Number, order.Amount, order.Amount); err != nil {
			return err
		}
		refunded := model.PayStatusRefunded
		tr.PayStatus = &refunded
	}

	return u.orders.ApplyTransition(ctx, tr)
}

// Dispatch moves a Confirmed order into delivery.
func (u *OrderUseCase) Dispatch(ctx context.Context, orderID int64) error {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !model.CanTransition(order.Status, model.OrderStatusDeliveryInProgress) {
		return domainErrors.ErrOrderStatus
	}

	return u.orders.ApplyTransition(ctx, repository.StatusTransition{
		OrderID:        orderID,
		ExpectedStatus: order.Status,
		Status:         model.OrderStatusDeliveryInProgress,
	})
}

// Complete finishes a delivery and stamps the delivery time.
func (u *OrderUseCase) Complete(ctx context.Context, orderID int64) error {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !model.CanTransition(order.Status, model.OrderStatusCompleted) {
		return domainErrors.ErrOrderStatus
	}

	now := time.Now()
	return u.orders.ApplyTransition(ctx, repository.StatusTransition{
		OrderID:        orderID,
		ExpectedStatus: order.Status,
		Status:         model.OrderStatusCompleted,
		DeliveryTime:   &now,
	})
}

// Remind emits a customer reminder for an existing order; no state changes.
func (u *OrderUseCase) Remind(ctx context.Context, orderID int64) error {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	u.hub.Broadcast(model.Notification{
		Kind:    model.NotificationCustomerReminder,
		OrderID: order.ID,
		Content: "order number: " + order.Number,
	})
	return nil
}

// Repeat re-materializes the frozen lines of a past order as fresh cart
// entries for the same user. A read path: order state is untouched.
func (u *OrderUseCase) Repeat(ctx context.Context, userID, orderID int64) error {
	if _, err := u.orders.GetByID(ctx, orderID); err != nil {
		return err
	}
	lines, err := u.orders.LinesByOrder(ctx, orderID)
	if err != nil {
		return err
	}

	now := time.Now()
	items := make([]model.CartItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, model.CartItem{
			UserID:    userID,
			DishID:    line.DishID,
			SetmealID: line.SetmealID,
			Name:      line.Name,
			Flavor:    line.Flavor,
			Quantity:  line.Quantity,
			Amount:    line.Amount,
			Image:     line.Image,
			CreatedAt: now,
		})
	}
	return u.carts.AddBatch(ctx, items)
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func normalizePage(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return (page - 1) * size, size
}

// HistoryEntry pairs an order with its frozen lines for list views.
type HistoryEntry struct {
	Order model.Order
	Lines []model.OrderLine
}

// HistoryPage is one page of a user's order history.
type HistoryPage struct {
	Total   int64
	Entries []HistoryEntry
}

// History returns a page of the user's own orders, newest first, each with
// its frozen lines. An optional status narrows the listing.
func (u *OrderUseCase) History(ctx context.Context, userID int64, status *model.OrderStatus, page, size int) (*HistoryPage, error) {
	offset, limit := normalizePage(page, size)
	orders, total, err := u.orders.ListPage(ctx, repository.OrderPageFilter{
		UserID: &userID,
		Status: status,
	}, offset, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(orders))
	for _, order := range orders {
		lines, err := u.orders.LinesByOrder(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, HistoryEntry{Order: order, Lines: lines})
	}
	return &HistoryPage{Total: total, Entries: entries}, nil
}

// SearchQuery narrows the merchant's order search. Number and Phone match as
// substrings; From/To bound the order time.
type SearchQuery struct {
	Number string
	Phone  string
	Status *model.OrderStatus
	From   *time.Time
	To     *time.Time
}

// SearchEntry pairs an order with a short line summary for merchant lists.
type SearchEntry struct {
	Order  model.Order
	Dishes string
}

// SearchPage is one page of a merchant condition search.
type SearchPage struct {
	Total   int64
	Entries []SearchEntry
}

// Search returns a page of orders matching the merchant's filters, newest
// first, each summarized as a "name*quantity;" line digest.
func (u *OrderUseCase) Search(ctx context.Context, q SearchQuery, page, size int) (*SearchPage, error) {
	offset, limit := normalizePage(page, size)
	orders, total, err := u.orders.ListPage(ctx, repository.OrderPageFilter{
		Status: q.Status,
		Number: q.Number,
		Phone:  q.Phone,
		From:   q.From,
		To:     q.To,
	}, offset, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]SearchEntry, 0, len(orders))
	for _, order := range orders {
		lines, err := u.orders.LinesByOrder(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		var digest strings.Builder
		for _, line := range lines {
			fmt.Fprintf(&digest, "%s*%d;", line.Name, line.Quantity)
		}
		entries = append(entries, SearchEntry{Order: order, Dishes: digest.String()})
	}
	return &SearchPage{Total: total, Entries: entries}, nil
}

// Details returns an order together with its frozen lines.
func (u *OrderUseCase) Details(ctx context.Context, orderID int64) (*model.Order, []model.OrderLine, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := u.orders.LinesByOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, lines, nil
}
