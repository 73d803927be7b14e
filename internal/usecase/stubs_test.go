package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/feastline/ordercore/internal/domain/errors"
	"github.com/feastline/ordercore/internal/domain/model"
	"github.com/feastline/ordercore/internal/domain/repository"
)

// orderRepoStub keeps orders in a map and emulates the conditional update of
// the real repository.
type orderRepoStub struct {
	mu           sync.Mutex
	orders       map[int64]*model.Order
	lines        map[int64][]model.OrderLine
	next         int64
	submitFn     func(context.Context, *model.Order, []model.OrderLine) (*model.Order, error)
	transitionFn func(context.Context, repository.StatusTransition) error
	transitions  []repository.StatusTransition
}

func newOrderRepoStub() *orderRepoStub {
	return &orderRepoStub{
		orders: make(map[int64]*model.Order),
		lines:  make(map[int64][]model.OrderLine),
		next:   1,
	}
}

func (s *orderRepoStub) put(order model.Order) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == 0 {
		order.ID = s.next
		s.next++
	} else if order.ID >= s.next {
		s.next = order.ID + 1
	}
	stored := order
	s.orders[stored.ID] = &stored
	return &stored
}

func (s *orderRepoStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *orderRepoStub) Submit(ctx context.Context, order *model.Order, lines []model.OrderLine) (*model.Order, error) {
	if s.submitFn != nil {
		return s.submitFn(ctx, order, lines)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orders {
		if existing.Number == order.Number {
			return nil, domainErrors.ErrConflict
		}
	}

	stored := *order
	stored.ID = s.next
	s.next++
	s.orders[stored.ID] = &stored

	frozen := make([]model.OrderLine, len(lines))
	copy(frozen, lines)
	for i := range frozen {
		frozen[i].OrderID = stored.ID
	}
	s.lines[stored.ID] = frozen

	result := stored
	return &result, nil
}

func (s *orderRepoStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.orders[id]; ok {
		result := *order
		return &result, nil
	}
	return nil, domainErrors.ErrOrderNotFound
}

func (s *orderRepoStub) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		if order.Number == number {
			result := *order
			return &result, nil
		}
	}
	return nil, domainErrors.ErrOrderNotFound
}

func (s *orderRepoStub) LinesByOrder(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]model.OrderLine, len(s.lines[orderID]))
	copy(lines, s.lines[orderID])
	return lines, nil
}

func (s *orderRepoStub) ListStaleByStatus(ctx context.Context, status model.OrderStatus, before time.Time) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, order := range s.orders {
		if order.Status == status && order.OrderTime.Before(before) {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (s *orderRepoStub) ListPage(ctx context.Context, f repository.OrderPageFilter, offset, limit int) ([]model.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []model.Order
	for _, order := range s.orders {
		if f.UserID != nil && order.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && order.Status != *f.Status {
			continue
		}
		if f.Number != "" && !strings.Contains(order.Number, f.Number) {
			continue
		}
		if f.Phone != "" && !strings.Contains(order.Phone, f.Phone) {
			continue
		}
		if f.From != nil && order.OrderTime.Before(*f.From) {
			continue
		}
		if f.To != nil && order.OrderTime.After(*f.To) {
			continue
		}
		matched = append(matched, *order)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].OrderTime.After(matched[j].OrderTime) })

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *orderRepoStub) ApplyTransition(ctx context.Context, tr repository.StatusTransition) error {
	if s.transitionFn != nil {
		if err := s.transitionFn(ctx, tr); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[tr.OrderID]
	if !ok {
		return domainErrors.ErrOrderNotFound
	}
	if order.Status != tr.ExpectedStatus {
		return domainErrors.ErrConflict
	}
	if tr.ExpectedPayStatus != nil && order.PayStatus != *tr.ExpectedPayStatus {
		return domainErrors.ErrConflict
	}

	order.Status = tr.Status
	if tr.PayStatus != nil {
		order.PayStatus = *tr.PayStatus
	}
	if tr.CancelReason != "" {
		order.CancelReason = tr.CancelReason
	}
	if tr.RejectionReason != "" {
		order.RejectionReason = tr.RejectionReason
	}
	if tr.CancelTime != nil {
		order.CancelTime = tr.CancelTime
	}
	if tr.CheckoutTime != nil {
		order.CheckoutTime = tr.CheckoutTime
	}
	if tr.DeliveryTime != nil {
		order.DeliveryTime = tr.DeliveryTime
	}
	s.transitions = append(s.transitions, tr)
	return nil
}

func (s *orderRepoStub) appliedTransitions() []repository.StatusTransition {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]repository.StatusTransition, len(s.transitions))
	copy(result, s.transitions)
	return result
}

type addressRepoStub struct {
	addresses map[int64]*model.Address
}

func (s *addressRepoStub) GetByID(ctx context.Context, id int64) (*model.Address, error) {
	if address, ok := s.addresses[id]; ok {
		return address, nil
	}
	return nil, domainErrors.ErrAddressNotFound
}

type cartRepoStub struct {
	mu    sync.Mutex
	items []model.CartItem
}

func (s *cartRepoStub) ListByUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.CartItem
	for _, item := range s.items {
		if item.UserID == userID {
			result = append(result, item)
		}
	}
	return result, nil
}

func (s *cartRepoStub) AddBatch(ctx context.Context, items []model.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
	return nil
}

type refundCall struct {
	outTradeNo  string
	outRefundNo string
	refund      decimal.Decimal
	total       decimal.Decimal
}

type gatewayStub struct {
	mu          sync.Mutex
	payFn       func(ctx context.Context, orderNumber string, amount decimal.Decimal, description string) (*model.PaymentIntent, error)
	refundFn    func(ctx context.Context, outTradeNo, outRefundNo string, refund, total decimal.Decimal) error
	payCalls    []string
	refundCalls []refundCall
}

func (s *gatewayStub) Pay(ctx context.Context, orderNumber string, amount decimal.Decimal, description string) (*model.PaymentIntent, error) {
	s.mu.Lock()
	s.payCalls = append(s.payCalls, orderNumber)
	s.mu.Unlock()
	if s.payFn != nil {
		return s.payFn(ctx, orderNumber, amount, description)
	}
	return &model.PaymentIntent{NonceStr: "stub", Package: "prepay_id=stub", SignType: "RSA"}, nil
}

func (s *gatewayStub) Refund(ctx context.Context, outTradeNo, outRefundNo string, refund, total decimal.Decimal) error {
	s.mu.Lock()
	s.refundCalls = append(s.refundCalls, refundCall{
		outTradeNo:  outTradeNo,
		outRefundNo: outRefundNo,
		refund:      refund,
		total:       total,
	})
	s.mu.Unlock()
	if s.refundFn != nil {
		return s.refundFn(ctx, outTradeNo, outRefundNo, refund, total)
	}
	return nil
}

func (s *gatewayStub) refundCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.refundCalls)
}

type hubRecorder struct {
	mu            sync.Mutex
	notifications []model.Notification
}

func (s *hubRecorder) Broadcast(n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
}

func (s *hubRecorder) sent() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.Notification, len(s.notifications))
	copy(result, s.notifications)
	return result
}
