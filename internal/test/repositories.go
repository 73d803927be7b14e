package test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/feastline/ordercore/internal/domain/errors"
	"github.com/feastline/ordercore/internal/domain/model"
	"github.com/feastline/ordercore/internal/domain/repository"
)

// OrderRepositoryStub stores orders in-memory and emulates the compare-and-set
// semantics of the real repository.
type OrderRepositoryStub struct {
	mu           sync.Mutex
	Orders       map[int64]*model.Order
	Lines        map[int64][]model.OrderLine
	Next         int64
	SubmitFn     func(context.Context, *model.Order, []model.OrderLine) (*model.Order, error)
	TransitionFn func(context.Context, repository.StatusTransition) error
	Transitions  []repository.StatusTransition
}

// NewOrderRepositoryStub constructs stub repository with initialized maps.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		Orders: make(map[int64]*model.Order),
		Lines:  make(map[int64][]model.OrderLine),
		Next:   1,
	}
}

// Put seeds an order, assigning an id when absent.
func (s *OrderRepositoryStub) Put(order model.Order) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == 0 {
		order.ID = s.Next
		s.Next++
	} else if order.ID >= s.Next {
		s.Next = order.ID + 1
	}
	stored := order
	s.Orders[stored.ID] = &stored
	return &stored
}

// Count reports the number of stored orders.
func (s *OrderRepositoryStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Orders)
}

// Submit persists the order with its lines; a duplicate business number
// trips the same conflict the real storage reports.
func (s *OrderRepositoryStub) Submit(ctx context.Context, order *model.Order, lines []model.OrderLine) (*model.Order, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, order, lines)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Orders {
		if existing.Number == order.Number {
			return nil, domainErrors.ErrConflict
		}
	}

	stored := *order
	stored.ID = s.Next
	s.Next++
	s.Orders[stored.ID] = &stored

	frozen := make([]model.OrderLine, len(lines))
	copy(frozen, lines)
	for i := range frozen {
		frozen[i].OrderID = stored.ID
	}
	s.Lines[stored.ID] = frozen

	result := stored
	return &result, nil
}

// GetByID fetches order by id or returns not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.Orders[id]; ok {
		result := *order
		return &result, nil
	}
	return nil, domainErrors.ErrOrderNotFound
}

// GetByNumber fetches order by business number or returns not found.
func (s *OrderRepositoryStub) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.Orders {
		if order.Number == number {
			result := *order
			return &result, nil
		}
	}
	return nil, domainErrors.ErrOrderNotFound
}

// LinesByOrder returns the frozen lines of an order.
func (s *OrderRepositoryStub) LinesByOrder(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]model.OrderLine, len(s.Lines[orderID]))
	copy(lines, s.Lines[orderID])
	return lines, nil
}

// ListStaleByStatus filters stored orders by status and order time.
func (s *OrderRepositoryStub) ListStaleByStatus(ctx context.Context, status model.OrderStatus, before time.Time) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, order := range s.Orders {
		if order.Status == status && order.OrderTime.Before(before) {
			result = append(result, *order)
		}
	}
	return result, nil
}

// ListPage filters, sorts newest first, and slices one page of orders.
func (s *OrderRepositoryStub) ListPage(ctx context.Context, f repository.OrderPageFilter, offset, limit int) ([]model.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []model.Order
	for _, order := range s.Orders {
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

// ApplyTransition emulates the conditional update of the real storage.
func (s *OrderRepositoryStub) ApplyTransition(ctx context.Context, tr repository.StatusTransition) error {
	if s.TransitionFn != nil {
		if err := s.TransitionFn(ctx, tr); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[tr.OrderID]
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
	s.Transitions = append(s.Transitions, tr)
	return nil
}

// AppliedTransitions returns a copy of the recorded transitions.
func (s *OrderRepositoryStub) AppliedTransitions() []repository.StatusTransition {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]repository.StatusTransition, len(s.Transitions))
	copy(result, s.Transitions)
	return result
}

// AddressRepositoryStub resolves addresses from a fixed map.
type AddressRepositoryStub struct {
	Addresses map[int64]*model.Address
}

// GetByID fetches address or returns not found.
func (s *AddressRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Address, error) {
	if address, ok := s.Addresses[id]; ok {
		return address, nil
	}
	return nil, domainErrors.ErrAddressNotFound
}

// CartRepositoryStub stores cart items in-memory.
type CartRepositoryStub struct {
	mu    sync.Mutex
	Items []model.CartItem
}

// ListByUser returns the user's cart lines.
func (s *CartRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.CartItem
	for _, item := range s.Items {
		if item.UserID == userID {
			result = append(result, item)
		}
	}
	return result, nil
}

// AddBatch appends items to the cart.
func (s *CartRepositoryStub) AddBatch(ctx context.Context, items []model.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Items = append(s.Items, items...)
	return nil
}
