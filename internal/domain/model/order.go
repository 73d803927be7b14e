package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes the order lifecycle position.
type OrderStatus int

const (
	OrderStatusPendingPayment     OrderStatus = 1
	OrderStatusToBeConfirmed      OrderStatus = 2
	OrderStatusConfirmed          OrderStatus = 3
	OrderStatusDeliveryInProgress OrderStatus = 4
	OrderStatusCompleted          OrderStatus = 5
	OrderStatusCancelled          OrderStatus = 6
)

// PayStatus describes the payment state of an order.
type PayStatus int

const (
	PayStatusUnpaid   PayStatus = 0
	PayStatusPaid     PayStatus = 1
	PayStatusRefunded PayStatus = 2
)

// Order is the unit of a customer's purchase with its lifecycle status.
// Recipient fields are frozen copies of the address record at submission time.
type Order struct {
	ID                    int64
	Number                string
	UserID                int64
	AddressID             int64
	Status                OrderStatus
	PayStatus             PayStatus
	PayMethod             int
	Amount                decimal.Decimal
	Remark                string
	Phone                 string
	Address               string
	Consignee             string
	CancelReason          string
	RejectionReason       string
	OrderTime             time.Time
	CheckoutTime          *time.Time
	CancelTime            *time.Time
	EstimatedDeliveryTime *time.Time
	DeliveryTime          *time.Time
	TablewareNumber       int
}

// transitions lists the allowed forward moves of the status machine.
// Cancelled is additionally reachable from every pre-delivery state.
var transitions = map[OrderStatus]OrderStatus{
	OrderStatusPendingPayment:     OrderStatusToBeConfirmed,
	OrderStatusToBeConfirmed:      OrderStatusConfirmed,
	OrderStatusConfirmed:          OrderStatusDeliveryInProgress,
	OrderStatusDeliveryInProgress: OrderStatusCompleted,
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	if to == OrderStatusCancelled {
		return from == OrderStatusPendingPayment || from == OrderStatusToBeConfirmed
	}
	return transitions[from] == to
}

// Cancellable reports whether a user or merchant may still cancel the order.
func (s OrderStatus) Cancellable() bool {
	return s <= OrderStatusToBeConfirmed
}
