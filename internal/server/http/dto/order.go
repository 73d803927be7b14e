package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmitRequest is the order submission body. The client-supplied amount is
// carried for wire compatibility; the core recomputes the total from the
// frozen cart lines and does not trust it.
type SubmitRequest struct {
	AddressID             int64           `json:"addressId" binding:"required"`
	PayMethod             int             `json:"payMethod"`
	Remark                string          `json:"remark"`
	EstimatedDeliveryTime *time.Time      `json:"estimatedDeliveryTime"`
	TablewareNumber       int             `json:"tablewareNumber"`
	Amount                decimal.Decimal `json:"amount"`
}

// SubmitResponse returns the identifiers the client needs to pay.
type SubmitResponse struct {
	ID          int64           `json:"id"`
	OrderTime   time.Time       `json:"orderTime"`
	OrderNumber string          `json:"orderNumber"`
	OrderAmount decimal.Decimal `json:"orderAmount"`
}

// PaymentRequest asks for a payment intent for a submitted order.
type PaymentRequest struct {
	OrderNumber string `json:"orderNumber" binding:"required"`
	PayMethod   int    `json:"payMethod"`
}

// CancelRequest optionally carries a cancellation reason.
type CancelRequest struct {
	Reason string `json:"cancelReason"`
}

// ConfirmRequest identifies the order a merchant accepts.
type ConfirmRequest struct {
	ID int64 `json:"id" binding:"required"`
}

// RejectionRequest identifies the order a merchant rejects and why.
type RejectionRequest struct {
	ID              int64  `json:"id" binding:"required"`
	RejectionReason string `json:"rejectionReason" binding:"required"`
}

// AdminCancelRequest identifies the order a merchant cancels and why.
type AdminCancelRequest struct {
	ID           int64  `json:"id" binding:"required"`
	CancelReason string `json:"cancelReason"`
}

// OrderLineResponse is one frozen line of an order detail view.
type OrderLineResponse struct {
	Name     string          `json:"name"`
	Flavor   string          `json:"dishFlavor,omitempty"`
	Quantity int             `json:"number"`
	Amount   decimal.Decimal `json:"amount"`
	Image    string          `json:"image,omitempty"`
}

// OrderResponse is the order detail view; list endpoints reuse it with the
// lines omitted and OrderDishes carrying a short digest instead.
type OrderResponse struct {
	ID           int64               `json:"id"`
	Number       string              `json:"number"`
	Status       int                 `json:"status"`
	PayStatus    int                 `json:"payStatus"`
	Amount       decimal.Decimal     `json:"amount"`
	Phone        string              `json:"phone"`
	Address      string              `json:"address"`
	Consignee    string              `json:"consignee"`
	OrderTime    time.Time           `json:"orderTime"`
	CheckoutTime *time.Time          `json:"checkoutTime,omitempty"`
	CancelReason string              `json:"cancelReason,omitempty"`
	OrderDishes  string              `json:"orderDishes,omitempty"`
	Lines        []OrderLineResponse `json:"orderDetailList,omitempty"`
}

// PagedOrdersResponse is one page of order views plus the total match count.
type PagedOrdersResponse struct {
	Total   int64           `json:"total"`
	Records []OrderResponse `json:"records"`
}
