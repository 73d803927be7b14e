package model

// NotificationKind distinguishes operator notification messages.
type NotificationKind int

const (
	NotificationPaymentReceived  NotificationKind = 1
	NotificationCustomerReminder NotificationKind = 2
)

// Notification is an immutable message broadcast to connected operator clients.
type Notification struct {
	Kind    NotificationKind `json:"type"`
	OrderID int64            `json:"orderId"`
	Content string           `json:"content"`
}
