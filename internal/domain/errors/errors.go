package errors

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderStatus        = errors.New("order status does not allow this operation")
	ErrAddressNotFound    = errors.New("address not found")
	ErrEmptyCart          = errors.New("shopping cart is empty")
	ErrAlreadyPaid        = errors.New("order already paid")
	ErrPaymentGateway     = errors.New("payment gateway failure")
	ErrRefundGateway      = errors.New("refund gateway failure")
	ErrCallbackDecryption = errors.New("payment callback decryption failure")
	ErrConflict           = errors.New("order was modified concurrently")
)
