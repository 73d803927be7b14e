package model

// PaymentIntent carries the opaque fields a client payment widget needs to
// start a payment. Produced by the payment gateway, passed through unchanged.
type PaymentIntent struct {
	TimeStamp string `json:"timeStamp"`
	NonceStr  string `json:"nonceStr"`
	Package   string `json:"packageStr"`
	SignType  string `json:"signType"`
	PaySign   string `json:"paySign"`
}
