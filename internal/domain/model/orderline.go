package model

import "github.com/shopspring/decimal"

// OrderLine is a frozen snapshot of one product or bundle within an order.
// It is copied from the cart at submission time and never mutated.
type OrderLine struct {
	ID        int64
	OrderID   int64
	DishID    *int64
	SetmealID *int64
	Name      string
	Flavor    string
	Quantity  int
	Amount    decimal.Decimal
	Image     string
}
