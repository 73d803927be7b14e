package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of a user's shopping cart. The order core only reads
// cart snapshots at submission time and writes fresh entries on repeat orders;
// cart mutation endpoints live elsewhere.
type CartItem struct {
	ID        int64
	UserID    int64
	DishID    *int64
	SetmealID *int64
	Name      string
	Flavor    string
	Quantity  int
	Amount    decimal.Decimal
	Image     string
	CreatedAt time.Time
}

// Address is the delivery address record referenced by an order submission.
type Address struct {
	ID        int64
	UserID    int64
	Consignee string
	Phone     string
	Detail    string
}
