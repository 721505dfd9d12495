// Package ledger keeps products, customers, orders and notifications
// consistent with each other. Every operation is a pure function from the
// current collection and an intent to a new collection plus the notification
// the change warrants. Callers commit the returned slices as the new state;
// inputs are never modified.
package ledger

import (
	"errors"
	"time"

	"chidi/internal/domain"
)

var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("order status transition not allowed")
)

// now is the ledger clock.
var now = time.Now

const (
	lowStockMax = 3

	vipOrderCount = 10
	vipSpend      = 250000

	justNow = "Just now"
)

// ResolveStatus maps a stock quantity to its status: 0 is out, 1 to 3 is
// low, anything above is good. Callers clamp negatives.
func ResolveStatus(stock int) domain.StockStatus {
	switch {
	case stock == 0:
		return domain.StockOut
	case stock <= lowStockMax:
		return domain.StockLow
	default:
		return domain.StockGood
	}
}
