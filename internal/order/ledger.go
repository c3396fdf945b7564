package order

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/pharmacy-pos/internal/pricing"
)

// Line is a point-in-time snapshot of one purchased product. Values are
// copied at purchase time so later catalog changes never alter history.
type Line struct {
	Name      string
	UnitPrice pricing.Money
	Qty       int
}

// Order is an immutable record of a completed transaction. Total is the
// final charged amount after discount and redemption.
type Order struct {
	ID         uuid.UUID
	CustomerID string
	Lines      []Line
	Total      pricing.Money
	Earned     int64
	PlacedAt   time.Time
}

// Ledger is the append-only history of completed orders, indexed by
// customer.
type Ledger struct {
	orders     []Order
	byCustomer map[string][]int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{byCustomer: make(map[string][]int)}
}

// Append records a completed order.
func (l *Ledger) Append(o Order) {
	l.orders = append(l.orders, o)
	l.byCustomer[o.CustomerID] = append(l.byCustomer[o.CustomerID], len(l.orders)-1)
}

// ForCustomer returns the customer's orders in append order. The slice is a
// copy; ledger records are never handed out for mutation.
func (l *Ledger) ForCustomer(customerID string) []Order {
	idx := l.byCustomer[customerID]
	if len(idx) == 0 {
		return nil
	}
	out := make([]Order, 0, len(idx))
	for _, i := range idx {
		out = append(out, cloneOrder(l.orders[i]))
	}
	return out
}

// All returns every order in append order.
func (l *Ledger) All() []Order {
	if len(l.orders) == 0 {
		return nil
	}
	out := make([]Order, 0, len(l.orders))
	for _, o := range l.orders {
		out = append(out, cloneOrder(o))
	}
	return out
}

// cloneOrder copies the order and its lines so callers cannot reach the
// stored record through the shared backing array.
func cloneOrder(o Order) Order {
	o.Lines = slices.Clone(o.Lines)
	return o
}

// Len reports the number of recorded orders.
func (l *Ledger) Len() int {
	return len(l.orders)
}
