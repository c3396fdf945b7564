package checkout

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pharmacy-pos/internal/catalog"
	"github.com/noah-isme/pharmacy-pos/internal/common"
	"github.com/noah-isme/pharmacy-pos/internal/customer"
	"github.com/noah-isme/pharmacy-pos/internal/events"
	"github.com/noah-isme/pharmacy-pos/internal/order"
	"github.com/noah-isme/pharmacy-pos/internal/pricing"
)

var (
	// ErrCustomerNotFound is returned for an ID-shaped token with no match.
	ErrCustomerNotFound = errors.New("no such customer id")
	// ErrInvalidCustomerName is returned when a new-customer token is not
	// purely alphabetic.
	ErrInvalidCustomerName = errors.New("customer name must contain only alphabetic characters")
	// ErrProductNotFound is returned when a requested product cannot be
	// resolved.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidQuantity is returned for a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be a positive whole number")
	// ErrNothingToPurchase is returned when prescription filtering removes
	// every line.
	ErrNothingToPurchase = errors.New("no eligible products to purchase")
)

// ItemRequest names one product (by ID or name) and a quantity.
type ItemRequest struct {
	Token string
	Qty   int
}

// Receipt is the structured result of a committed purchase.
type Receipt struct {
	Customer    *customer.Customer
	NewCustomer bool
	Lines       []order.Line
	Quote       pricing.Quote
	DroppedRx   []string
	Order       order.Order
}

// Service drives the purchase flow: resolve the customer and products, price
// the transaction, then commit the order and the balance delta as one step.
// Every validation runs before the first mutation, so a failed purchase
// leaves the catalog, customer list, and ledger untouched.
type Service struct {
	Catalog *catalog.Catalog
	Ledger  *order.Ledger
	Log     zerolog.Logger
	Bus     *events.Bus
	Now     func() time.Time
}

// Purchase executes one transaction. An unknown alphabetic token registers a
// new basic customer as part of the commit. rxConfirm is consulted once when
// any requested product requires a prescription; declining drops those lines.
func (s *Service) Purchase(customerToken string, reqs []ItemRequest, rxConfirm func() bool) (*Receipt, error) {
	customerToken = strings.TrimSpace(customerToken)

	cust, found := s.Catalog.FindCustomer(customerToken)
	if !found {
		if err := s.ValidateCustomerToken(customerToken); err != nil {
			return nil, err
		}
	}

	lines, dropped, err := s.resolveLines(reqs, rxConfirm)
	if err != nil {
		return nil, err
	}

	balance := int64(0)
	var policy pricing.Policy
	if found {
		balance = cust.Balance
		policy = s.Catalog.PolicyFor(cust)
	} else {
		policy = pricing.BasicPolicy{Rate: s.Catalog.Rates().Basic}
	}

	items := make([]pricing.Item, 0, len(lines))
	for _, ln := range lines {
		items = append(items, pricing.Item{Name: ln.Name, Qty: ln.Qty, UnitPrice: ln.UnitPrice})
	}
	quote := pricing.Compute(policy, items, balance)

	// Commit point: everything below must succeed together.
	if !found {
		cust, err = s.Catalog.RegisterBasicCustomer(customerToken)
		if err != nil {
			return nil, err
		}
	}
	o := order.Order{
		ID:         uuid.New(),
		CustomerID: cust.ID,
		Lines:      lines,
		Total:      quote.Final,
		Earned:     quote.Earned,
		PlacedAt:   s.now(),
	}
	s.Ledger.Append(o)
	cust.AddPoints(quote.NetPoints)

	s.Log.Info().
		Str("order_id", o.ID.String()).
		Str("customer_id", cust.ID).
		Int64("total", quote.Final).
		Int64("earned", quote.Earned).
		Int64("net_points", quote.NetPoints).
		Msg("order_placed")
	_ = s.Bus.Emit(events.TopicOrderPlaced, o.ID.String(), map[string]any{
		"customer_id": cust.ID,
		"total":       quote.Final,
		"earned":      quote.Earned,
	})

	return &Receipt{
		Customer:    cust,
		NewCustomer: !found,
		Lines:       lines,
		Quote:       quote,
		DroppedRx:   dropped,
		Order:       o,
	}, nil
}

// resolveLines snapshots the requested products and applies prescription
// filtering. It performs no mutation.
func (s *Service) resolveLines(reqs []ItemRequest, rxConfirm func() bool) ([]order.Line, []string, error) {
	if len(reqs) == 0 {
		return nil, nil, ErrNothingToPurchase
	}
	rxNeeded := false
	lines := make([]order.Line, 0, len(reqs))
	rxFlags := make([]bool, 0, len(reqs))
	for _, req := range reqs {
		if req.Qty < 1 {
			return nil, nil, fmt.Errorf("%q: %w", req.Token, ErrInvalidQuantity)
		}
		p, ok := s.Catalog.FindProduct(req.Token)
		if !ok {
			return nil, nil, fmt.Errorf("%q: %w", req.Token, ErrProductNotFound)
		}
		lines = append(lines, order.Line{Name: p.Name, UnitPrice: p.UnitPrice, Qty: req.Qty})
		rxFlags = append(rxFlags, p.RxRequired)
		if p.RxRequired {
			rxNeeded = true
		}
	}
	if !rxNeeded {
		return lines, nil, nil
	}
	confirmed := rxConfirm != nil && rxConfirm()
	if confirmed {
		return lines, nil, nil
	}
	kept := lines[:0:0]
	var dropped []string
	for i, ln := range lines {
		if rxFlags[i] {
			dropped = append(dropped, ln.Name)
			continue
		}
		kept = append(kept, ln)
	}
	if len(kept) == 0 {
		return nil, nil, ErrNothingToPurchase
	}
	return kept, dropped, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ValidateCustomerToken reports whether the token can open a transaction:
// an existing customer, or an alphabetic name that would register a new
// basic customer at commit time. An ID-shaped token for a customer that
// does not exist is rejected rather than registered.
func (s *Service) ValidateCustomerToken(customerToken string) error {
	customerToken = strings.TrimSpace(customerToken)
	if _, found := s.Catalog.FindCustomer(customerToken); found {
		return nil
	}
	if looksLikeCustomerID(customerToken) {
		return fmt.Errorf("%q: %w", customerToken, ErrCustomerNotFound)
	}
	if !common.IsAlphabetic(customerToken) {
		return fmt.Errorf("%q: %w", customerToken, ErrInvalidCustomerName)
	}
	return nil
}

// looksLikeCustomerID matches a tier prefix followed by digits.
func looksLikeCustomerID(token string) bool {
	if len(token) < 2 || (token[0] != 'B' && token[0] != 'V') {
		return false
	}
	for _, r := range token[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
