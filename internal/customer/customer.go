package customer

// Tier classifies a customer's loyalty tier.
type Tier string

const (
	TierBasic Tier = "basic"
	TierVIP   Tier = "vip"
)

// DefaultVIPDiscountRate applies when a VIP record carries no explicit rate.
const DefaultVIPDiscountRate = 0.08

// Customer is a loyalty account. The reward balance changes only through
// AddPoints; a purchase bakes redemption into a single net delta, so the
// balance may legitimately go negative. Order history lives in the ledger,
// keyed by customer ID.
type Customer struct {
	ID           string
	Name         string
	Tier         Tier
	DiscountRate float64 // VIP only
	Balance      int64
}

// AddPoints applies a reward delta to the balance.
func (c *Customer) AddPoints(delta int64) {
	c.Balance += delta
}
