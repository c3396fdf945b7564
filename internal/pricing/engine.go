package pricing

// PointsPerRedemption is the number of reward points consumed per redemption
// step, and RedemptionValue the whole-currency amount one step is worth.
const (
	PointsPerRedemption = 100
	RedemptionValue     = 10
)

// Item describes a line item used for pricing calculation.
type Item struct {
	Name      string
	Qty       int
	UnitPrice Money
}

// Quote aggregates the computed components of a transaction.
type Quote struct {
	Original      Money
	Discount      Money
	PreRedemption Money
	Redeemed      Money
	Final         Money
	Earned        int64
	NetPoints     int64
}

// Compute prices a transaction for the given tier policy and reward balance.
// It is pure: committing the order and applying NetPoints to the customer
// balance is the caller's single atomic step.
//
// The earned figure comes from the policy applied to the original cost; the
// VIP policy re-derives its discount internally, so the discount enters the
// reward path a second time independently of the charged total. That matches
// the system this replaces and is kept as-is.
func Compute(policy Policy, items []Item, balance int64) Quote {
	var original Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		original += Money(it.Qty) * it.UnitPrice
	}

	var discount Money
	if d, ok := policy.(Discounter); ok {
		discount = d.Discount(original)
	}
	pre := original - discount

	// Every 100 points redeems 10 whole currency units, capped at the
	// pre-redemption total truncated to whole units.
	redeemDollars := balance / PointsPerRedemption * RedemptionValue
	if limit := pre / 100; redeemDollars > limit {
		redeemDollars = limit
	}
	if redeemDollars < 0 {
		redeemDollars = 0
	}
	redeemed := redeemDollars * 100

	var earned int64
	if policy != nil {
		earned = policy.Reward(original)
	}

	return Quote{
		Original:      original,
		Discount:      discount,
		PreRedemption: pre,
		Redeemed:      redeemed,
		Final:         pre - redeemed,
		Earned:        earned,
		NetPoints:     earned - redeemDollars*RedemptionValue,
	}
}
