package pricing

import "math"

// DefaultRewardRate is the reward rate both tiers start with.
const DefaultRewardRate = 1.0

// TierRates holds the reward rates shared by every customer of a tier.
// Changing a rate affects the next computation for all customers of that
// tier; the catalog owns the single authoritative copy.
type TierRates struct {
	Basic float64
	VIP   float64
}

// DefaultTierRates returns the starting rates for both tiers.
func DefaultTierRates() TierRates {
	return TierRates{Basic: DefaultRewardRate, VIP: DefaultRewardRate}
}

// Policy computes the reward points earned for a given spend.
type Policy interface {
	Reward(spend Money) int64
}

// Discounter is the optional capability of a policy to grant a spend discount.
type Discounter interface {
	Discount(spend Money) Money
}

// BasicPolicy applies the shared basic-tier reward rate to the full spend.
type BasicPolicy struct {
	Rate float64
}

// Reward returns round(spend in dollars × rate) points.
func (p BasicPolicy) Reward(spend Money) int64 {
	return int64(math.Round(Dollars(spend) * p.Rate))
}

// VIPPolicy grants a per-customer discount and earns rewards on the
// discounted amount.
type VIPPolicy struct {
	Rate         float64
	DiscountRate float64
}

// Discount returns round(spend × discount rate) in minor units.
func (p VIPPolicy) Discount(spend Money) Money {
	return Money(math.Round(float64(spend) * p.DiscountRate))
}

// Reward applies the discount internally and earns on the remainder.
func (p VIPPolicy) Reward(spend Money) int64 {
	discounted := spend - p.Discount(spend)
	return int64(math.Round(Dollars(discounted) * p.Rate))
}
