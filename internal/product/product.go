package product

import (
	"math"

	"github.com/noah-isme/pharmacy-pos/internal/pricing"
)

// BundleFactor is the fraction of the summed component prices a bundle sells
// for.
const BundleFactor = 0.8

// Product is a catalog entry. Simple products carry a stored unit price and
// prescription flag; bundles (non-empty Components) derive both from their
// referenced components and cache the result until the next recompute.
type Product struct {
	ID         string
	Name       string
	UnitPrice  pricing.Money
	RxRequired bool
	Components []string
}

// IsBundle reports whether the product is a composite bundle.
func (p *Product) IsBundle() bool {
	return len(p.Components) > 0
}

// Derive computes a bundle's unit price and prescription flag from its
// component references. Components that do not resolve contribute nothing;
// bundles nested inside bundles are unsupported input and are skipped. A
// bundle with no resolvable components prices at zero with no prescription.
func Derive(components []string, resolve func(string) (*Product, bool)) (pricing.Money, bool) {
	var sum pricing.Money
	rx := false
	for _, ref := range components {
		comp, ok := resolve(ref)
		if !ok || comp == nil || comp.IsBundle() {
			continue
		}
		sum += comp.UnitPrice
		if comp.RxRequired {
			rx = true
		}
	}
	return pricing.Money(math.Round(BundleFactor * float64(sum))), rx
}
