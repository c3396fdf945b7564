package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pharmacy-pos/internal/common"
	"github.com/noah-isme/pharmacy-pos/internal/customer"
	"github.com/noah-isme/pharmacy-pos/internal/events"
	"github.com/noah-isme/pharmacy-pos/internal/pricing"
	"github.com/noah-isme/pharmacy-pos/internal/product"
)

var (
	// ErrCustomerNotFound is returned when no customer matches the token.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound is returned when no product matches the token.
	ErrProductNotFound = errors.New("product not found")
	// ErrNotVIP is returned when a VIP-only operation targets a basic customer.
	ErrNotVIP = errors.New("customer is not a VIP customer")
	// ErrInvalidPrice is returned when a product price is not positive.
	ErrInvalidPrice = errors.New("price must be greater than zero")
	// ErrInvalidRate is returned when a rate adjustment is not positive.
	ErrInvalidRate = errors.New("rate must be a positive number")
	// ErrInvalidName is returned when a customer name is not purely alphabetic.
	ErrInvalidName = errors.New("customer name must contain only alphabetic characters")
	// ErrDuplicateID is returned when a loaded record reuses an existing ID.
	ErrDuplicateID = errors.New("duplicate id")
)

const (
	customerIDPrefixBasic = "B"
	productIDPrefix       = "P"
)

// Catalog is the process-wide registry of customers and products. Customers
// keep registration order, products keep load order; lookups resolve by exact
// ID or exact display name, first match wins. All product mutation goes
// through UpdateProduct so the bundle cascade can never be skipped.
type Catalog struct {
	log      zerolog.Logger
	validate *validator.Validate
	bus      *events.Bus

	rates        pricing.TierRates
	customers    []*customer.Customer
	products     map[string]*product.Product
	productOrder []string
}

// Config groups Catalog dependencies.
type Config struct {
	Log      zerolog.Logger
	Validate *validator.Validate
	Bus      *events.Bus
	Rates    pricing.TierRates
}

// New constructs an empty catalog.
func New(cfg Config) *Catalog {
	v := cfg.Validate
	if v == nil {
		v = validator.New()
	}
	rates := cfg.Rates
	if rates.Basic == 0 {
		rates.Basic = pricing.DefaultRewardRate
	}
	if rates.VIP == 0 {
		rates.VIP = pricing.DefaultRewardRate
	}
	return &Catalog{
		log:      cfg.Log,
		validate: v,
		bus:      cfg.Bus,
		rates:    rates,
		products: make(map[string]*product.Product),
	}
}

// Rates returns the current shared tier reward rates.
func (c *Catalog) Rates() pricing.TierRates {
	return c.rates
}

// SetRates replaces both tier rates at once. Used by the loader when
// restoring persisted rates.
func (c *Catalog) SetRates(rates pricing.TierRates) {
	if rates.Basic > 0 {
		c.rates.Basic = rates.Basic
	}
	if rates.VIP > 0 {
		c.rates.VIP = rates.VIP
	}
}

// SetBasicRate adjusts the reward rate shared by every basic customer.
func (c *Catalog) SetBasicRate(rate float64) error {
	if rate <= 0 {
		return ErrInvalidRate
	}
	c.rates.Basic = rate
	c.log.Info().Float64("rate", rate).Str("tier", string(customer.TierBasic)).Msg("reward_rate_changed")
	_ = c.bus.Emit(events.TopicRateChanged, string(customer.TierBasic), map[string]any{"rate": rate})
	return nil
}

// SetVIPRate adjusts the reward rate shared by every VIP customer.
func (c *Catalog) SetVIPRate(rate float64) error {
	if rate <= 0 {
		return ErrInvalidRate
	}
	c.rates.VIP = rate
	c.log.Info().Float64("rate", rate).Str("tier", string(customer.TierVIP)).Msg("reward_rate_changed")
	_ = c.bus.Emit(events.TopicRateChanged, string(customer.TierVIP), map[string]any{"rate": rate})
	return nil
}

// SetVIPDiscount adjusts one VIP customer's personal discount rate.
func (c *Catalog) SetVIPDiscount(token string, rate float64) error {
	cust, ok := c.FindCustomer(token)
	if !ok {
		return ErrCustomerNotFound
	}
	if cust.Tier != customer.TierVIP {
		return ErrNotVIP
	}
	if rate <= 0 {
		return ErrInvalidRate
	}
	cust.DiscountRate = rate
	c.log.Info().Str("customer_id", cust.ID).Float64("discount_rate", rate).Msg("vip_discount_changed")
	return nil
}

// PolicyFor builds the pricing policy for a customer from its tier and the
// shared tier rates.
func (c *Catalog) PolicyFor(cust *customer.Customer) pricing.Policy {
	if cust.Tier == customer.TierVIP {
		return pricing.VIPPolicy{Rate: c.rates.VIP, DiscountRate: cust.DiscountRate}
	}
	return pricing.BasicPolicy{Rate: c.rates.Basic}
}

// AddCustomer appends a loaded customer record.
func (c *Catalog) AddCustomer(cust *customer.Customer) error {
	if _, exists := c.customerByID(cust.ID); exists {
		return fmt.Errorf("customer %s: %w", cust.ID, ErrDuplicateID)
	}
	c.customers = append(c.customers, cust)
	return nil
}

// AddLoadedProduct inserts a loaded product record. Bundles keep stale
// derived fields until RecomputeBundles runs.
func (c *Catalog) AddLoadedProduct(p *product.Product) error {
	if _, exists := c.products[p.ID]; exists {
		return fmt.Errorf("product %s: %w", p.ID, ErrDuplicateID)
	}
	c.products[p.ID] = p
	c.productOrder = append(c.productOrder, p.ID)
	return nil
}

// Customers returns the customer list in registration order.
func (c *Catalog) Customers() []*customer.Customer {
	return c.customers
}

// Products returns the products in load order.
func (c *Catalog) Products() []*product.Product {
	out := make([]*product.Product, 0, len(c.productOrder))
	for _, id := range c.productOrder {
		out = append(out, c.products[id])
	}
	return out
}

// FindCustomer resolves a customer by exact ID or exact name, first match in
// registration order.
func (c *Catalog) FindCustomer(token string) (*customer.Customer, bool) {
	token = strings.TrimSpace(token)
	for _, cust := range c.customers {
		if cust.ID == token || cust.Name == token {
			return cust, true
		}
	}
	return nil, false
}

// FindProduct resolves a product by exact ID or exact name, first match in
// load order.
func (c *Catalog) FindProduct(token string) (*product.Product, bool) {
	token = strings.TrimSpace(token)
	for _, id := range c.productOrder {
		p := c.products[id]
		if p.ID == token || p.Name == token {
			return p, true
		}
	}
	return nil, false
}

// RegisterBasicCustomer provisions a new basic customer with a fresh B-ID and
// a zero balance. The name must be purely alphabetic.
func (c *Catalog) RegisterBasicCustomer(name string) (*customer.Customer, error) {
	name = strings.TrimSpace(name)
	if !common.IsAlphabetic(name) {
		return nil, ErrInvalidName
	}
	id := customerIDPrefixBasic + strconv.Itoa(c.nextCustomerNumber())
	cust := &customer.Customer{ID: id, Name: name, Tier: customer.TierBasic}
	c.customers = append(c.customers, cust)
	c.log.Info().Str("customer_id", id).Str("name", name).Msg("customer_registered")
	_ = c.bus.Emit(events.TopicCustomerRegistered, id, map[string]any{"name": name})
	return cust, nil
}

type productInput struct {
	Name  string        `validate:"required"`
	Price pricing.Money `validate:"gt=0"`
}

// AddProduct provisions a new simple product with a fresh P-ID.
func (c *Catalog) AddProduct(name string, price pricing.Money, rx bool) (*product.Product, error) {
	if err := c.validate.Struct(productInput{Name: strings.TrimSpace(name), Price: price}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}
	id := productIDPrefix + strconv.Itoa(c.nextProductNumber())
	p := &product.Product{ID: id, Name: strings.TrimSpace(name), UnitPrice: price, RxRequired: rx}
	c.products[id] = p
	c.productOrder = append(c.productOrder, id)
	c.log.Info().Str("product_id", id).Str("name", p.Name).Int64("unit_price", price).Msg("product_added")
	_ = c.bus.Emit(events.TopicProductAdded, id, map[string]any{"name": p.Name})
	return p, nil
}

// UpdateProduct overwrites a product's price and prescription flag, then
// re-derives every bundle that references it. Mutation and cascade are one
// operation; there is no other write path for product pricing.
func (c *Catalog) UpdateProduct(token string, price pricing.Money, rx bool) (*product.Product, error) {
	p, ok := c.FindProduct(token)
	if !ok {
		return nil, ErrProductNotFound
	}
	if err := c.validate.Struct(productInput{Name: p.Name, Price: price}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}
	p.UnitPrice = price
	p.RxRequired = rx
	c.cascade(p.ID)
	c.log.Info().Str("product_id", p.ID).Int64("unit_price", price).Bool("rx_required", rx).Msg("product_updated")
	_ = c.bus.Emit(events.TopicProductUpdated, p.ID, map[string]any{"unit_price": price, "rx_required": rx})
	return p, nil
}

// RecomputeBundles derives price and prescription for every bundle. Invoked
// once after the catalog is loaded.
func (c *Catalog) RecomputeBundles() {
	for _, id := range c.productOrder {
		if p := c.products[id]; p.IsBundle() {
			c.recompute(p)
		}
	}
}

// cascade re-derives every bundle whose component list references the
// product.
func (c *Catalog) cascade(productID string) {
	for _, id := range c.productOrder {
		p := c.products[id]
		if p.IsBundle() && slices.Contains(p.Components, productID) {
			c.recompute(p)
		}
	}
}

func (c *Catalog) recompute(b *product.Product) {
	price, rx := product.Derive(b.Components, func(id string) (*product.Product, bool) {
		p, ok := c.products[id]
		return p, ok
	})
	b.UnitPrice = price
	b.RxRequired = rx
	c.log.Debug().Str("bundle_id", b.ID).Int64("unit_price", price).Bool("rx_required", rx).Msg("bundle_recomputed")
	_ = c.bus.Emit(events.TopicBundleRecomputed, b.ID, map[string]any{"unit_price": price, "rx_required": rx})
}

// nextCustomerNumber picks the smallest positive integer not used as a
// numeric suffix by any existing customer ID, whichever the tier prefix.
func (c *Catalog) nextCustomerNumber() int {
	used := make(map[int]bool, len(c.customers))
	for _, cust := range c.customers {
		markSuffix(used, cust.ID)
	}
	return smallestUnused(used)
}

// nextProductNumber does the same over the product map, bundles included.
func (c *Catalog) nextProductNumber() int {
	used := make(map[int]bool, len(c.productOrder))
	for _, id := range c.productOrder {
		markSuffix(used, id)
	}
	return smallestUnused(used)
}

func (c *Catalog) customerByID(id string) (*customer.Customer, bool) {
	for _, cust := range c.customers {
		if cust.ID == id {
			return cust, true
		}
	}
	return nil, false
}

func markSuffix(used map[int]bool, id string) {
	if len(id) < 2 {
		return
	}
	if n, err := strconv.Atoi(id[1:]); err == nil && n > 0 {
		used[n] = true
	}
}

func smallestUnused(used map[int]bool) int {
	n := 1
	for used[n] {
		n++
	}
	return n
}
