package store

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pharmacy-pos/internal/catalog"
	"github.com/noah-isme/pharmacy-pos/internal/common"
	"github.com/noah-isme/pharmacy-pos/internal/customer"
	"github.com/noah-isme/pharmacy-pos/internal/order"
	"github.com/noah-isme/pharmacy-pos/internal/pricing"
	"github.com/noah-isme/pharmacy-pos/internal/product"
)

// TimeLayout is the order timestamp format used in the data files.
const TimeLayout = "02/01/2006 15:04:05"

// Store reads and writes the comma-separated data files. An unreadable
// customer or product file yields an empty load plus a LOAD_FAILURE error for
// the caller's attention; malformed lines are skipped with a warning and are
// never fatal.
type Store struct {
	log      zerolog.Logger
	validate *validator.Validate

	customersPath string
	productsPath  string
	ordersPath    string
	vipDiscount   float64
}

// Config groups Store dependencies.
type Config struct {
	Log           zerolog.Logger
	Validate      *validator.Validate
	CustomersPath string
	ProductsPath  string
	OrdersPath    string
	// VIPDiscount applies to VIP records that carry no explicit discount
	// field. Zero means customer.DefaultVIPDiscountRate.
	VIPDiscount float64
}

// New constructs a Store.
func New(cfg Config) *Store {
	v := cfg.Validate
	if v == nil {
		v = validator.New()
	}
	discount := cfg.VIPDiscount
	if discount <= 0 {
		discount = customer.DefaultVIPDiscountRate
	}
	return &Store{
		log:           cfg.Log,
		validate:      v,
		customersPath: cfg.CustomersPath,
		productsPath:  cfg.ProductsPath,
		ordersPath:    cfg.OrdersPath,
		vipDiscount:   discount,
	}
}

type customerRecord struct {
	ID   string  `validate:"required"`
	Name string  `validate:"required"`
	Rate float64 `validate:"gt=0"`
}

// LoadCustomers reads the customer file into the catalog. The last per-tier
// reward rate seen in the file is restored as the shared tier rate.
func (s *Store) LoadCustomers(cat *catalog.Catalog) error {
	file, err := os.Open(s.customersPath)
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.customersPath).Msg("customer file unreadable")
		return common.NewAppError(common.CodeLoadFailure, "customer file unreadable", err).WithDetails(s.customersPath)
	}
	defer file.Close()

	var rates pricing.TierRates
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := common.SplitAndTrim(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cust, rate, err := s.parseCustomer(fields)
		if err != nil {
			s.log.Warn().Err(err).Int("line", lineNo).Msg("skipping malformed customer record")
			continue
		}
		if err := s.validate.Struct(customerRecord{ID: cust.ID, Name: cust.Name, Rate: rate}); err != nil {
			s.log.Warn().Err(err).Int("line", lineNo).Msg("skipping invalid customer record")
			continue
		}
		if err := cat.AddCustomer(cust); err != nil {
			s.log.Warn().Err(err).Int("line", lineNo).Msg("skipping duplicate customer record")
			continue
		}
		if cust.Tier == customer.TierVIP {
			rates.VIP = rate
		} else {
			rates.Basic = rate
		}
	}
	cat.SetRates(rates)
	s.log.Info().Int("customers", len(cat.Customers())).Str("path", s.customersPath).Msg("customers loaded")
	return scanner.Err()
}

func (s *Store) parseCustomer(fields []string) (*customer.Customer, float64, error) {
	id := fields[0]
	switch {
	case strings.HasPrefix(id, "V"):
		// A VIP record may omit the discount field, leaving
		// id,name,rate,balance. Such records take the default rate.
		if len(fields) < 4 {
			return nil, 0, fmt.Errorf("vip record needs at least 4 fields, got %d", len(fields))
		}
		rate, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, 0, fmt.Errorf("reward rate: %w", err)
		}
		discount := s.vipDiscount
		balanceField := fields[3]
		if len(fields) >= 5 {
			discount, err = strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, 0, fmt.Errorf("discount rate: %w", err)
			}
			balanceField = fields[4]
		}
		balance, err := strconv.ParseInt(balanceField, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("balance: %w", err)
		}
		return &customer.Customer{ID: id, Name: fields[1], Tier: customer.TierVIP, DiscountRate: discount, Balance: balance}, rate, nil
	case strings.HasPrefix(id, "B"):
		if len(fields) < 4 {
			return nil, 0, fmt.Errorf("basic record needs 4 fields, got %d", len(fields))
		}
		rate, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, 0, fmt.Errorf("reward rate: %w", err)
		}
		balance, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("balance: %w", err)
		}
		return &customer.Customer{ID: id, Name: fields[1], Tier: customer.TierBasic, Balance: balance}, rate, nil
	default:
		return nil, 0, fmt.Errorf("unknown tier prefix in id %q", id)
	}
}

type productRecord struct {
	ID    string        `validate:"required"`
	Name  string        `validate:"required"`
	Price pricing.Money `validate:"gt=0"`
}

// LoadProducts reads the product file into the catalog and derives every
// bundle once loading finishes.
func (s *Store) LoadProducts(cat *catalog.Catalog) error {
	file, err := os.Open(s.productsPath)
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.productsPath).Msg("product file unreadable")
		return common.NewAppError(common.CodeLoadFailure, "product file unreadable", err).WithDetails(s.productsPath)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := common.SplitAndTrim(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		p, err := s.parseProduct(fields)
		if err != nil {
			s.log.Warn().Err(err).Int("line", lineNo).Msg("skipping malformed product record")
			continue
		}
		if err := cat.AddLoadedProduct(p); err != nil {
			s.log.Warn().Err(err).Int("line", lineNo).Msg("skipping duplicate product record")
			continue
		}
	}
	cat.RecomputeBundles()
	s.log.Info().Int("products", len(cat.Products())).Str("path", s.productsPath).Msg("products loaded")
	return scanner.Err()
}

func (s *Store) parseProduct(fields []string) (*product.Product, error) {
	id := fields[0]
	switch {
	case strings.HasPrefix(id, "P"):
		if len(fields) < 4 {
			return nil, fmt.Errorf("product record needs 4 fields, got %d", len(fields))
		}
		price, err := pricing.ParseMoney(fields[2])
		if err != nil {
			return nil, err
		}
		rx, err := parseYesNo(fields[3])
		if err != nil {
			return nil, err
		}
		p := &product.Product{ID: id, Name: fields[1], UnitPrice: price, RxRequired: rx}
		if err := s.validate.Struct(productRecord{ID: p.ID, Name: p.Name, Price: p.UnitPrice}); err != nil {
			return nil, err
		}
		return p, nil
	case strings.HasPrefix(id, "B"):
		if len(fields) < 3 {
			return nil, fmt.Errorf("bundle record needs at least one component")
		}
		return &product.Product{ID: id, Name: fields[1], Components: fields[2:]}, nil
	default:
		return nil, fmt.Errorf("unknown product prefix in id %q", id)
	}
}

// LoadOrders replays the order history file: records are historical data, so
// totals and earned points are taken as-is, appended to the ledger, and the
// earned points credited to the owning customer. Failures only warn.
func (s *Store) LoadOrders(cat *catalog.Catalog, ledger *order.Ledger) {
	file, err := os.Open(s.ordersPath)
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.ordersPath).Msg("order file unreadable, starting with empty history")
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	loaded := 0
	for scanner.Scan() {
		lineNo++
		fields := common.SplitAndTrim(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		o, earned, ok := s.parseOrder(cat, fields, lineNo)
		if !ok {
			continue
		}
		cust, _ := cat.FindCustomer(o.CustomerID)
		ledger.Append(o)
		cust.AddPoints(earned)
		loaded++
	}
	s.log.Info().Int("orders", loaded).Str("path", s.ordersPath).Msg("order history loaded")
}

func (s *Store) parseOrder(cat *catalog.Catalog, fields []string, lineNo int) (order.Order, int64, bool) {
	// customerID, (name, qty)…, total, earned, timestamp
	if len(fields) < 6 || (len(fields)-4)%2 != 0 {
		s.log.Warn().Int("line", lineNo).Msg("skipping malformed order record")
		return order.Order{}, 0, false
	}
	cust, ok := cat.FindCustomer(fields[0])
	if !ok {
		s.log.Warn().Int("line", lineNo).Str("customer", fields[0]).Msg("skipping order for unknown customer")
		return order.Order{}, 0, false
	}
	var lines []order.Line
	for i := 1; i+1 <= len(fields)-3; i += 2 {
		p, ok := cat.FindProduct(fields[i])
		if !ok {
			continue
		}
		qty, err := strconv.Atoi(fields[i+1])
		if err != nil {
			continue
		}
		lines = append(lines, order.Line{Name: p.Name, UnitPrice: p.UnitPrice, Qty: qty})
	}
	total, err := pricing.ParseMoney(fields[len(fields)-3])
	if err != nil {
		s.log.Warn().Err(err).Int("line", lineNo).Msg("skipping order with bad total")
		return order.Order{}, 0, false
	}
	earned, err := strconv.ParseInt(fields[len(fields)-2], 10, 64)
	if err != nil {
		s.log.Warn().Err(err).Int("line", lineNo).Msg("skipping order with bad reward")
		return order.Order{}, 0, false
	}
	placedAt, err := time.ParseInLocation(TimeLayout, fields[len(fields)-1], time.Local)
	if err != nil {
		s.log.Warn().Err(err).Int("line", lineNo).Msg("order timestamp unparsable, keeping zero time")
		placedAt = time.Time{}
	}
	return order.Order{
		ID:         uuid.New(),
		CustomerID: cust.ID,
		Lines:      lines,
		Total:      total,
		Earned:     earned,
		PlacedAt:   placedAt,
	}, earned, true
}

// Save writes the customer list, product map and full order history back to
// their files. Called once at the explicit save/exit boundary.
func (s *Store) Save(cat *catalog.Catalog, ledger *order.Ledger) error {
	if err := s.saveCustomers(cat); err != nil {
		return err
	}
	if err := s.saveProducts(cat); err != nil {
		return err
	}
	if err := s.saveOrders(cat, ledger); err != nil {
		return err
	}
	s.log.Info().Msg("data files saved")
	return nil
}

func (s *Store) saveCustomers(cat *catalog.Catalog) error {
	var b strings.Builder
	rates := cat.Rates()
	for _, cust := range cat.Customers() {
		if cust.Tier == customer.TierVIP {
			fmt.Fprintf(&b, "%s,%s,%s,%s,%d\n", cust.ID, cust.Name, formatRate(rates.VIP), formatRate(cust.DiscountRate), cust.Balance)
		} else {
			fmt.Fprintf(&b, "%s,%s,%s,%d\n", cust.ID, cust.Name, formatRate(rates.Basic), cust.Balance)
		}
	}
	return s.writeFile(s.customersPath, b.String())
}

func (s *Store) saveProducts(cat *catalog.Catalog) error {
	var b strings.Builder
	for _, p := range cat.Products() {
		if p.IsBundle() {
			// Derived price and prescription are never persisted.
			fmt.Fprintf(&b, "%s,%s,%s\n", p.ID, p.Name, strings.Join(p.Components, ","))
			continue
		}
		fmt.Fprintf(&b, "%s,%s,%s,%s\n", p.ID, p.Name, pricing.FormatMoney(p.UnitPrice), formatYesNo(p.RxRequired))
	}
	return s.writeFile(s.productsPath, b.String())
}

func (s *Store) saveOrders(cat *catalog.Catalog, ledger *order.Ledger) error {
	var b strings.Builder
	for _, cust := range cat.Customers() {
		for _, o := range ledger.ForCustomer(cust.ID) {
			b.WriteString(o.CustomerID)
			for _, ln := range o.Lines {
				fmt.Fprintf(&b, ",%s,%d", ln.Name, ln.Qty)
			}
			fmt.Fprintf(&b, ",%s,%d,%s\n", pricing.FormatMoney(o.Total), o.Earned, o.PlacedAt.Format(TimeLayout))
		}
	}
	return s.writeFile(s.ordersPath, b.String())
}

func (s *Store) writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("save failed")
		return common.NewAppError(common.CodeLoadFailure, "save failed", err).WithDetails(path)
	}
	return nil
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "y":
		return true, nil
	case "n":
		return false, nil
	default:
		return false, fmt.Errorf("prescription flag must be y or n, got %q", s)
	}
}

func formatYesNo(v bool) string {
	if v {
		return "y"
	}
	return "n"
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'g', -1, 64)
}
