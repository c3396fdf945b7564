package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/pharmacy-pos/internal/common"
	"github.com/noah-isme/pharmacy-pos/internal/customer"
	"github.com/noah-isme/pharmacy-pos/internal/pricing"
)

// ErrUsage is returned when the positional arguments do not match the
// accepted forms.
var ErrUsage = fmt.Errorf("usage: pos [customers_file products_file] [orders_file]")

// Config holds application configuration loaded from the environment, with
// positional arguments overriding the data file paths.
type Config struct {
	AppEnv        string
	CustomersFile string
	ProductsFile  string
	OrdersFile    string // empty means the order history is not loaded
	LogFormat     string
	LogLevel      string
	Rates         pricing.TierRates
	VIPDiscount   float64
}

// Load reads configuration from environment variables, optional .env files,
// and the positional file arguments.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:        valueOrDefault(k.String("APP_ENV"), "development"),
		CustomersFile: valueOrDefault(k.String("POS_CUSTOMERS_FILE"), "customers.txt"),
		ProductsFile:  valueOrDefault(k.String("POS_PRODUCTS_FILE"), "products.txt"),
		OrdersFile:    valueOrDefault(k.String("POS_ORDERS_FILE"), "orders.txt"),
		LogFormat:     valueOrDefault(k.String("POS_LOG_FORMAT"), "console"),
		LogLevel:      valueOrDefault(k.String("POS_LOG_LEVEL"), "warn"),
		Rates: pricing.TierRates{
			Basic: common.ParseFloatDefault(k.String("POS_BASIC_REWARD_RATE"), pricing.DefaultRewardRate),
			VIP:   common.ParseFloatDefault(k.String("POS_VIP_REWARD_RATE"), pricing.DefaultRewardRate),
		},
		VIPDiscount: common.ParseFloatDefault(k.String("POS_VIP_DISCOUNT_RATE"), customer.DefaultVIPDiscountRate),
	}

	// Positional forms: none (all defaults), two (customer and product files,
	// no order history), or three (all files).
	switch len(args) {
	case 0:
	case 2:
		cfg.CustomersFile = args[0]
		cfg.ProductsFile = args[1]
		cfg.OrdersFile = ""
	case 3:
		cfg.CustomersFile = args[0]
		cfg.ProductsFile = args[1]
		cfg.OrdersFile = args[2]
	default:
		return nil, ErrUsage
	}

	return cfg, nil
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}
