package main

import (
	"fmt"
	"os"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/pharmacy-pos/internal/catalog"
	"github.com/noah-isme/pharmacy-pos/internal/checkout"
	"github.com/noah-isme/pharmacy-pos/internal/cli"
	"github.com/noah-isme/pharmacy-pos/internal/common"
	"github.com/noah-isme/pharmacy-pos/internal/config"
	"github.com/noah-isme/pharmacy-pos/internal/events"
	"github.com/noah-isme/pharmacy-pos/internal/obs"
	"github.com/noah-isme/pharmacy-pos/internal/order"
	"github.com/noah-isme/pharmacy-pos/internal/store"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()
	validate := validator.New()
	bus := &events.Bus{Notifiers: []events.Notifier{
		events.LogNotifier{Log: logger, Topics: events.DefaultTopics()},
	}}

	cat := catalog.New(catalog.Config{
		Log:      logger,
		Validate: validate,
		Bus:      bus,
		Rates:    cfg.Rates,
	})
	ledger := order.NewLedger()
	st := store.New(store.Config{
		Log:           logger,
		Validate:      validate,
		CustomersPath: cfg.CustomersFile,
		ProductsPath:  cfg.ProductsFile,
		OrdersPath:    cfg.OrdersFile,
		VIPDiscount:   cfg.VIPDiscount,
	})

	custErr := st.LoadCustomers(cat)
	prodErr := st.LoadProducts(cat)
	if custErr != nil && prodErr != nil {
		logger.Error().
			AnErr("customers", custErr).Interface("customers_path", common.DetailsOf(custErr)).
			AnErr("products", prodErr).Interface("products_path", common.DetailsOf(prodErr)).
			Msg("no catalog data could be loaded")
		os.Exit(1)
	}
	if cfg.OrdersFile != "" {
		st.LoadOrders(cat, ledger)
	}

	co := &checkout.Service{
		Catalog: cat,
		Ledger:  ledger,
		Log:     logger,
		Bus:     bus,
		Now:     time.Now,
	}
	app := cli.New(cli.Config{
		In:       os.Stdin,
		Out:      os.Stdout,
		Log:      logger,
		Catalog:  cat,
		Ledger:   ledger,
		Checkout: co,
		Store:    st,
	})

	if err := app.Run(); err != nil {
		logger.Error().Err(err).Msg("session ended with error")
		os.Exit(1)
	}
}
