package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pharmacy-pos/internal/catalog"
	"github.com/noah-isme/pharmacy-pos/internal/checkout"
	"github.com/noah-isme/pharmacy-pos/internal/order"
	"github.com/noah-isme/pharmacy-pos/internal/store"
)

// CLI is the interactive front end: it gathers validated primitive inputs,
// drives the core operations, and renders their structured results. All
// recoverable errors re-prompt without touching state.
type CLI struct {
	in       *bufio.Reader
	out      io.Writer
	log      zerolog.Logger
	catalog  *catalog.Catalog
	ledger   *order.Ledger
	checkout *checkout.Service
	store    *store.Store
}

// Config groups CLI dependencies.
type Config struct {
	In       io.Reader
	Out      io.Writer
	Log      zerolog.Logger
	Catalog  *catalog.Catalog
	Ledger   *order.Ledger
	Checkout *checkout.Service
	Store    *store.Store
}

// New constructs the front end.
func New(cfg Config) *CLI {
	return &CLI{
		in:       bufio.NewReader(cfg.In),
		out:      cfg.Out,
		log:      cfg.Log,
		catalog:  cfg.Catalog,
		ledger:   cfg.Ledger,
		checkout: cfg.Checkout,
		store:    cfg.Store,
	}
}

// Run drives the menu loop until the operator saves and exits. A closed
// input stream ends the loop without saving.
func (c *CLI) Run() error {
	for {
		c.printMenu()
		choice, err := c.prompt("Please choose an option: ")
		if err != nil {
			c.log.Warn().Msg("input closed, exiting without saving")
			return nil
		}

		var opErr error
		switch strings.TrimSpace(choice) {
		case "1":
			opErr = c.makePurchase()
		case "2":
			c.listCustomers()
		case "3":
			c.listProducts()
		case "4":
			opErr = c.addUpdateProducts()
		case "5":
			opErr = c.adjustBasicRate()
		case "6":
			opErr = c.adjustVIPDiscount()
		case "7":
			opErr = c.showCustomerHistory()
		case "8":
			c.showAllOrders()
		case "9":
			if err := c.store.Save(c.catalog, c.ledger); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Data saved. Bye.")
			return nil
		default:
			fmt.Fprintln(c.out, "Invalid option, please choose again.")
		}
		if opErr != nil {
			if errors.Is(opErr, io.EOF) {
				c.log.Warn().Msg("input closed, exiting without saving")
				return nil
			}
			return opErr
		}
	}
}

func (c *CLI) printMenu() {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, strings.Repeat("#", 60))
	fmt.Fprintln(c.out, center("Welcome to the pharmacy", 60))
	fmt.Fprintln(c.out, strings.Repeat("#", 60))
	fmt.Fprintln(c.out, `  1. Make a purchase
  2. Display existing customers
  3. Display existing products
  4. Add/update information of products
  5. Adjust the reward rate of all Basic customers
  6. Adjust the discount rate of a VIP customer
  7. Display a customer order history
  8. Display all orders
  9. Save and exit`)
}

// prompt prints the label and reads one trimmed line.
func (c *CLI) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", io.EOF
	}
	return strings.TrimSpace(line), nil
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s
}
