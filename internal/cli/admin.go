package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/pharmacy-pos/internal/common"
	"github.com/noah-isme/pharmacy-pos/internal/customer"
	"github.com/noah-isme/pharmacy-pos/internal/pricing"
)

type productEntry struct {
	token string
	price pricing.Money
	rx    bool
}

// addUpdateProducts takes a comma-separated batch of "name price y|n"
// entries. The whole batch is validated before anything is applied.
func (c *CLI) addUpdateProducts() error {
	for {
		line, err := c.prompt("Enter product information [e.g. vitaminC 12 n, vitaminC 19.5 y]: ")
		if err != nil {
			return err
		}
		entries, err := parseProductEntries(line)
		if err != nil {
			fmt.Fprintln(c.out, err)
			fmt.Fprintln(c.out, "Invalid information. Try again.")
			continue
		}

		applied := true
		for _, e := range entries {
			if _, ok := c.catalog.FindProduct(e.token); ok {
				if _, err := c.catalog.UpdateProduct(e.token, e.price, e.rx); err != nil {
					fmt.Fprintln(c.out, err)
					applied = false
					break
				}
				fmt.Fprintf(c.out, "%s has been successfully updated.\n", e.token)
				continue
			}
			p, err := c.catalog.AddProduct(e.token, e.price, e.rx)
			if err != nil {
				fmt.Fprintln(c.out, err)
				applied = false
				break
			}
			fmt.Fprintf(c.out, "New product %s has been successfully added as %s.\n", p.Name, p.ID)
		}
		if applied {
			return nil
		}
		fmt.Fprintln(c.out, "Invalid information. Try again.")
	}
}

func parseProductEntries(line string) ([]productEntry, error) {
	groups := common.SplitAndTrim(line)
	if len(groups) == 0 {
		return nil, errors.New("enter at least one product")
	}
	entries := make([]productEntry, 0, len(groups))
	for _, group := range groups {
		fields := strings.Fields(group)
		if len(fields) != 3 {
			return nil, errors.New("each product needs a name, a price, and a prescription flag")
		}
		price, err := pricing.ParseMoney(fields[1])
		if err != nil || price <= 0 {
			return nil, errors.New("price must be a number greater than 0")
		}
		var rx bool
		switch strings.ToLower(fields[2]) {
		case "y":
			rx = true
		case "n":
			rx = false
		default:
			return nil, errors.New("prescription flag must be 'y' or 'n'")
		}
		entries = append(entries, productEntry{token: fields[0], price: price, rx: rx})
	}
	return entries, nil
}

// adjustBasicRate changes the reward rate shared by all Basic customers.
func (c *CLI) adjustBasicRate() error {
	for {
		line, err := c.prompt("Enter the new reward rate for all Basic customers (e.g. 1 for 100%): ")
		if err != nil {
			return err
		}
		rate, convErr := strconv.ParseFloat(line, 64)
		if convErr != nil || c.catalog.SetBasicRate(rate) != nil {
			fmt.Fprintln(c.out, "Reward rate must be a positive number. Try again.")
			continue
		}
		fmt.Fprintln(c.out, "Reward rate for all Basic customers has been updated.")
		return nil
	}
}

// adjustVIPDiscount changes one VIP customer's personal discount rate.
func (c *CLI) adjustVIPDiscount() error {
	for {
		token, err := c.prompt("Enter the name or ID of a VIP customer: ")
		if err != nil {
			return err
		}
		cust, ok := c.catalog.FindCustomer(token)
		if !ok || cust.Tier != customer.TierVIP {
			fmt.Fprintln(c.out, "Please enter an existing VIP customer.")
			continue
		}
		fmt.Fprintf(c.out, "Hello! VIP customer: %s.\n", cust.Name)
		for {
			line, err := c.prompt("Enter the new discount rate (e.g. 0.2 for 20%): ")
			if err != nil {
				return err
			}
			rate, convErr := strconv.ParseFloat(line, 64)
			if convErr != nil || c.catalog.SetVIPDiscount(token, rate) != nil {
				fmt.Fprintln(c.out, "Discount rate must be a positive number. Try again.")
				continue
			}
			fmt.Fprintf(c.out, "Discount rate for %s updated to %.1f%%.\n", cust.Name, rate*100)
			return nil
		}
	}
}
