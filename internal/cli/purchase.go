package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/pharmacy-pos/internal/checkout"
	"github.com/noah-isme/pharmacy-pos/internal/common"
	"github.com/noah-isme/pharmacy-pos/internal/customer"
)

// makePurchase walks the operator through one transaction: customer token,
// product names, quantities, and the prescription question when needed.
func (c *CLI) makePurchase() error {
	for {
		token, err := c.prompt("Enter the customer name or ID: ")
		if err != nil {
			return err
		}
		if token == "" {
			fmt.Fprintln(c.out, "Invalid customer identifier. Please try again.")
			continue
		}
		// Reject a bad token before walking the operator through the
		// product prompts.
		if err := c.checkout.ValidateCustomerToken(token); err != nil {
			switch {
			case errors.Is(err, checkout.ErrCustomerNotFound):
				fmt.Fprintln(c.out, "No such customer ID found.")
			default:
				fmt.Fprintln(c.out, "Customer name must contain only alphabetic characters.")
			}
			continue
		}
		if cust, ok := c.catalog.FindCustomer(token); ok {
			tier := "Basic"
			if cust.Tier == customer.TierVIP {
				tier = "VIP"
			}
			fmt.Fprintf(c.out, "Welcome back! %s customer: %s.\n", tier, cust.Name)
		}

		reqs, err := c.promptItems()
		if err != nil {
			return err
		}

		receipt, err := c.checkout.Purchase(token, reqs, c.confirmPrescription)
		switch {
		case err == nil:
			if receipt.NewCustomer {
				fmt.Fprintf(c.out, "This is a new customer. Registered as Basic customer: %s %s.\n",
					receipt.Customer.ID, receipt.Customer.Name)
			}
			c.renderReceipt(receipt)
			return nil
		case errors.Is(err, checkout.ErrCustomerNotFound):
			fmt.Fprintln(c.out, "No such customer ID found.")
		case errors.Is(err, checkout.ErrInvalidCustomerName):
			fmt.Fprintln(c.out, "Customer name must contain only alphabetic characters.")
		case errors.Is(err, checkout.ErrNothingToPurchase):
			fmt.Fprintln(c.out, "No eligible products to purchase after removing prescription-required items.")
			return nil
		default:
			fmt.Fprintln(c.out, "Invalid input. Try again.")
		}
	}
}

// promptItems loops until every product token resolves and the quantities
// line matches it.
func (c *CLI) promptItems() ([]checkout.ItemRequest, error) {
	for {
		line, err := c.prompt("Enter the names of the products, separated by commas [e.g. vitaminC, vitaminE]: ")
		if err != nil {
			return nil, err
		}
		names := common.SplitAndTrim(line)
		if len(names) == 0 {
			fmt.Fprintln(c.out, "Enter at least one product.")
			continue
		}
		allFound := true
		for _, name := range names {
			if _, ok := c.catalog.FindProduct(name); !ok {
				allFound = false
				break
			}
		}
		if !allFound {
			fmt.Fprintln(c.out, "Product not found. Please try again.")
			continue
		}

		qtys, err := c.promptQuantities(len(names))
		if err != nil {
			return nil, err
		}
		reqs := make([]checkout.ItemRequest, len(names))
		for i, name := range names {
			reqs[i] = checkout.ItemRequest{Token: name, Qty: qtys[i]}
		}
		return reqs, nil
	}
}

func (c *CLI) promptQuantities(count int) ([]int, error) {
	for {
		line, err := c.prompt("Enter the quantities, separated by commas [e.g. 1, 2, 3]: ")
		if err != nil {
			return nil, err
		}
		parts := common.SplitAndTrim(line)
		if len(parts) != count {
			fmt.Fprintln(c.out, "Invalid quantity. Please try again.")
			continue
		}
		qtys := make([]int, 0, count)
		valid := true
		for _, part := range parts {
			q, err := strconv.Atoi(part)
			if err != nil || q < 1 {
				valid = false
				break
			}
			qtys = append(qtys, q)
		}
		if !valid {
			fmt.Fprintln(c.out, "Invalid quantity. Please try again.")
			continue
		}
		return qtys, nil
	}
}

// confirmPrescription asks the y/n question until it gets a usable answer.
func (c *CLI) confirmPrescription() bool {
	for {
		ans, err := c.prompt("Do you have a doctor's prescription? (y/n): ")
		if err != nil {
			return false
		}
		switch strings.ToLower(ans) {
		case "y":
			return true
		case "n":
			fmt.Fprintln(c.out, "A valid prescription is required. Prescription-only items will be removed.")
			return false
		default:
			fmt.Fprintln(c.out, "Please enter 'y' for yes or 'n' for no.")
		}
	}
}
