package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/noah-isme/pharmacy-pos/internal/checkout"
	"github.com/noah-isme/pharmacy-pos/internal/customer"
	"github.com/noah-isme/pharmacy-pos/internal/order"
	"github.com/noah-isme/pharmacy-pos/internal/pricing"
	"github.com/noah-isme/pharmacy-pos/internal/store"
)

const receiptWidth = 45

func (c *CLI) renderReceipt(rc *checkout.Receipt) {
	if len(rc.DroppedRx) > 0 {
		fmt.Fprintf(c.out, "Removed prescription-required items: %s.\n", strings.Join(rc.DroppedRx, ", "))
	}
	if rc.Quote.Redeemed > 0 {
		fmt.Fprintf(c.out, "Applying $%s discount from reward points.\n", pricing.FormatMoney(rc.Quote.Redeemed))
	}

	line := strings.Repeat("-", receiptWidth)
	fmt.Fprintln(c.out, line)
	fmt.Fprintln(c.out, center("Receipt", receiptWidth))
	fmt.Fprintln(c.out, line)
	fmt.Fprintf(c.out, "%-20s %s\n", "Name:", rc.Customer.Name)
	for _, ln := range rc.Lines {
		fmt.Fprintf(c.out, "%-20s %s\n", "Product:", ln.Name)
		fmt.Fprintf(c.out, "%-20s %s (AUD)\n", "Unit Price:", pricing.FormatMoney(ln.UnitPrice))
		fmt.Fprintf(c.out, "%-20s %d\n", "Quantity:", ln.Qty)
		fmt.Fprintln(c.out, line)
	}
	if rc.Quote.Discount > 0 {
		fmt.Fprintf(c.out, "%-20s %s (AUD)\n", "Original cost:", pricing.FormatMoney(rc.Quote.Original))
		fmt.Fprintf(c.out, "%-20s %s (AUD)\n", "Discount:", pricing.FormatMoney(rc.Quote.Discount))
	}
	fmt.Fprintf(c.out, "%-20s %s (AUD)\n", "Total cost:", pricing.FormatMoney(rc.Quote.Final))
	fmt.Fprintf(c.out, "%-20s %d\n", "Earned reward:", rc.Quote.Earned)
	fmt.Fprintln(c.out, line)
}

func (c *CLI) listCustomers() {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIER\tREWARD RATE\tDISCOUNT RATE\tPOINTS")
	rates := c.catalog.Rates()
	for _, cust := range c.catalog.Customers() {
		if cust.Tier == customer.TierVIP {
			fmt.Fprintf(w, "%s\t%s\tVIP\t%.1f%%\t%.1f%%\t%d\n",
				cust.ID, cust.Name, rates.VIP*100, cust.DiscountRate*100, cust.Balance)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\tBasic\t%.1f%%\t-\t%d\n",
			cust.ID, cust.Name, rates.Basic*100, cust.Balance)
	}
	w.Flush()
}

func (c *CLI) listProducts() {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tUNIT PRICE\tPRESCRIPTION\tCOMPONENTS")
	for _, p := range c.catalog.Products() {
		rx := "No"
		if p.RxRequired {
			rx = "Yes"
		}
		components := "-"
		if p.IsBundle() {
			components = strings.Join(p.Components, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, pricing.FormatMoney(p.UnitPrice), rx, components)
	}
	w.Flush()
}

func (c *CLI) showCustomerHistory() error {
	for {
		token, err := c.prompt("Enter the customer name or ID: ")
		if err != nil {
			return err
		}
		cust, ok := c.catalog.FindCustomer(token)
		if !ok {
			fmt.Fprintln(c.out, "The customer does not exist. Try again.")
			continue
		}
		orders := c.ledger.ForCustomer(cust.ID)
		if len(orders) == 0 {
			fmt.Fprintf(c.out, "Sorry, %s has no order history.\n", cust.Name)
			return nil
		}
		fmt.Fprintf(c.out, "This is the order history of %s:\n", cust.Name)
		w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ORDER\tPRODUCTS\tTOTAL COST\tEARNED REWARDS")
		for i, o := range orders {
			fmt.Fprintf(w, "Order %d\t%s\t%s\t%d\n", i+1, formatLines(o.Lines), pricing.FormatMoney(o.Total), o.Earned)
		}
		w.Flush()
		return nil
	}
}

func (c *CLI) showAllOrders() {
	total := 0
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CUSTOMER\tPRODUCTS\tTOTAL COST\tEARNED REWARDS\tORDER TIME")
	for _, cust := range c.catalog.Customers() {
		for _, o := range c.ledger.ForCustomer(cust.ID) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				cust.Name, formatLines(o.Lines), pricing.FormatMoney(o.Total), o.Earned, o.PlacedAt.Format(store.TimeLayout))
			total++
		}
	}
	if total == 0 {
		fmt.Fprintln(c.out, "Order list is empty.")
		return
	}
	w.Flush()
}

func formatLines(lines []order.Line) string {
	parts := make([]string, 0, len(lines))
	for _, ln := range lines {
		parts = append(parts, fmt.Sprintf("%d x %s", ln.Qty, ln.Name))
	}
	return strings.Join(parts, ", ")
}
