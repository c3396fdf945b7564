package checkout_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pharmacy-pos/internal/catalog"
	"github.com/noah-isme/pharmacy-pos/internal/checkout"
	"github.com/noah-isme/pharmacy-pos/internal/customer"
	"github.com/noah-isme/pharmacy-pos/internal/order"
	"github.com/noah-isme/pharmacy-pos/internal/pricing"
	"github.com/noah-isme/pharmacy-pos/internal/product"
)

func newService(t *testing.T) (*checkout.Service, *catalog.Catalog, *order.Ledger) {
	t.Helper()
	c := catalog.New(catalog.Config{Log: zerolog.Nop()})
	require.NoError(t, c.AddCustomer(&customer.Customer{ID: "B1", Name: "Alice", Tier: customer.TierBasic}))
	require.NoError(t, c.AddCustomer(&customer.Customer{ID: "V1", Name: "Bob", Tier: customer.TierVIP, DiscountRate: 0.08, Balance: 250}))
	require.NoError(t, c.AddLoadedProduct(&product.Product{ID: "P1", Name: "panadol", UnitPrice: 1000}))
	require.NoError(t, c.AddLoadedProduct(&product.Product{ID: "P2", Name: "codeine", UnitPrice: 5000, RxRequired: true}))
	l := order.NewLedger()
	svc := &checkout.Service{
		Catalog: c,
		Ledger:  l,
		Log:     zerolog.Nop(),
		Now:     func() time.Time { return time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC) },
	}
	return svc, c, l
}

func TestPurchaseBasic(t *testing.T) {
	svc, c, l := newService(t)

	rc, err := svc.Purchase("Alice", []checkout.ItemRequest{{Token: "panadol", Qty: 5}}, nil)
	require.NoError(t, err)
	require.False(t, rc.NewCustomer)
	require.Equal(t, pricing.Money(5000), rc.Quote.Original)
	require.Equal(t, pricing.Money(5000), rc.Quote.Final)
	require.Equal(t, int64(50), rc.Quote.Earned)

	alice, _ := c.FindCustomer("B1")
	require.Equal(t, int64(50), alice.Balance)
	require.Equal(t, 1, l.Len())
	require.Equal(t, "B1", l.All()[0].CustomerID)
	require.Equal(t, pricing.Money(5000), l.All()[0].Total)
}

func TestPurchaseVIPRedeemsPoints(t *testing.T) {
	svc, c, l := newService(t)

	rc, err := svc.Purchase("V1", []checkout.ItemRequest{{Token: "panadol", Qty: 10}}, nil)
	require.NoError(t, err)
	require.Equal(t, pricing.Money(10000), rc.Quote.Original)
	require.Equal(t, pricing.Money(800), rc.Quote.Discount)
	require.Equal(t, pricing.Money(2000), rc.Quote.Redeemed)
	require.Equal(t, pricing.Money(7200), rc.Quote.Final)
	require.Equal(t, int64(92), rc.Quote.Earned)

	bob, _ := c.FindCustomer("V1")
	require.Equal(t, int64(142), bob.Balance) // 250 − 200 + 92
	require.Equal(t, 1, l.Len())
}

func TestPurchaseRegistersNewBasicCustomer(t *testing.T) {
	svc, c, l := newService(t)

	rc, err := svc.Purchase("Carol", []checkout.ItemRequest{{Token: "panadol", Qty: 1}}, nil)
	require.NoError(t, err)
	require.True(t, rc.NewCustomer)
	require.Equal(t, "B2", rc.Customer.ID)
	require.Equal(t, customer.TierBasic, rc.Customer.Tier)
	require.Equal(t, int64(10), rc.Customer.Balance)

	carol, ok := c.FindCustomer("Carol")
	require.True(t, ok)
	require.Equal(t, "B2", carol.ID)
	require.Equal(t, 1, l.Len())
}

func TestPurchaseUnknownIDFailsWithoutStateChange(t *testing.T) {
	svc, c, l := newService(t)

	_, err := svc.Purchase("B9", []checkout.ItemRequest{{Token: "panadol", Qty: 1}}, nil)
	require.ErrorIs(t, err, checkout.ErrCustomerNotFound)
	require.Len(t, c.Customers(), 2)
	require.Zero(t, l.Len())
}

func TestPurchaseRejectsNonAlphabeticNewName(t *testing.T) {
	svc, c, _ := newService(t)

	_, err := svc.Purchase("mary2", []checkout.ItemRequest{{Token: "panadol", Qty: 1}}, nil)
	require.ErrorIs(t, err, checkout.ErrInvalidCustomerName)
	require.Len(t, c.Customers(), 2)
}

func TestValidateCustomerToken(t *testing.T) {
	svc, _, _ := newService(t)

	require.NoError(t, svc.ValidateCustomerToken("B1"))
	require.NoError(t, svc.ValidateCustomerToken("Alice"))
	require.NoError(t, svc.ValidateCustomerToken("Dana")) // registers at commit time
	require.ErrorIs(t, svc.ValidateCustomerToken("B9"), checkout.ErrCustomerNotFound)
	require.ErrorIs(t, svc.ValidateCustomerToken("mary2"), checkout.ErrInvalidCustomerName)
}

func TestPurchaseUnknownProductLeavesStateUnchanged(t *testing.T) {
	svc, c, l := newService(t)

	_, err := svc.Purchase("Dana", []checkout.ItemRequest{{Token: "ghost", Qty: 1}}, nil)
	require.ErrorIs(t, err, checkout.ErrProductNotFound)
	// The new customer must not have been registered on the failed path.
	require.Len(t, c.Customers(), 2)
	require.Zero(t, l.Len())
	alice, _ := c.FindCustomer("B1")
	require.Zero(t, alice.Balance)
}

func TestPurchaseInvalidQuantity(t *testing.T) {
	svc, _, l := newService(t)

	_, err := svc.Purchase("Alice", []checkout.ItemRequest{{Token: "panadol", Qty: 0}}, nil)
	require.ErrorIs(t, err, checkout.ErrInvalidQuantity)
	require.Zero(t, l.Len())
}

func TestPurchasePrescriptionConfirmed(t *testing.T) {
	svc, _, _ := newService(t)

	asked := false
	rc, err := svc.Purchase("Alice", []checkout.ItemRequest{{Token: "codeine", Qty: 1}}, func() bool {
		asked = true
		return true
	})
	require.NoError(t, err)
	require.True(t, asked)
	require.Len(t, rc.Lines, 1)
	require.Empty(t, rc.DroppedRx)
}

func TestPurchasePrescriptionDeclinedDropsLines(t *testing.T) {
	svc, _, _ := newService(t)

	rc, err := svc.Purchase("Alice", []checkout.ItemRequest{
		{Token: "panadol", Qty: 2},
		{Token: "codeine", Qty: 1},
	}, func() bool { return false })
	require.NoError(t, err)
	require.Len(t, rc.Lines, 1)
	require.Equal(t, "panadol", rc.Lines[0].Name)
	require.Equal(t, []string{"codeine"}, rc.DroppedRx)
	require.Equal(t, pricing.Money(2000), rc.Quote.Original)
}

func TestPurchaseAllLinesDropped(t *testing.T) {
	svc, _, l := newService(t)

	_, err := svc.Purchase("Alice", []checkout.ItemRequest{{Token: "codeine", Qty: 1}}, func() bool { return false })
	require.ErrorIs(t, err, checkout.ErrNothingToPurchase)
	require.Zero(t, l.Len())
}

func TestOrderLinesAreSnapshots(t *testing.T) {
	svc, c, l := newService(t)

	_, err := svc.Purchase("Alice", []checkout.ItemRequest{{Token: "panadol", Qty: 1}}, nil)
	require.NoError(t, err)

	_, err = c.UpdateProduct("panadol", 9999, true)
	require.NoError(t, err)

	recorded := l.ForCustomer("B1")[0]
	require.Equal(t, pricing.Money(1000), recorded.Lines[0].UnitPrice)
}
