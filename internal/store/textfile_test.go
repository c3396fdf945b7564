package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pharmacy-pos/internal/catalog"
	"github.com/noah-isme/pharmacy-pos/internal/common"
	"github.com/noah-isme/pharmacy-pos/internal/customer"
	"github.com/noah-isme/pharmacy-pos/internal/order"
	"github.com/noah-isme/pharmacy-pos/internal/pricing"
	"github.com/noah-isme/pharmacy-pos/internal/store"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newStore(t *testing.T, dir string) *store.Store {
	t.Helper()
	return store.New(store.Config{
		Log:           zerolog.Nop(),
		CustomersPath: filepath.Join(dir, "customers.txt"),
		ProductsPath:  filepath.Join(dir, "products.txt"),
		OrdersPath:    filepath.Join(dir, "orders.txt"),
	})
}

func TestLoadCustomers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "customers.txt", strings.Join([]string{
		"B1, Alice, 1, 20",
		"V1, Bob, 1.2, 0.08, 250",
		"B2, Mallory", // malformed, skipped
		"",
	}, "\n"))
	s := newStore(t, dir)
	cat := catalog.New(catalog.Config{Log: zerolog.Nop()})

	require.NoError(t, s.LoadCustomers(cat))
	require.Len(t, cat.Customers(), 2)

	alice, ok := cat.FindCustomer("B1")
	require.True(t, ok)
	require.Equal(t, "Alice", alice.Name)
	require.Equal(t, customer.TierBasic, alice.Tier)
	require.Equal(t, int64(20), alice.Balance)

	bob, ok := cat.FindCustomer("Bob")
	require.True(t, ok)
	require.Equal(t, customer.TierVIP, bob.Tier)
	require.InDelta(t, 0.08, bob.DiscountRate, 1e-9)

	// Persisted tier rates are restored.
	require.InDelta(t, 1.0, cat.Rates().Basic, 1e-9)
	require.InDelta(t, 1.2, cat.Rates().VIP, 1e-9)
}

func TestLoadCustomersVIPWithoutDiscountField(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "customers.txt", strings.Join([]string{
		"V1, Bob, 1, 250",
		"V2, Carol, 1, 0.12, 40",
	}, "\n"))
	s := newStore(t, dir)
	cat := catalog.New(catalog.Config{Log: zerolog.Nop()})

	require.NoError(t, s.LoadCustomers(cat))

	bob, ok := cat.FindCustomer("V1")
	require.True(t, ok)
	require.InDelta(t, customer.DefaultVIPDiscountRate, bob.DiscountRate, 1e-9)
	require.Equal(t, int64(250), bob.Balance)

	carol, ok := cat.FindCustomer("V2")
	require.True(t, ok)
	require.InDelta(t, 0.12, carol.DiscountRate, 1e-9)
	require.Equal(t, int64(40), carol.Balance)
}

func TestLoadCustomersConfiguredVIPDiscount(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "customers.txt", "V1, Bob, 1, 250\n")
	s := store.New(store.Config{
		Log:           zerolog.Nop(),
		CustomersPath: filepath.Join(dir, "customers.txt"),
		ProductsPath:  filepath.Join(dir, "products.txt"),
		OrdersPath:    filepath.Join(dir, "orders.txt"),
		VIPDiscount:   0.2,
	})
	cat := catalog.New(catalog.Config{Log: zerolog.Nop()})

	require.NoError(t, s.LoadCustomers(cat))
	bob, ok := cat.FindCustomer("V1")
	require.True(t, ok)
	require.InDelta(t, 0.2, bob.DiscountRate, 1e-9)
}

func TestLoadCustomersMissingFile(t *testing.T) {
	dir := t.TempDir()
	s := newStore(t, dir)
	cat := catalog.New(catalog.Config{Log: zerolog.Nop()})

	err := s.LoadCustomers(cat)
	require.Error(t, err)
	require.Equal(t, common.CodeLoadFailure, common.CodeOf(err))
	require.Equal(t, filepath.Join(dir, "customers.txt"), common.DetailsOf(err))
	require.Empty(t, cat.Customers())
}

func TestLoadProductsDerivesBundles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "products.txt", strings.Join([]string{
		"P1, panadol, 10, n",
		"P2, codeine, 5, y",
		"B1, winterPack, P1, P2",
		"P3, broken, -1, y", // invalid price, skipped
	}, "\n"))
	s := newStore(t, dir)
	cat := catalog.New(catalog.Config{Log: zerolog.Nop()})

	require.NoError(t, s.LoadProducts(cat))
	require.Len(t, cat.Products(), 3)

	b, ok := cat.FindProduct("B1")
	require.True(t, ok)
	require.Equal(t, pricing.Money(1200), b.UnitPrice)
	require.True(t, b.RxRequired)
}

func TestLoadOrdersReplaysHistory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "customers.txt", "B1, Alice, 1, 0")
	writeFile(t, dir, "products.txt", "P1, panadol, 10, n")
	writeFile(t, dir, "orders.txt", strings.Join([]string{
		"B1, panadol, 2, 20.00, 20, 01/06/2025 09:30:00",
		"B9, panadol, 1, 10.00, 10, 01/06/2025 09:31:00", // unknown customer, skipped
	}, "\n"))
	s := newStore(t, dir)
	cat := catalog.New(catalog.Config{Log: zerolog.Nop()})
	ledger := order.NewLedger()

	require.NoError(t, s.LoadCustomers(cat))
	require.NoError(t, s.LoadProducts(cat))
	s.LoadOrders(cat, ledger)

	require.Equal(t, 1, ledger.Len())
	got := ledger.ForCustomer("B1")
	require.Len(t, got, 1)
	require.Equal(t, pricing.Money(2000), got[0].Total)
	require.Equal(t, int64(20), got[0].Earned)
	require.Equal(t, 2, got[0].Lines[0].Qty)
	require.Equal(t, time.Date(2025, 6, 1, 9, 30, 0, 0, time.Local), got[0].PlacedAt)

	// Historical earned points are credited to the balance.
	alice, _ := cat.FindCustomer("B1")
	require.Equal(t, int64(20), alice.Balance)
}

func TestLoadOrdersMissingFileIsQuiet(t *testing.T) {
	s := newStore(t, t.TempDir())
	cat := catalog.New(catalog.Config{Log: zerolog.Nop()})
	ledger := order.NewLedger()
	s.LoadOrders(cat, ledger)
	require.Zero(t, ledger.Len())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "customers.txt", strings.Join([]string{
		"B1, Alice, 0.5, 20",
		"V1, Bob, 1, 0.08, 250",
	}, "\n"))
	writeFile(t, dir, "products.txt", strings.Join([]string{
		"P1, panadol, 10, n",
		"P2, codeine, 5, y",
		"B1, winterPack, P1, P2",
	}, "\n"))
	s := newStore(t, dir)
	cat := catalog.New(catalog.Config{Log: zerolog.Nop()})
	ledger := order.NewLedger()
	require.NoError(t, s.LoadCustomers(cat))
	require.NoError(t, s.LoadProducts(cat))

	ledger.Append(order.Order{
		ID:         uuid.New(),
		CustomerID: "B1",
		Lines:      []order.Line{{Name: "panadol", UnitPrice: 1000, Qty: 2}},
		Total:      2000,
		Earned:     10,
		PlacedAt:   time.Date(2025, 6, 1, 9, 30, 0, 0, time.Local),
	})
	require.NoError(t, s.Save(cat, ledger))

	customers, err := os.ReadFile(filepath.Join(dir, "customers.txt"))
	require.NoError(t, err)
	require.Contains(t, string(customers), "B1,Alice,0.5,20")
	require.Contains(t, string(customers), "V1,Bob,1,0.08,250")

	products, err := os.ReadFile(filepath.Join(dir, "products.txt"))
	require.NoError(t, err)
	require.Contains(t, string(products), "P1,panadol,10.00,n")
	// Bundle lines never persist the derived price.
	require.Contains(t, string(products), "B1,winterPack,P1,P2")

	orders, err := os.ReadFile(filepath.Join(dir, "orders.txt"))
	require.NoError(t, err)
	require.Contains(t, string(orders), "B1,panadol,2,20.00,10,01/06/2025 09:30:00")

	// A fresh load from the saved files reproduces the same state.
	cat2 := catalog.New(catalog.Config{Log: zerolog.Nop()})
	ledger2 := order.NewLedger()
	require.NoError(t, s.LoadCustomers(cat2))
	require.NoError(t, s.LoadProducts(cat2))
	s.LoadOrders(cat2, ledger2)
	require.InDelta(t, 0.5, cat2.Rates().Basic, 1e-9)
	require.Equal(t, 1, ledger2.Len())
	b, _ := cat2.FindProduct("winterPack")
	require.Equal(t, pricing.Money(1200), b.UnitPrice)
}

func TestLoadFailureKindIsRecoverable(t *testing.T) {
	s := newStore(t, t.TempDir())
	cat := catalog.New(catalog.Config{Log: zerolog.Nop()})
	err := s.LoadProducts(cat)
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, common.CodeLoadFailure, appErr.Code)
}
