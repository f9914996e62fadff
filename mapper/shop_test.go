package mapper

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"object-mapper/config"
	"object-mapper/internal/diagnostic"
	"object-mapper/internal/shop/store"
	"object-mapper/internal/shop/warehouse"
	"object-mapper/primitive"
)

func newShopMapper(t *testing.T) *Mapper {
	t.Helper()

	reg := config.NewRegistry()
	reg.Register(
		store.Order{}, store.OrderItem{}, store.OrderStatus(""), store.Customer{}, store.Address{},
		warehouse.Order{}, warehouse.Line{}, warehouse.Status(0),
	)
	require.NoError(t, reg.RegisterFunc("OrderTotal", store.Order.Total))

	m := New()
	require.NoError(t, m.LoadFile(filepath.Join("testdata", "shop.yaml"), reg))

	return m
}

func shopOrder() *store.Order {
	return &store.Order{
		ID:     7,
		Number: "SO-7",
		Customer: &store.Customer{
			ID:      1,
			Email:   "ann@example.com",
			Address: &store.Address{City: "Lisbon"},
		},
		Status: store.StatusRefunded,
		Items: []store.OrderItem{
			{SKU: "A", Name: "Anvil", Quantity: 2, UnitPrice: 150},
			{SKU: "B", Name: "Bucket", Quantity: 1, UnitPrice: 99},
		},
		OrderedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestShop_ToANew(t *testing.T) {
	m := newShopMapper(t)
	order := shopOrder()

	out, err := ToANew[warehouse.Order](m, order)
	require.NoError(t, err)

	assert.Equal(t, warehouse.Order{
		ID:                  7,
		Number:              "SO-7",
		CustomerEmail:       "ann@example.com",
		CustomerAddressCity: "Lisbon",
		Status:              warehouse.StatusReturned,
		Lines: []warehouse.Line{
			{SKU: "A", Quantity: 2, UnitPrice: 150},
			{SKU: "B", Quantity: 1, UnitPrice: 99},
		},
		Total:    399,
		PlacedAt: order.OrderedAt,
	}, out)
}

func TestShop_MissingCustomer(t *testing.T) {
	m := newShopMapper(t)

	order := shopOrder()
	order.Customer = nil
	order.Status = store.StatusPaid

	out, err := ToANew[warehouse.Order](m, order)
	require.NoError(t, err)
	assert.Empty(t, out.CustomerEmail)
	assert.Empty(t, out.CustomerAddressCity)
	assert.Equal(t, warehouse.StatusPaid, out.Status)
}

func TestShop_MergeIntoPickedOrder(t *testing.T) {
	m := newShopMapper(t)

	existing := &warehouse.Order{
		Number: "WH-1",
		Lines:  []warehouse.Line{{SKU: "A", Quantity: 5, Picked: true}},
	}

	require.NoError(t, m.Map(shopOrder()).OnTo(existing))

	assert.Equal(t, "WH-1", existing.Number)
	assert.Equal(t, "ann@example.com", existing.CustomerEmail)
	assert.Equal(t, []warehouse.Line{
		{SKU: "A", Quantity: 5, UnitPrice: 150, Picked: true},
		{SKU: "B", Quantity: 1, UnitPrice: 99},
	}, existing.Lines)
}

func TestShop_OverwriteDropsCancelledLines(t *testing.T) {
	m := newShopMapper(t)

	existing := &warehouse.Order{
		Number: "WH-1",
		Lines: []warehouse.Line{
			{SKU: "Z", Quantity: 9},
			{SKU: "A", Quantity: 5},
		},
	}

	require.NoError(t, m.Map(shopOrder()).Over(existing))

	assert.Equal(t, "SO-7", existing.Number)
	require.Len(t, existing.Lines, 2)

	got := map[string]int32{}
	for _, line := range existing.Lines {
		got[line.SKU] = line.Quantity
	}

	assert.Equal(t, map[string]int32{"A": 2, "B": 1}, got)
}

func TestShop_Validate(t *testing.T) {
	m := newShopMapper(t)
	src, tgt := reflect.TypeFor[store.Order](), reflect.TypeFor[warehouse.Order]()

	require.NoError(t, m.Validate(src, tgt, config.CreateNew))

	require.NoError(t, m.Store().RegisterEnum(reflect.TypeFor[store.OrderStatus](),
		primitive.EnumMember{Name: "PENDING", Value: store.StatusPending},
		primitive.EnumMember{Name: "PAID", Value: store.StatusPaid},
		primitive.EnumMember{Name: "SHIPPED", Value: store.StatusShipped},
		primitive.EnumMember{Name: "REFUNDED", Value: store.StatusRefunded},
		primitive.EnumMember{Name: "ON_HOLD", Value: store.StatusOnHold},
	))

	diags := m.Diagnostics(src, tgt, config.CreateNew)
	require.False(t, diags.IsValid())
	require.Len(t, diags.Errors, 1)
	assert.Equal(t, "enum_not_covered", diags.Errors[0].Code)
	assert.Equal(t, "ON_HOLD", diags.Errors[0].FieldPath)

	err := m.Validate(src, tgt, config.CreateNew)
	require.Error(t, err)
	assert.True(t, diagnostic.HasTextCode(err, diagnostic.TextCodeValidation))
}
