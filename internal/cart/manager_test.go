package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/promo"
)

type stubValidator struct {
	codes map[string]float64
}

func (s stubValidator) ValidatePromoCode(_ context.Context, code string) (float64, error) {
	if percent, ok := s.codes[code]; ok {
		return percent, nil
	}
	return 0, promo.ErrInvalidCode
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, time.Hour)
	return NewManager(store, stubValidator{codes: map[string]float64{"SAVE10": 10}})
}

func requireSplitInvariant(t *testing.T, c *Cart) {
	t.Helper()
	for _, it := range c.Items {
		assert.Equalf(t, it.Quantity, it.InstantQuantity+it.PrepaidQuantity,
			"item %s: instant+prepaid must equal quantity", it.ProductID)
		assert.GreaterOrEqual(t, it.InstantQuantity, 0)
	}
}

func TestAddItem_BasicAdd(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	c, err := m.AddItem(ctx, "1", AddItemInput{
		ProductID:      "P1",
		ProductName:    "GPT Plus 1m",
		Quantity:       2,
		UnitPrice:      1000,
		AvailableStock: 5,
	})
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	it := c.Items[0]
	assert.Equal(t, 2, it.Quantity)
	assert.Equal(t, 2, it.InstantQuantity)
	assert.Equal(t, 0, it.PrepaidQuantity)
	assert.Equal(t, 2000.0, it.TotalPrice)
	assert.Equal(t, 2000.0, c.Total)
	requireSplitInvariant(t, c)
}

func TestAddItem_OversubscribedSplitsIntoPrepaid(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	c, err := m.AddItem(ctx, "1", AddItemInput{
		ProductID:       "P1",
		Quantity:        5,
		UnitPrice:       1000,
		AvailableStock:  2,
		DiscountPercent: 10,
	})
	require.NoError(t, err)

	it := c.Items[0]
	assert.Equal(t, 2, it.InstantQuantity)
	assert.Equal(t, 3, it.PrepaidQuantity)
	assert.Equal(t, 4500.0, it.TotalPrice)
	assert.Equal(t, 1800.0, c.InstantTotal)
	assert.Equal(t, 2700.0, c.PrepaidTotal)
	assert.Equal(t, 4500.0, c.Subtotal)
	requireSplitInvariant(t, c)
}

func TestAddItem_MergesQuantities(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddItem(ctx, "1", AddItemInput{ProductID: "P1", Quantity: 2, UnitPrice: 100, AvailableStock: 10})
	require.NoError(t, err)

	c, err := m.AddItem(ctx, "1", AddItemInput{ProductID: "P1", Quantity: 3, UnitPrice: 100, AvailableStock: 10})
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestAddItem_RefreshesPriceAndDiscount(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddItem(ctx, "1", AddItemInput{ProductID: "P1", Quantity: 1, UnitPrice: 100, AvailableStock: 10})
	require.NoError(t, err)

	// Price and discount legitimately change between calls; the latest
	// values win for the whole line.
	c, err := m.AddItem(ctx, "1", AddItemInput{ProductID: "P1", Quantity: 1, UnitPrice: 80, AvailableStock: 10, DiscountPercent: 25})
	require.NoError(t, err)

	it := c.Items[0]
	assert.Equal(t, 80.0, it.UnitPrice)
	assert.Equal(t, 25.0, it.DiscountPercent)
	assert.Equal(t, 120.0, it.TotalPrice) // 2 × 80 × 0.75
}

func TestAddItem_RejectsNonPositiveQuantity(t *testing.T) {
	m := newTestManager(t)

	_, err := m.AddItem(context.Background(), "1", AddItemInput{ProductID: "P1", Quantity: 0})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUpdateItemQuantity_ReplacesOutright(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddItem(ctx, "1", AddItemInput{ProductID: "P1", Quantity: 5, UnitPrice: 100, AvailableStock: 10})
	require.NoError(t, err)

	c, err := m.UpdateItemQuantity(ctx, "1", "P1", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 200.0, c.Total)
	requireSplitInvariant(t, c)
}

func TestUpdateItemQuantity_ZeroRemoves(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddItem(ctx, "1", AddItemInput{ProductID: "P1", Quantity: 1, UnitPrice: 100, AvailableStock: 10})
	require.NoError(t, err)

	c, err := m.UpdateItemQuantity(ctx, "1", "P1", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Equal(t, 0.0, c.Total)
}

func TestUpdateItemQuantity_RejectsNegative(t *testing.T) {
	m := newTestManager(t)

	_, err := m.UpdateItemQuantity(context.Background(), "1", "P1", -1, 10)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUpdateItemQuantity_MissingItem(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddItem(ctx, "1", AddItemInput{ProductID: "P1", Quantity: 1, UnitPrice: 100, AvailableStock: 10})
	require.NoError(t, err)

	_, err = m.UpdateItemQuantity(ctx, "1", "P2", 3, 10)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveItem_AbsentLeavesCartUntouched(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	before, err := m.AddItem(ctx, "1", AddItemInput{ProductID: "P1", Quantity: 2, UnitPrice: 100, AvailableStock: 10})
	require.NoError(t, err)

	_, err = m.RemoveItem(ctx, "1", "P2")
	require.ErrorIs(t, err, ErrItemNotFound)

	after, err := m.GetCart(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRemoveItem_RecomputesAggregates(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddItem(ctx, "1", AddItemInput{ProductID: "P1", Quantity: 2, UnitPrice: 100, AvailableStock: 10})
	require.NoError(t, err)
	_, err = m.AddItem(ctx, "1", AddItemInput{ProductID: "P2", Quantity: 1, UnitPrice: 50, AvailableStock: 10})
	require.NoError(t, err)

	c, err := m.RemoveItem(ctx, "1", "P1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 50.0, c.Total)
}

func TestApplyPromoCode_DiscountsSubtotalOnly(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddItem(ctx, "1", AddItemInput{ProductID: "P1", Quantity: 5, UnitPrice: 1000, AvailableStock: 2, DiscountPercent: 10})
	require.NoError(t, err)

	c, err := m.ApplyPromoCode(ctx, "1", "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", c.PromoCode)
	assert.Equal(t, 4500.0, c.Subtotal, "per-item totals must not compound the promo")
	assert.Equal(t, 4050.0, c.Total)
	assert.Equal(t, 4500.0, c.Items[0].TotalPrice)
}

func TestApplyPromoCode_InvalidLeavesCartUntouched(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	before, err := m.AddItem(ctx, "1", AddItemInput{ProductID: "P1", Quantity: 1, UnitPrice: 100, AvailableStock: 10})
	require.NoError(t, err)

	_, err = m.ApplyPromoCode(ctx, "1", "BOGUS")
	require.ErrorIs(t, err, promo.ErrInvalidCode)

	after, err := m.GetCart(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestGetCart_AbsentReadsAsEmpty(t *testing.T) {
	m := newTestManager(t)

	c, err := m.GetCart(context.Background(), "99")
	require.NoError(t, err)
	assert.Equal(t, "99", c.OwnerID)
	assert.True(t, c.IsEmpty())
}

func TestClearCart(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddItem(ctx, "1", AddItemInput{ProductID: "P1", Quantity: 1, UnitPrice: 100, AvailableStock: 10})
	require.NoError(t, err)
	require.NoError(t, m.ClearCart(ctx, "1"))

	c, err := m.GetCart(ctx, "1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}
