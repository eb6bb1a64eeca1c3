package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tehraja/backend/internal/domain/shared"
)

func TestNewStockLevel(t *testing.T) {
	t.Run("derives availability from stock", func(t *testing.T) {
		level, err := NewStockLevel(5, 2)
		require.NoError(t, err)
		assert.True(t, level.IsAvailable())
		assert.Equal(t, InStock, level.State())

		empty, err := NewStockLevel(0, 2)
		require.NoError(t, err)
		assert.False(t, empty.IsAvailable())
		assert.Equal(t, OutOfStock, empty.State())
	})

	t.Run("rejects negative values", func(t *testing.T) {
		_, err := NewStockLevel(-1, 0)
		assert.True(t, shared.IsCode(err, shared.CodeValidation))

		_, err = NewStockLevel(1, -1)
		assert.True(t, shared.IsCode(err, shared.CodeValidation))
	})
}

func TestStockLevel_Decrement(t *testing.T) {
	level, _ := NewStockLevel(3, 0)

	t.Run("partial decrement", func(t *testing.T) {
		next, applied, err := level.Decrement(2, OversellClamp)
		require.NoError(t, err)
		assert.Equal(t, 2, applied)
		assert.Equal(t, 1, next.Stock())
		assert.True(t, next.IsAvailable())
		assert.Equal(t, 3, level.Stock(), "value receiver must not mutate")
	})

	t.Run("clamp never goes negative", func(t *testing.T) {
		for _, qty := range []int{3, 4, 100} {
			next, applied, err := level.Decrement(qty, OversellClamp)
			require.NoError(t, err)
			assert.Equal(t, 0, next.Stock())
			assert.Equal(t, 3, applied)
			assert.False(t, next.IsAvailable())
		}
	})

	t.Run("reject policy fails on oversell", func(t *testing.T) {
		next, applied, err := level.Decrement(4, OversellReject)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, 0, applied)
		assert.Equal(t, 3, next.Stock())
	})

	t.Run("reject policy allows exact stock", func(t *testing.T) {
		next, _, err := level.Decrement(3, OversellReject)
		require.NoError(t, err)
		assert.Equal(t, 0, next.Stock())
	})

	t.Run("non-positive quantity is a validation error", func(t *testing.T) {
		_, _, err := level.Decrement(0, OversellClamp)
		assert.True(t, shared.IsCode(err, shared.CodeValidation))
	})
}

func TestStockLevel_HiddenAndStockAreIndependent(t *testing.T) {
	level, _ := NewStockLevel(4, 1)

	hidden := level.WithHidden(true)
	assert.False(t, hidden.IsAvailable())
	assert.Equal(t, Hidden, hidden.State())
	assert.Equal(t, 0, hidden.Purchasable())

	restocked, err := hidden.Restock(2)
	require.NoError(t, err)
	assert.False(t, restocked.IsAvailable(), "restock keeps the hide override")
	assert.Equal(t, 6, restocked.Stock())

	empty, err := level.WithStock(0)
	require.NoError(t, err)
	unhidden := empty.WithHidden(false)
	assert.False(t, unhidden.IsAvailable(), "unhiding cannot make an empty product available")

	emptyHidden := hidden
	emptyHidden, _, err = emptyHidden.Decrement(10, OversellClamp)
	require.NoError(t, err)
	assert.Equal(t, OutOfStock, emptyHidden.State())
	assert.True(t, emptyHidden.IsHidden())
}

func TestStockLevel_Restock(t *testing.T) {
	empty, _ := NewStockLevel(0, 0)
	next, err := empty.Restock(5)
	require.NoError(t, err)
	assert.Equal(t, 5, next.Stock())
	assert.True(t, next.IsAvailable())

	_, err = empty.Restock(0)
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
}

func TestStockLevel_LowStock(t *testing.T) {
	level, _ := NewStockLevel(6, 5)
	assert.False(t, level.IsLowStock())

	next, _, _ := level.Decrement(1, OversellClamp)
	assert.True(t, next.IsLowStock())
	assert.True(t, CrossedThreshold(level, next))

	after, _, _ := next.Decrement(1, OversellClamp)
	assert.False(t, CrossedThreshold(next, after), "already low")
}

func TestRestoreStockLevel_FloorsNegatives(t *testing.T) {
	level := RestoreStockLevel(-4, false, -1)
	assert.Equal(t, 0, level.Stock())
	assert.Equal(t, 0, level.MinThreshold())
	assert.False(t, level.IsAvailable())
}

func TestParseOversellPolicy(t *testing.T) {
	p, err := ParseOversellPolicy("")
	require.NoError(t, err)
	assert.Equal(t, OversellClamp, p)

	p, err = ParseOversellPolicy(" Reject ")
	require.NoError(t, err)
	assert.Equal(t, OversellReject, p)

	_, err = ParseOversellPolicy("backorder")
	assert.Error(t, err)
}

func TestMergeLines(t *testing.T) {
	merged, err := MergeLines([]StockLine{
		{ProductID: "b", Quantity: 1},
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, []StockLine{{ProductID: "b", Quantity: 4}, {ProductID: "a", Quantity: 2}}, merged)
	assert.Equal(t, []string{"b", "a"}, ProductIDs(merged))

	_, err = MergeLines(nil)
	assert.Error(t, err)
	_, err = MergeLines([]StockLine{{ProductID: "a", Quantity: 0}})
	assert.Error(t, err)
	_, err = MergeLines([]StockLine{{Quantity: 1}})
	assert.Error(t, err)
}
