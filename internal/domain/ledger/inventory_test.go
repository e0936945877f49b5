package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warehousepro/backend/internal/domain/shared"
)

func TestNewInventory(t *testing.T) {
	t.Run("creates empty row", func(t *testing.T) {
		inv, err := NewInventory(uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, int64(0), inv.Quantity)
		assert.True(t, inv.IsEmpty())
	})

	t.Run("requires product and location", func(t *testing.T) {
		_, err := NewInventory(uuid.Nil, uuid.New())
		assert.Error(t, err)

		_, err = NewInventory(uuid.New(), uuid.Nil)
		assert.Error(t, err)
	})
}

func TestInventory_Increase(t *testing.T) {
	inv, err := NewInventory(uuid.New(), uuid.New())
	require.NoError(t, err)

	t.Run("adds stock", func(t *testing.T) {
		require.NoError(t, inv.Increase(50))
		assert.Equal(t, int64(50), inv.Quantity)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		assert.Error(t, inv.Increase(0))
		assert.Error(t, inv.Increase(-5))
		assert.Equal(t, int64(50), inv.Quantity)
	})
}

func TestInventory_Decrease(t *testing.T) {
	t.Run("removes stock down to zero", func(t *testing.T) {
		inv, err := NewInventory(uuid.New(), uuid.New())
		require.NoError(t, err)
		require.NoError(t, inv.Increase(30))

		require.NoError(t, inv.Decrease(30))
		assert.Equal(t, int64(0), inv.Quantity)
		assert.True(t, inv.IsEmpty())
	})

	t.Run("never goes negative", func(t *testing.T) {
		inv, err := NewInventory(uuid.New(), uuid.New())
		require.NoError(t, err)
		require.NoError(t, inv.Increase(10))

		err = inv.Decrease(11)
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, "INSUFFICIENT_STOCK"))
		assert.Contains(t, err.Error(), "available=10")
		assert.Equal(t, int64(10), inv.Quantity)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		inv, err := NewInventory(uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.Error(t, inv.Decrease(0))
	})
}

func TestInventory_CanFulfill(t *testing.T) {
	inv, err := NewInventory(uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, inv.Increase(20))

	assert.True(t, inv.CanFulfill(20))
	assert.True(t, inv.CanFulfill(1))
	assert.False(t, inv.CanFulfill(21))
}
