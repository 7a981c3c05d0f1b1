package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"campaign-indexer/internal/domain"
)

func TestBlockStore_Upsert_FirstWriterWins(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBlockStore(pool)
	ctx := context.Background()

	first := &domain.Block{
		Slot:       100,
		Blockhash:  "hash-first",
		ParentSlot: ptr(int64(99)),
		BlockTime:  ptr(int64(1700000000)),
	}
	require.NoError(t, store.Upsert(ctx, first))

	// Same slot, different facts: must be ignored
	second := &domain.Block{
		Slot:      100,
		Blockhash: "hash-second",
	}
	require.NoError(t, store.Upsert(ctx, second))

	var blockhash string
	var parentSlot *int64
	err := pool.QueryRow(ctx,
		`SELECT blockhash, parent_slot FROM blocks WHERE slot = $1`, int64(100),
	).Scan(&blockhash, &parentSlot)
	require.NoError(t, err)

	require.Equal(t, "hash-first", blockhash)
	require.NotNil(t, parentSlot)
	require.Equal(t, int64(99), *parentSlot)
}

func TestBlockStore_Upsert_NilableFields(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBlockStore(pool)
	ctx := context.Background()

	// Slot 0 has no parent and may have no block time
	require.NoError(t, store.Upsert(ctx, &domain.Block{Slot: 0, Blockhash: "genesis"}))

	var parentSlot, blockTime *int64
	err := pool.QueryRow(ctx,
		`SELECT parent_slot, block_time FROM blocks WHERE slot = 0`,
	).Scan(&parentSlot, &blockTime)
	require.NoError(t, err)

	require.Nil(t, parentSlot)
	require.Nil(t, blockTime)
}

func TestBlockStore_Upsert_NilInput(t *testing.T) {
	store := NewBlockStore(nil)
	require.Error(t, store.Upsert(context.Background(), nil))
}
