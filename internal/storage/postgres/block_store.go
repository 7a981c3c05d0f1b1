package postgres

import (
	"context"
	"fmt"

	"campaign-indexer/internal/domain"
	"campaign-indexer/internal/storage"
)

// BlockStore implements storage.BlockStore using PostgreSQL.
type BlockStore struct {
	pool *Pool
}

// NewBlockStore creates a new BlockStore.
func NewBlockStore(pool *Pool) *BlockStore {
	return &BlockStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BlockStore = (*BlockStore)(nil)

// Upsert inserts a block; on conflict by slot the existing row is kept.
func (s *BlockStore) Upsert(ctx context.Context, b *domain.Block) error {
	if b == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO blocks (slot, blockhash, parent_slot, block_time)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slot) DO NOTHING
	`

	_, err := s.pool.Exec(ctx, query, b.Slot, b.Blockhash, b.ParentSlot, b.BlockTime)
	if err != nil {
		return fmt.Errorf("upsert block: %w", err)
	}
	return nil
}
