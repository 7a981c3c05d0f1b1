package memory

import (
	"context"
	"sync"
	"time"

	"campaign-indexer/internal/domain"
	"campaign-indexer/internal/storage"
)

// BlockStore is an in-memory implementation of storage.BlockStore.
type BlockStore struct {
	mu     sync.RWMutex
	blocks map[int64]*domain.Block
}

// NewBlockStore creates a new in-memory block store.
func NewBlockStore() *BlockStore {
	return &BlockStore{
		blocks: make(map[int64]*domain.Block),
	}
}

// Compile-time interface check.
var _ storage.BlockStore = (*BlockStore)(nil)

// Upsert inserts a block; an existing slot is kept untouched.
func (s *BlockStore) Upsert(_ context.Context, b *domain.Block) error {
	if b == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.blocks[b.Slot]; exists {
		return nil
	}

	stored := *b
	stored.IndexedAt = time.Now().UTC()
	s.blocks[b.Slot] = &stored

	return nil
}

// Get returns the stored block for a slot, or storage.ErrNotFound.
func (s *BlockStore) Get(_ context.Context, slot int64) (*domain.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blocks[slot]
	if !ok {
		return nil, storage.ErrNotFound
	}

	found := *b
	return &found, nil
}
