package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"campaign-indexer/internal/domain"
	"campaign-indexer/internal/storage"
)

// TransactionStore is an in-memory implementation of storage.TransactionStore.
type TransactionStore struct {
	mu     sync.RWMutex
	bySig  map[string]*domain.Transaction
	nextID int64
}

// NewTransactionStore creates a new in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		bySig: make(map[string]*domain.Transaction),
	}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// Upsert inserts a transaction; an existing signature is overwritten with the
// latest slot, block time, success flag and fee.
func (s *TransactionStore) Upsert(_ context.Context, t *domain.Transaction) error {
	if t == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *t
	stored.IndexedAt = time.Now().UTC()

	if existing, ok := s.bySig[t.Signature]; ok {
		stored.ID = existing.ID
	} else {
		s.nextID++
		stored.ID = s.nextID
	}
	s.bySig[t.Signature] = &stored

	return nil
}

// GetRecent retrieves transactions ordered by (slot DESC, id DESC).
func (s *TransactionStore) GetRecent(_ context.Context, limit, offset int64) ([]*domain.Transaction, error) {
	s.mu.RLock()
	all := make([]*domain.Transaction, 0, len(s.bySig))
	for _, t := range s.bySig {
		found := *t
		all = append(all, &found)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Slot != all[j].Slot {
			return all[i].Slot > all[j].Slot
		}
		return all[i].ID > all[j].ID
	})

	if offset >= int64(len(all)) {
		return nil, nil
	}
	all = all[offset:]
	if limit < int64(len(all)) {
		all = all[:limit]
	}

	return all, nil
}

// GetBySignature retrieves all rows stored for a signature.
func (s *TransactionStore) GetBySignature(_ context.Context, signature string) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.bySig[signature]
	if !ok {
		return nil, nil
	}

	found := *t
	return []*domain.Transaction{&found}, nil
}

// MaxSlot returns the highest stored slot, or 0 when the store is empty.
func (s *TransactionStore) MaxSlot(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var maxSlot int64
	for _, t := range s.bySig {
		if t.Slot > maxSlot {
			maxSlot = t.Slot
		}
	}
	return maxSlot, nil
}
