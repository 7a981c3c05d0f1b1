package memory

import (
	"context"
	"sync"
	"time"

	"campaign-indexer/internal/domain"
	"campaign-indexer/internal/storage"
)

// CampaignEventStore is an in-memory implementation of storage.CampaignEventStore.
type CampaignEventStore struct {
	mu     sync.RWMutex
	events []*domain.CampaignEvent
	nextID int64
}

// NewCampaignEventStore creates a new in-memory campaign event store.
func NewCampaignEventStore() *CampaignEventStore {
	return &CampaignEventStore{}
}

// Compile-time interface check.
var _ storage.CampaignEventStore = (*CampaignEventStore)(nil)

// Insert adds a decoded event. Rows are append-only; duplicates are accepted.
func (s *CampaignEventStore) Insert(_ context.Context, e *domain.CampaignEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *e
	s.nextID++
	stored.ID = s.nextID
	stored.IndexedAt = time.Now().UTC()
	s.events = append(s.events, &stored)

	return nil
}

// GetBySignature retrieves all events stored for a signature, oldest first.
func (s *CampaignEventStore) GetBySignature(_ context.Context, signature string) ([]*domain.CampaignEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found []*domain.CampaignEvent
	for _, e := range s.events {
		if e.Signature == signature {
			ev := *e
			found = append(found, &ev)
		}
	}
	return found, nil
}
