package storage

import (
	"context"

	"campaign-indexer/internal/domain"
)

// BlockStore provides access to blocks storage.
type BlockStore interface {
	// Upsert inserts a block; on conflict by slot it is a no-op.
	// Block facts are immutable once seen: the first writer wins.
	Upsert(ctx context.Context, b *domain.Block) error
}

// TransactionStore provides access to transactions storage.
type TransactionStore interface {
	// Upsert inserts a transaction; on conflict by signature it overwrites
	// slot, block_time, success and fee with the latest observed values.
	Upsert(ctx context.Context, t *domain.Transaction) error

	// GetRecent retrieves the most recent transactions ordered by
	// (slot DESC, id DESC) with limit/offset pagination.
	GetRecent(ctx context.Context, limit, offset int64) ([]*domain.Transaction, error)

	// GetBySignature retrieves all rows stored for a signature.
	GetBySignature(ctx context.Context, signature string) ([]*domain.Transaction, error)

	// MaxSlot returns the highest stored slot, or 0 when the store is empty.
	MaxSlot(ctx context.Context) (int64, error)
}

// CampaignEventStore provides access to campaign_events storage.
type CampaignEventStore interface {
	// Insert adds a decoded event. Rows are append-only; duplicate decodes
	// across restart overlap are accepted as distinct rows.
	Insert(ctx context.Context, e *domain.CampaignEvent) error

	// GetBySignature retrieves all events stored for a signature.
	GetBySignature(ctx context.Context, signature string) ([]*domain.CampaignEvent, error)
}
