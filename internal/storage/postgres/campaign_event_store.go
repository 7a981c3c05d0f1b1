package postgres

import (
	"context"
	"fmt"

	"campaign-indexer/internal/domain"
	"campaign-indexer/internal/storage"
)

// CampaignEventStore implements storage.CampaignEventStore using PostgreSQL.
type CampaignEventStore struct {
	pool *Pool
}

// NewCampaignEventStore creates a new CampaignEventStore.
func NewCampaignEventStore(pool *Pool) *CampaignEventStore {
	return &CampaignEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CampaignEventStore = (*CampaignEventStore)(nil)

// Insert adds a decoded event. Rows are append-only.
func (s *CampaignEventStore) Insert(ctx context.Context, e *domain.CampaignEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO campaign_events (
			signature, slot, event_type, campaign_id, user_pubkey,
			amount, goal_amount, deadline, metadata_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		e.Signature,
		e.Slot,
		e.EventType,
		int64(e.CampaignID),
		e.UserPubkey,
		e.Amount,
		e.GoalAmount,
		e.Deadline,
		e.MetadataURL,
	)
	if err != nil {
		return fmt.Errorf("insert campaign event: %w", err)
	}
	return nil
}

// GetBySignature retrieves all events stored for a signature, oldest first.
func (s *CampaignEventStore) GetBySignature(ctx context.Context, signature string) ([]*domain.CampaignEvent, error) {
	query := `
		SELECT id, signature, slot, event_type, campaign_id, user_pubkey,
		       amount, goal_amount, deadline, metadata_url, indexed_at
		FROM campaign_events
		WHERE signature = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, signature)
	if err != nil {
		return nil, fmt.Errorf("get campaign events by signature: %w", err)
	}
	defer rows.Close()

	var events []*domain.CampaignEvent
	for rows.Next() {
		var e domain.CampaignEvent
		var campaignID int64

		err := rows.Scan(
			&e.ID,
			&e.Signature,
			&e.Slot,
			&e.EventType,
			&campaignID,
			&e.UserPubkey,
			&e.Amount,
			&e.GoalAmount,
			&e.Deadline,
			&e.MetadataURL,
			&e.IndexedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan campaign event row: %w", err)
		}

		e.CampaignID = uint64(campaignID)
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaign event rows: %w", err)
	}

	return events, nil
}
