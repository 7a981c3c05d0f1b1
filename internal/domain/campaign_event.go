package domain

import "time"

// Event kinds stored in campaign_events.event_type.
const (
	EventCreated   = "created"
	EventDonated   = "donated"
	EventWithdrawn = "withdrawn"
)

// CampaignEvent represents one decoded program event. Rows are append-only;
// one row per successfully decoded event per transaction.
type CampaignEvent struct {
	ID          int64   // Surrogate key assigned by the store
	Signature   string  // Transaction the event was emitted in
	Slot        int64   // Slot the transaction landed in
	EventType   string  // created, donated or withdrawn
	CampaignID  uint64  // Campaign identifier from the payload
	UserPubkey  string  // Creator or donor, base58
	Amount      *int64  // Donated/withdrawn lamports (nil for created)
	GoalAmount  *int64  // Created only
	Deadline    *int64  // Created only, unix seconds
	MetadataURL *string // Created only
	IndexedAt   time.Time
}
