package campaign

// Kind identifies the logical type of a decoded program event.
type Kind string

// Event kinds emitted by the campaign program.
const (
	KindCreated   Kind = "created"
	KindDonated   Kind = "donated"
	KindWithdrawn Kind = "withdrawn"
)

// Event is a decoded program event extracted from transaction logs.
// Exactly one of the kind-specific field groups is populated.
type Event struct {
	Kind       Kind
	CampaignID uint64
	Pubkey     string // Creator or donor, base58

	// Donated / withdrawn
	Amount uint64 // Lamports

	// Created only
	GoalAmount  uint64 // Lamports
	Deadline    int64  // Unix timestamp in seconds
	MetadataURL string
}
