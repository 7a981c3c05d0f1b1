package domain

import "time"

// Block represents a Solana block row. Block facts are immutable once seen:
// the first writer for a slot wins.
type Block struct {
	Slot       int64     // Slot number (unique key)
	Blockhash  string    // Recent blockhash of the first transaction seen in the slot
	ParentSlot *int64    // slot-1, nil for slot 0
	BlockTime  *int64    // Unix timestamp in seconds (nullable)
	IndexedAt  time.Time // When the row was first written
}
