package domain

import "time"

// Transaction represents an indexed transaction row. Re-processing the same
// signature overwrites slot/block_time/success/fee with the latest observed values.
type Transaction struct {
	ID        int64     // Surrogate key assigned by the store
	Signature string    // Transaction signature (unique key)
	Slot      int64     // Slot the transaction landed in
	BlockTime *int64    // Unix timestamp in seconds (nullable)
	Success   bool      // True when transaction meta carries no error
	Fee       *int64    // Fee in lamports (nullable)
	IndexedAt time.Time // When the row was last written
}
