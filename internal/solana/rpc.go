package solana

import "context"

// RPCClient defines the Solana RPC HTTP surface consumed by the indexer.
type RPCClient interface {
	// GetTransaction retrieves a confirmed transaction by signature.
	// Returns (nil, nil) when the transaction is not visible yet.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetSlot retrieves the current slot at confirmed commitment.
	GetSlot(ctx context.Context) (int64, error)
}

// Transaction is a fetched transaction carrying the fields the indexer consumes.
type Transaction struct {
	Signature       string
	Slot            int64
	BlockTime       *int64 // Unix seconds, nullable
	RecentBlockhash string // Resolved from the message shape at the fetch boundary
	Meta            *TransactionMeta
}

// TransactionMeta contains transaction metadata.
type TransactionMeta struct {
	Err         interface{}
	Fee         uint64
	LogMessages []string
}

// Success reports whether the transaction executed without error.
func (t *Transaction) Success() bool {
	return t.Meta != nil && t.Meta.Err == nil
}
