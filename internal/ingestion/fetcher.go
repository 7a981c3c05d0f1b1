package ingestion

import (
	"context"
	"fmt"

	"campaign-indexer/internal/solana"
)

// FetchError marks a transaction that could not be retrieved. The pipeline
// drops the notification and moves on; the transaction is not retried.
type FetchError struct {
	Signature string
	Err       error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch transaction %s: not visible at confirmed commitment", e.Signature)
	}
	return fmt.Sprintf("fetch transaction %s: %v", e.Signature, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves full transaction details for notified signatures.
type Fetcher struct {
	rpc solana.RPCClient
}

// NewFetcher creates a fetcher backed by the given RPC client.
func NewFetcher(rpc solana.RPCClient) *Fetcher {
	return &Fetcher{rpc: rpc}
}

// Fetch retrieves a transaction by signature. RPC failures and transactions
// not yet visible at confirmed commitment both surface as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, signature string) (*solana.Transaction, error) {
	tx, err := f.rpc.GetTransaction(ctx, signature)
	if err != nil {
		return nil, &FetchError{Signature: signature, Err: err}
	}
	if tx == nil {
		return nil, &FetchError{Signature: signature}
	}
	return tx, nil
}
