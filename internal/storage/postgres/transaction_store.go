package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"campaign-indexer/internal/domain"
	"campaign-indexer/internal/storage"
)

// TransactionStore implements storage.TransactionStore using PostgreSQL.
type TransactionStore struct {
	pool *Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool *Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// Upsert inserts a transaction; on conflict by signature the row is
// overwritten with the latest observed slot, block_time, success and fee.
func (s *TransactionStore) Upsert(ctx context.Context, t *domain.Transaction) error {
	if t == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO transactions (signature, slot, block_time, success, fee)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (signature) DO UPDATE
		SET slot = EXCLUDED.slot,
		    block_time = EXCLUDED.block_time,
		    success = EXCLUDED.success,
		    fee = EXCLUDED.fee
	`

	_, err := s.pool.Exec(ctx, query, t.Signature, t.Slot, t.BlockTime, t.Success, t.Fee)
	if err != nil {
		return fmt.Errorf("upsert transaction: %w", err)
	}
	return nil
}

// GetRecent retrieves the most recent transactions ordered by (slot DESC, id DESC).
func (s *TransactionStore) GetRecent(ctx context.Context, limit, offset int64) ([]*domain.Transaction, error) {
	query := `
		SELECT id, signature, slot, block_time, success, fee, indexed_at
		FROM transactions
		ORDER BY slot DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get recent transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetBySignature retrieves all rows stored for a signature.
func (s *TransactionStore) GetBySignature(ctx context.Context, signature string) ([]*domain.Transaction, error) {
	query := `
		SELECT id, signature, slot, block_time, success, fee, indexed_at
		FROM transactions
		WHERE signature = $1
	`

	rows, err := s.pool.Query(ctx, query, signature)
	if err != nil {
		return nil, fmt.Errorf("get transactions by signature: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// MaxSlot returns the highest stored slot, or 0 when the table is empty.
func (s *TransactionStore) MaxSlot(ctx context.Context) (int64, error) {
	var maxSlot int64
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(slot), 0) FROM transactions`).Scan(&maxSlot)
	if err != nil {
		return 0, fmt.Errorf("max transaction slot: %w", err)
	}
	return maxSlot, nil
}

// scanTransactions scans multiple rows into a slice of Transaction.
func scanTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var txs []*domain.Transaction

	for rows.Next() {
		var t domain.Transaction

		err := rows.Scan(
			&t.ID,
			&t.Signature,
			&t.Slot,
			&t.BlockTime,
			&t.Success,
			&t.Fee,
			&t.IndexedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}

		txs = append(txs, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return txs, nil
}
