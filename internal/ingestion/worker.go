package ingestion

import (
	"context"
	"log"

	"campaign-indexer/internal/campaign"
	"campaign-indexer/internal/domain"
	"campaign-indexer/internal/observability"
	"campaign-indexer/internal/solana"
	"campaign-indexer/internal/storage"
)

// WorkerOptions contains configuration for creating a Worker.
type WorkerOptions struct {
	Fetcher   *Fetcher
	Blocks    storage.BlockStore
	Txs       storage.TransactionStore
	Events    storage.CampaignEventStore
	Watermark *Watermark
	Logger    *log.Logger
}

// Worker drains the pipeline queue sequentially. One notification is fully
// processed before the next is taken, so rows land in stream order.
type Worker struct {
	fetcher   *Fetcher
	blocks    storage.BlockStore
	txs       storage.TransactionStore
	events    storage.CampaignEventStore
	watermark *Watermark
	logger    *log.Logger
	in        <-chan Notification
}

// NewWorker creates a worker that reads from in.
func NewWorker(opts WorkerOptions, in <-chan Notification) *Worker {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Worker{
		fetcher:   opts.Fetcher,
		blocks:    opts.Blocks,
		txs:       opts.Txs,
		events:    opts.Events,
		watermark: opts.Watermark,
		logger:    logger,
		in:        in,
	}
}

// Run blocks until the context is cancelled or the queue is closed.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-w.in:
			if !ok {
				return nil
			}
			w.process(ctx, n)
			observability.UpdateQueueDepth(len(w.in))
		}
	}
}

// process handles one notification. Failures never stop the pipeline: a fetch
// failure drops the notification, a storage failure aborts it mid-way. Rows
// written before the failing step stay in place; idempotent writes absorb the
// overlap when the transaction is seen again.
func (w *Worker) process(ctx context.Context, n Notification) {
	if w.watermark.Advance(n.Slot) {
		observability.UpdateHighestSlot(n.Slot)
	}

	tx, err := w.fetcher.Fetch(ctx, n.Signature)
	if err != nil {
		observability.RecordFetchError()
		w.logger.Printf("Dropping notification: %v", err)
		return
	}

	block := &domain.Block{
		Slot:      tx.Slot,
		Blockhash: tx.RecentBlockhash,
		BlockTime: tx.BlockTime,
	}
	if tx.Slot > 0 {
		parent := tx.Slot - 1
		block.ParentSlot = &parent
	}
	if err := w.blocks.Upsert(ctx, block); err != nil {
		observability.RecordPersistenceError()
		w.logger.Printf("Failed to store block %d: %v", tx.Slot, err)
		return
	}

	if err := w.txs.Upsert(ctx, transactionRow(tx)); err != nil {
		observability.RecordPersistenceError()
		w.logger.Printf("Failed to store transaction %s: %v", tx.Signature, err)
		return
	}
	observability.RecordTransactionIndexed()

	if tx.Meta == nil {
		return
	}
	event := campaign.Decode(tx.Meta.LogMessages)
	if event == nil {
		return
	}

	if err := w.events.Insert(ctx, eventRow(tx, event)); err != nil {
		observability.RecordPersistenceError()
		w.logger.Printf("Failed to store %s event for %s: %v", event.Kind, tx.Signature, err)
		return
	}
	observability.RecordEventDecoded(string(event.Kind))
	w.logger.Printf("Indexed %s event for campaign %d (tx %s)", event.Kind, event.CampaignID, tx.Signature)
}

// transactionRow maps a fetched transaction onto its storage row.
func transactionRow(tx *solana.Transaction) *domain.Transaction {
	row := &domain.Transaction{
		Signature: tx.Signature,
		Slot:      tx.Slot,
		BlockTime: tx.BlockTime,
		Success:   tx.Success(),
	}
	if tx.Meta != nil {
		fee := int64(tx.Meta.Fee)
		row.Fee = &fee
	}
	return row
}

// eventRow maps a decoded program event onto its storage row.
func eventRow(tx *solana.Transaction, e *campaign.Event) *domain.CampaignEvent {
	row := &domain.CampaignEvent{
		Signature:  tx.Signature,
		Slot:       tx.Slot,
		EventType:  string(e.Kind),
		CampaignID: e.CampaignID,
		UserPubkey: e.Pubkey,
	}

	switch e.Kind {
	case campaign.KindCreated:
		goal := int64(e.GoalAmount)
		deadline := e.Deadline
		url := e.MetadataURL
		row.GoalAmount = &goal
		row.Deadline = &deadline
		row.MetadataURL = &url
	case campaign.KindDonated, campaign.KindWithdrawn:
		amount := int64(e.Amount)
		row.Amount = &amount
	}

	return row
}
