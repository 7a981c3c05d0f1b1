package ingestion

import (
	"context"
	"errors"
	"testing"

	"campaign-indexer/internal/domain"
	"campaign-indexer/internal/storage/memory"
)

// systemProgram decodes to 32 zero bytes, which is enough for payload tests.
const systemProgram = "11111111111111111111111111111111"

type workerFixture struct {
	rpc       *fakeRPC
	blocks    *memory.BlockStore
	txs       *memory.TransactionStore
	events    *memory.CampaignEventStore
	watermark *Watermark
	queue     chan Notification
	worker    *Worker
}

func newWorkerFixture() *workerFixture {
	f := &workerFixture{
		rpc:       newFakeRPC(),
		blocks:    memory.NewBlockStore(),
		txs:       memory.NewTransactionStore(),
		events:    memory.NewCampaignEventStore(),
		watermark: NewWatermark(0),
		queue:     make(chan Notification, 16),
	}
	f.worker = NewWorker(WorkerOptions{
		Fetcher:   NewFetcher(f.rpc),
		Blocks:    f.blocks,
		Txs:       f.txs,
		Events:    f.events,
		Watermark: f.watermark,
	}, f.queue)
	return f
}

// drain feeds the notifications through the worker and waits for completion.
func (f *workerFixture) drain(t *testing.T, notifications ...Notification) {
	t.Helper()
	for _, n := range notifications {
		f.queue <- n
	}
	close(f.queue)
	if err := f.worker.Run(context.Background()); err != nil {
		t.Fatalf("Worker run failed: %v", err)
	}
}

func TestWorker_IndexesDonationEvent(t *testing.T) {
	f := newWorkerFixture()
	f.rpc.txs["sig1"] = fetchedTx("sig1", 100, []string{
		"Program Camp111 invoke [1]",
		donatedLogLine(7, systemProgram, 250_000),
		"Program Camp111 success",
	})

	f.drain(t, Notification{Signature: "sig1", Slot: 100})

	ctx := context.Background()

	block, err := f.blocks.Get(ctx, 100)
	if err != nil {
		t.Fatalf("Block not stored: %v", err)
	}
	if block.ParentSlot == nil || *block.ParentSlot != 99 {
		t.Errorf("ParentSlot mismatch: got %v, want 99", block.ParentSlot)
	}

	rows, err := f.txs.GetBySignature(ctx, "sig1")
	if err != nil || len(rows) != 1 {
		t.Fatalf("Expected 1 transaction row, got %d (err %v)", len(rows), err)
	}
	if !rows[0].Success {
		t.Error("Expected success=true")
	}
	if rows[0].Fee == nil || *rows[0].Fee != 5000 {
		t.Errorf("Fee mismatch: got %v, want 5000", rows[0].Fee)
	}

	events, err := f.events.GetBySignature(ctx, "sig1")
	if err != nil || len(events) != 1 {
		t.Fatalf("Expected 1 event row, got %d (err %v)", len(events), err)
	}
	if events[0].EventType != domain.EventDonated {
		t.Errorf("EventType mismatch: got %s", events[0].EventType)
	}
	if events[0].CampaignID != 7 {
		t.Errorf("CampaignID mismatch: got %d", events[0].CampaignID)
	}
	if events[0].Amount == nil || *events[0].Amount != 250_000 {
		t.Errorf("Amount mismatch: got %v", events[0].Amount)
	}

	if f.watermark.Load() != 100 {
		t.Errorf("Watermark: got %d, want 100", f.watermark.Load())
	}
}

func TestWorker_DropsOnFetchError(t *testing.T) {
	f := newWorkerFixture()
	f.rpc.errs["bad"] = errors.New("rpc unavailable")
	f.rpc.txs["good"] = fetchedTx("good", 200, nil)

	f.drain(t,
		Notification{Signature: "bad", Slot: 150},
		Notification{Signature: "good", Slot: 200},
	)

	ctx := context.Background()

	rows, err := f.txs.GetBySignature(ctx, "bad")
	if err != nil || len(rows) != 0 {
		t.Errorf("Dropped notification must not be stored, got %d rows", len(rows))
	}

	rows, err = f.txs.GetBySignature(ctx, "good")
	if err != nil || len(rows) != 1 {
		t.Errorf("Pipeline must continue past a fetch failure, got %d rows", len(rows))
	}

	// The watermark tracks notified slots even when the fetch fails
	if f.watermark.Load() != 200 {
		t.Errorf("Watermark: got %d, want 200", f.watermark.Load())
	}
}

func TestWorker_TransactionWithoutEvent(t *testing.T) {
	f := newWorkerFixture()
	f.rpc.txs["plain"] = fetchedTx("plain", 300, []string{
		"Program Camp111 invoke [1]",
		"Program log: Instruction: Donate",
		"Program Camp111 success",
	})

	f.drain(t, Notification{Signature: "plain", Slot: 300})

	ctx := context.Background()

	rows, err := f.txs.GetBySignature(ctx, "plain")
	if err != nil || len(rows) != 1 {
		t.Fatalf("Expected transaction stored, got %d rows", len(rows))
	}

	events, err := f.events.GetBySignature(ctx, "plain")
	if err != nil || len(events) != 0 {
		t.Errorf("Expected no events, got %d", len(events))
	}
}

func TestWorker_FailedTransactionIndexed(t *testing.T) {
	f := newWorkerFixture()
	tx := fetchedTx("failed", 400, nil)
	tx.Meta.Err = map[string]interface{}{"InstructionError": []interface{}{0.0, "Custom"}}
	f.rpc.txs["failed"] = tx

	f.drain(t, Notification{Signature: "failed", Slot: 400})

	rows, err := f.txs.GetBySignature(context.Background(), "failed")
	if err != nil || len(rows) != 1 {
		t.Fatalf("Expected failed transaction stored, got %d rows", len(rows))
	}
	if rows[0].Success {
		t.Error("Expected success=false for failed transaction")
	}
}
