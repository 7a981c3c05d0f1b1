// Package ingestion implements the live indexing pipeline: a reconnecting
// log subscriber feeding a bounded queue drained by a sequential worker.
package ingestion

import (
	"context"
	"log"
	"time"

	"campaign-indexer/internal/solana"
	"campaign-indexer/internal/storage"
)

// DefaultQueueSize bounds the pipeline queue. Sends block when it fills,
// which stalls the subscriber instead of growing memory without limit.
const DefaultQueueSize = 1000

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Dialer     solana.WSDialer
	WSEndpoint string
	ProgramID  string
	RPC        solana.RPCClient
	Blocks     storage.BlockStore
	Txs        storage.TransactionStore
	Events     storage.CampaignEventStore
	Watermark  *Watermark
	QueueSize  int
	RetryDelay time.Duration
	Logger     *log.Logger
}

// Runner wires the subscriber and the worker around a shared queue.
type Runner struct {
	subscriber *Subscriber
	worker     *Worker
	queue      chan Notification
	logger     *log.Logger
}

// NewRunner creates the full pipeline.
func NewRunner(opts RunnerOptions) *Runner {
	queueSize := opts.QueueSize
	if queueSize == 0 {
		queueSize = DefaultQueueSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	queue := make(chan Notification, queueSize)

	subscriber := NewSubscriber(SubscriberOptions{
		Dialer:     opts.Dialer,
		Endpoint:   opts.WSEndpoint,
		ProgramID:  opts.ProgramID,
		RetryDelay: opts.RetryDelay,
		Logger:     logger,
	}, queue)

	worker := NewWorker(WorkerOptions{
		Fetcher:   NewFetcher(opts.RPC),
		Blocks:    opts.Blocks,
		Txs:       opts.Txs,
		Events:    opts.Events,
		Watermark: opts.Watermark,
		Logger:    logger,
	}, queue)

	return &Runner{
		subscriber: subscriber,
		worker:     worker,
		queue:      queue,
		logger:     logger,
	}
}

// Run starts the subscriber and drains the queue until the context is
// cancelled. The worker finishes processing remaining queued notifications
// only up to cancellation; in-flight work is cut short.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Println("Starting indexing pipeline...")

	go func() {
		// Subscriber returns only on cancellation; closing the queue
		// lets the worker drain and exit cleanly.
		_ = r.subscriber.Run(ctx)
		close(r.queue)
	}()

	err := r.worker.Run(ctx)
	r.logger.Println("Indexing pipeline stopped")
	return err
}
