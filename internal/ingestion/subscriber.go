package ingestion

import (
	"context"
	"log"
	"time"

	"campaign-indexer/internal/observability"
	"campaign-indexer/internal/solana"
)

// Notification is one unit of pipeline work: a transaction that mentioned the
// target program, as announced by the log subscription.
type Notification struct {
	Signature string
	Slot      int64
	Program   string
}

// DefaultRetryDelay is the pause between reconnect attempts.
const DefaultRetryDelay = 5 * time.Second

// SubscriberOptions contains configuration for creating a Subscriber.
type SubscriberOptions struct {
	Dialer     solana.WSDialer
	Endpoint   string
	ProgramID  string
	RetryDelay time.Duration // Default: 5s
	Logger     *log.Logger
}

// Subscriber maintains a logs subscription for the target program and feeds
// notifications into the pipeline queue. It reconnects forever: any dial,
// subscribe or stream failure is answered with a fixed delay and a fresh
// connection. Only context cancellation stops it.
type Subscriber struct {
	dial       solana.WSDialer
	endpoint   string
	programID  string
	retryDelay time.Duration
	logger     *log.Logger
	out        chan<- Notification
}

// NewSubscriber creates a subscriber that writes into out.
func NewSubscriber(opts SubscriberOptions, out chan<- Notification) *Subscriber {
	retryDelay := opts.RetryDelay
	if retryDelay == 0 {
		retryDelay = DefaultRetryDelay
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Subscriber{
		dial:       opts.Dialer,
		endpoint:   opts.Endpoint,
		programID:  opts.ProgramID,
		retryDelay: retryDelay,
		logger:     logger,
		out:        out,
	}
}

// Run blocks until the context is cancelled.
func (s *Subscriber) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			s.logger.Printf("Subscription lost: %v", err)
		} else {
			s.logger.Println("Notification stream ended, reconnecting")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryDelay):
		}
		observability.RecordReconnect()
	}
}

// runOnce dials, subscribes and consumes notifications until the stream dies.
func (s *Subscriber) runOnce(ctx context.Context) error {
	client, err := s.dial(ctx, s.endpoint)
	if err != nil {
		return err
	}
	defer client.Close()

	ch, err := client.SubscribeLogs(ctx, solana.LogsFilter{Mentions: []string{s.programID}})
	if err != nil {
		return err
	}

	s.logger.Printf("Subscribed to logs mentioning %s", s.programID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-ch:
			if !ok {
				return nil
			}
			observability.RecordNotificationReceived()
			// Blocking send: a full queue stalls the reader, which
			// pushes backpressure onto the WebSocket connection.
			select {
			case s.out <- Notification{Signature: n.Signature, Slot: n.Slot, Program: s.programID}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
