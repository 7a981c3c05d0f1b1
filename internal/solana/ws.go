package solana

import "context"

// WSClient defines a single-connection Solana WebSocket subscription client.
// Reconnect policy lives in the caller: when the underlying stream fails, the
// notification channel is closed and the client must be discarded.
type WSClient interface {
	// SubscribeLogs subscribes to logs matching the filter at confirmed
	// commitment. The returned channel is closed when the connection dies
	// or the client is closed.
	SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// WSDialer opens a new WSClient connection. Injected into the subscriber so
// tests can substitute an in-process stream.
type WSDialer func(ctx context.Context, endpoint string) (WSClient, error)

// LogsFilter defines subscription filter for logs.
type LogsFilter struct {
	// Mentions filters logs that mention any of these program IDs.
	Mentions []string
}

// LogNotification represents a logsNotification message.
type LogNotification struct {
	Signature string
	Slot      int64
	Logs      []string
	Err       interface{}
}
