package ingestion

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/mr-tron/base58"

	"campaign-indexer/internal/campaign"
	"campaign-indexer/internal/solana"
)

// fakeRPC serves canned transactions by signature.
type fakeRPC struct {
	mu   sync.Mutex
	txs  map[string]*solana.Transaction
	errs map[string]error
	slot int64
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{
		txs:  make(map[string]*solana.Transaction),
		errs: make(map[string]error),
	}
}

func (f *fakeRPC) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[signature]; ok {
		return nil, err
	}
	return f.txs[signature], nil
}

func (f *fakeRPC) GetSlot(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slot, nil
}

// fakeWSClient replays a fixed set of notifications, then closes the stream.
type fakeWSClient struct {
	notifications []solana.LogNotification
	subscribeErr  error
	gotFilter     *solana.LogsFilter
	closed        chan struct{}
	closeOnce     sync.Once
}

func newFakeWSClient(notifications ...solana.LogNotification) *fakeWSClient {
	return &fakeWSClient{
		notifications: notifications,
		closed:        make(chan struct{}),
	}
}

func (f *fakeWSClient) SubscribeLogs(_ context.Context, filter solana.LogsFilter) (<-chan solana.LogNotification, error) {
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.gotFilter = &filter

	ch := make(chan solana.LogNotification, len(f.notifications))
	for _, n := range f.notifications {
		ch <- n
	}
	close(ch)
	return ch, nil
}

func (f *fakeWSClient) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

// fakeDialer hands out the prepared clients in order, failing once exhausted.
type fakeDialer struct {
	mu      sync.Mutex
	clients []*fakeWSClient
	dials   int
}

func (d *fakeDialer) dial(_ context.Context, _ string) (solana.WSClient, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if len(d.clients) == 0 {
		return nil, errors.New("connection refused")
	}
	client := d.clients[0]
	d.clients = d.clients[1:]
	return client, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// donatedLogLine builds a "Program data: " log line carrying a donated event.
func donatedLogLine(campaignID uint64, pubkey string, amount uint64) string {
	raw, err := base58.Decode(pubkey)
	if err != nil || len(raw) != 32 {
		panic("test pubkey must decode to 32 bytes")
	}

	payload := make([]byte, 0, 56)
	payload = append(payload, make([]byte, 8)...) // discriminator
	payload = binary.LittleEndian.AppendUint64(payload, campaignID)
	payload = append(payload, raw...)
	payload = binary.LittleEndian.AppendUint64(payload, amount)

	return campaign.ProgramDataPrefix + base64.StdEncoding.EncodeToString(payload)
}

// fetchedTx builds a confirmed transaction whose logs carry the given lines.
func fetchedTx(signature string, slot int64, logs []string) *solana.Transaction {
	blockTime := int64(1700000000)
	return &solana.Transaction{
		Signature:       signature,
		Slot:            slot,
		BlockTime:       &blockTime,
		RecentBlockhash: "FakeBlockhash1111111111111111111",
		Meta: &solana.TransactionMeta{
			Fee:         5000,
			LogMessages: logs,
		},
	}
}
