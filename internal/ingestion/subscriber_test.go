package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"campaign-indexer/internal/solana"
)

func TestSubscriber_DeliversNotifications(t *testing.T) {
	client := newFakeWSClient(
		solana.LogNotification{Signature: "sig1", Slot: 100},
		solana.LogNotification{Signature: "sig2", Slot: 101},
	)
	dialer := &fakeDialer{clients: []*fakeWSClient{client}}

	out := make(chan Notification, 16)
	sub := NewSubscriber(SubscriberOptions{
		Dialer:     dialer.dial,
		Endpoint:   "ws://test",
		ProgramID:  "Camp111",
		RetryDelay: 10 * time.Millisecond,
	}, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sub.Run(ctx) }()

	for _, want := range []Notification{
		{Signature: "sig1", Slot: 100, Program: "Camp111"},
		{Signature: "sig2", Slot: 101, Program: "Camp111"},
	} {
		select {
		case got := <-out:
			if got != want {
				t.Errorf("Notification mismatch: got %+v, want %+v", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Timed out waiting for notification")
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSubscriber_FiltersByProgram(t *testing.T) {
	client := newFakeWSClient(solana.LogNotification{Signature: "sig1", Slot: 1})
	dialer := &fakeDialer{clients: []*fakeWSClient{client}}

	out := make(chan Notification, 1)
	sub := NewSubscriber(SubscriberOptions{
		Dialer:     dialer.dial,
		Endpoint:   "ws://test",
		ProgramID:  "Camp111",
		RetryDelay: 10 * time.Millisecond,
	}, out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sub.Run(ctx)

	select {
	case <-out:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for notification")
	}

	if client.gotFilter == nil || len(client.gotFilter.Mentions) != 1 || client.gotFilter.Mentions[0] != "Camp111" {
		t.Errorf("Subscription filter mismatch: got %+v", client.gotFilter)
	}
}

func TestSubscriber_ReconnectsForever(t *testing.T) {
	// First subscribe fails, then dials fail outright, then a working
	// client appears. The subscriber must survive all of it.
	broken := newFakeWSClient()
	broken.subscribeErr = errors.New("subscribe rejected")
	working := newFakeWSClient(solana.LogNotification{Signature: "sig1", Slot: 100})

	dialer := &fakeDialer{clients: []*fakeWSClient{broken}}

	out := make(chan Notification, 1)
	sub := NewSubscriber(SubscriberOptions{
		Dialer:     dialer.dial,
		Endpoint:   "ws://test",
		ProgramID:  "Camp111",
		RetryDelay: 5 * time.Millisecond,
	}, out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sub.Run(ctx)

	// Let it burn through the broken client and a few refused dials
	time.Sleep(30 * time.Millisecond)
	dialer.mu.Lock()
	dialer.clients = append(dialer.clients, working)
	dialer.mu.Unlock()

	select {
	case got := <-out:
		if got.Signature != "sig1" {
			t.Errorf("Signature mismatch: got %s", got.Signature)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Subscriber did not recover")
	}

	if dialer.dialCount() < 3 {
		t.Errorf("Expected repeated dial attempts, got %d", dialer.dialCount())
	}
}

func TestSubscriber_FullQueueBlocksWithoutDropping(t *testing.T) {
	client := newFakeWSClient(
		solana.LogNotification{Signature: "sig1", Slot: 1},
		solana.LogNotification{Signature: "sig2", Slot: 2},
		solana.LogNotification{Signature: "sig3", Slot: 3},
	)
	dialer := &fakeDialer{clients: []*fakeWSClient{client}}

	// Capacity one: the second notification must stall the subscriber
	out := make(chan Notification, 1)
	sub := NewSubscriber(SubscriberOptions{
		Dialer:     dialer.dial,
		Endpoint:   "ws://test",
		ProgramID:  "Camp111",
		RetryDelay: time.Hour, // a reconnect before draining would fail the test
	}, out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sub.Run(ctx)

	time.Sleep(20 * time.Millisecond)
	if got := len(out); got != 1 {
		t.Fatalf("Expected exactly 1 buffered notification while blocked, got %d", got)
	}

	for _, want := range []string{"sig1", "sig2", "sig3"} {
		select {
		case got := <-out:
			if got.Signature != want {
				t.Errorf("Order violated: got %s, want %s", got.Signature, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Timed out waiting for %s", want)
		}
	}
}

func TestSubscriber_ClosesClientOnStreamEnd(t *testing.T) {
	client := newFakeWSClient(solana.LogNotification{Signature: "sig1", Slot: 1})
	dialer := &fakeDialer{clients: []*fakeWSClient{client}}

	out := make(chan Notification, 1)
	sub := NewSubscriber(SubscriberOptions{
		Dialer:     dialer.dial,
		Endpoint:   "ws://test",
		ProgramID:  "Camp111",
		RetryDelay: 10 * time.Millisecond,
	}, out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sub.Run(ctx)

	select {
	case <-client.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Client was not closed after its stream ended")
	}
}
