package ingestion

import "sync"

// Watermark tracks the highest slot observed from the subscription stream.
// It only moves forward; a single writer advances it while readers poll it
// from the status endpoint.
type Watermark struct {
	mu   sync.RWMutex
	slot int64
}

// NewWatermark creates a watermark starting at the given slot.
func NewWatermark(initial int64) *Watermark {
	return &Watermark{slot: initial}
}

// Load returns the current watermark slot.
func (w *Watermark) Load() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.slot
}

// Advance moves the watermark forward to slot. Slots at or below the current
// value are ignored. Returns true when the watermark moved.
func (w *Watermark) Advance(slot int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if slot <= w.slot {
		return false
	}
	w.slot = slot
	return true
}
