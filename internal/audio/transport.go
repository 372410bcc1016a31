package audio

import (
	"sync"

	"github.com/CodingFreeze/Harmonize/core/mapping"
)

// transport tracks tempo, rate and running state for the shared clock.
type transport struct {
	mu      sync.Mutex
	bpm     float64
	rate    float64
	running bool
}

func newTransport() *transport {
	return &transport{bpm: mapping.DefaultBPM, rate: 1.0}
}

func (t *transport) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = true
}

func (t *transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}

// Cancel clears any transport-scheduled state and stops the clock.
func (t *transport) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}

func (t *transport) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *transport) BPM() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bpm
}

func (t *transport) SetBPM(bpm float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if bpm > 0 {
		t.bpm = bpm
	}
}

func (t *transport) SetRate(rate float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if rate > 0 {
		t.rate = rate
	}
}

func (t *transport) Rate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rate
}
