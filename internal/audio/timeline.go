package audio

import (
	"sync"

	"github.com/CodingFreeze/Harmonize/core/synth"
)

// timeline arms one timer per event. The transport rate in force at Start
// scales event spacing; later rate changes do not reschedule armed timers.
type timeline struct {
	backend *Backend
	events  []synth.Event
	fire    func(when float64, ev synth.Event)

	mu       sync.Mutex
	timers   []synth.Timer
	started  bool
	disposed bool
}

func (t *timeline) Start(offsetSeconds float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.disposed || t.started {
		return
	}
	t.started = true
	rate := t.backend.transport.Rate()
	if rate <= 0 {
		rate = 1
	}
	for _, ev := range t.events {
		if ev.Offset < offsetSeconds {
			continue
		}
		ev := ev
		delay := (ev.Offset - offsetSeconds) / rate
		at := t.backend.Now() + delay
		t.timers = append(t.timers, t.backend.clock.AfterFunc(secondsToDuration(delay), func() {
			t.fire(at, ev)
		}))
	}
	t.backend.logger.Debugf("[AUDIO] Timeline started at %.2fs (%d events, rate %.2f)",
		offsetSeconds, len(t.timers), rate)
}

func (t *timeline) Stop() {
	t.mu.Lock()
	timers := t.timers
	t.timers = nil
	t.started = false
	t.mu.Unlock()
	for _, tm := range timers {
		tm.Stop()
	}
}

func (t *timeline) Dispose() {
	t.Stop()
	t.mu.Lock()
	t.disposed = true
	t.mu.Unlock()
}
