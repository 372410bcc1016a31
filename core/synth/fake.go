package synth

import (
	"sort"
	"sync"
	"time"

	"github.com/CodingFreeze/Harmonize/core/mapping"
)

// Deterministic stand-ins for the capability surface. The engine test-suite
// uses these to drive playback without real time or real audio.

// FakeClock is a manually advanced clock. AfterFunc timers fire during
// Advance, in deadline order, with Now reflecting each deadline as it fires.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *FakeClock
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Unix(0, 0)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, deadline: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward, firing every due timer. Callbacks run
// without the clock lock held, so they may schedule further timers.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		sort.SliceStable(c.timers, func(i, j int) bool {
			return c.timers[i].deadline.Before(c.timers[j].deadline)
		})
		for _, t := range c.timers {
			if !t.stopped && !t.fired && !t.deadline.After(target) {
				next = t
				break
			}
		}
		if next == nil {
			break
		}
		next.fired = true
		if next.deadline.After(c.now) {
			c.now = next.deadline
		}
		fn := next.fn
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// FakeTrigger records one TriggerAttackRelease call.
type FakeTrigger struct {
	Note     string
	Duration mapping.NoteDuration
	At       float64
	Velocity float64
}

type FakeVoice struct {
	mu       sync.Mutex
	Kind     VoiceKind
	Triggers []FakeTrigger
	Params   EffectParams
	Disposed bool
}

func (v *FakeVoice) TriggerAttackRelease(note string, dur mapping.NoteDuration, at float64, velocity float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Triggers = append(v.Triggers, FakeTrigger{Note: note, Duration: dur, At: at, Velocity: velocity})
}

func (v *FakeVoice) Connect(params EffectParams) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Params = params
}

func (v *FakeVoice) Dispose() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Disposed = true
}

func (v *FakeVoice) TriggerCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.Triggers)
}

type FakeTimeline struct {
	mu          sync.Mutex
	Events      []Event
	fire        func(when float64, ev Event)
	Started     bool
	StartOffset float64
	Stopped     bool
	Disposed    bool
}

func (t *FakeTimeline) Start(offsetSeconds float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Started = true
	t.Stopped = false
	t.StartOffset = offsetSeconds
}

func (t *FakeTimeline) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Stopped = true
}

func (t *FakeTimeline) Dispose() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Disposed = true
}

// FireAll synchronously fires every event at or past the start offset, as if
// the whole timeline elapsed at once.
func (t *FakeTimeline) FireAll() {
	t.mu.Lock()
	events := append([]Event(nil), t.Events...)
	offset := t.StartOffset
	fire := t.fire
	t.mu.Unlock()
	for _, ev := range events {
		if ev.Offset >= offset {
			fire(ev.Offset, ev)
		}
	}
}

type FakeTransport struct {
	mu      sync.Mutex
	bpm     float64
	rate    float64
	Running bool
	Starts  int
	Stops   int
	Cancels int
}

func NewFakeTransport() *FakeTransport {
	return &FakeTransport{bpm: mapping.DefaultBPM, rate: 1.0}
}

func (t *FakeTransport) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Running = true
	t.Starts++
}

func (t *FakeTransport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Running = false
	t.Stops++
}

func (t *FakeTransport) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Cancels++
}

func (t *FakeTransport) BPM() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bpm
}

func (t *FakeTransport) SetBPM(bpm float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bpm = bpm
}

func (t *FakeTransport) SetRate(rate float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rate = rate
}

func (t *FakeTransport) Rate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rate
}

// FakeBackend implements Backend for tests. It starts suspended like a real
// autoplay-gated context; Resume normally brings it up unless StayDown is
// set, which models a backend that refuses to run without user interaction.
type FakeBackend struct {
	mu        sync.Mutex
	state     ContextState
	StayDown  bool
	ResumeErr error
	StartErr  error
	VoiceErr  error
	// TimelinePanic makes NewTimeline panic, modeling a scheduling fault
	// inside the backend.
	TimelinePanic bool
	clock     *FakeClock
	epoch     time.Time
	transport *FakeTransport
	Voices    []*FakeVoice
	Timelines []*FakeTimeline
}

func NewFakeBackend(clock *FakeClock) *FakeBackend {
	return &FakeBackend{
		state:     StateSuspended,
		clock:     clock,
		epoch:     clock.Now(),
		transport: NewFakeTransport(),
	}
}

func (b *FakeBackend) State() ContextState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *FakeBackend) SetState(s ContextState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = s
}

func (b *FakeBackend) Resume() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ResumeErr != nil {
		return b.ResumeErr
	}
	if !b.StayDown && b.state == StateSuspended {
		b.state = StateRunning
	}
	return nil
}

func (b *FakeBackend) StartContext() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.StartErr != nil {
		return b.StartErr
	}
	if !b.StayDown && b.state == StateSuspended {
		b.state = StateRunning
	}
	return nil
}

func (b *FakeBackend) Now() float64 {
	return b.clock.Now().Sub(b.epoch).Seconds()
}

func (b *FakeBackend) CreateVoice(kind VoiceKind) (Voice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.VoiceErr != nil {
		return nil, b.VoiceErr
	}
	v := &FakeVoice{Kind: kind}
	b.Voices = append(b.Voices, v)
	return v, nil
}

func (b *FakeBackend) NewTimeline(events []Event, fire func(when float64, ev Event)) Timeline {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.TimelinePanic {
		panic("timeline construction failed")
	}
	t := &FakeTimeline{Events: events, fire: fire}
	b.Timelines = append(b.Timelines, t)
	return t
}

func (b *FakeBackend) Transport() Transport {
	return b.transport
}

// LastTimeline returns the most recently created timeline, or nil.
func (b *FakeBackend) LastTimeline() *FakeTimeline {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Timelines) == 0 {
		return nil
	}
	return b.Timelines[len(b.Timelines)-1]
}

// LastVoice returns the most recently created voice, or nil.
func (b *FakeBackend) LastVoice() *FakeVoice {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Voices) == 0 {
		return nil
	}
	return b.Voices[len(b.Voices)-1]
}
