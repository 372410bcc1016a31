// Package engine turns a composition of drawn strokes into scheduled sound.
// It owns the playback state machine (idle/stopped/playing/disposed), the
// note-event timeline, seek/loop/speed semantics and the auto-stop timer,
// driving everything through the synth capability surface.
package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/CodingFreeze/Harmonize/core/mapping"
	"github.com/CodingFreeze/Harmonize/core/model"
	"github.com/CodingFreeze/Harmonize/core/stylus"
	"github.com/CodingFreeze/Harmonize/core/synth"
	game_log "github.com/CodingFreeze/Harmonize/internal/log"
	"github.com/CodingFreeze/Harmonize/internal/util"
)

type State int

const (
	StateIdle State = iota
	StateStopped
	StatePlaying
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

const (
	MinPlaybackSpeed = 0.1
	MaxPlaybackSpeed = 2.0
)

// Engine is the playback scheduler and transport controller.
type Engine struct {
	mu      sync.Mutex
	backend synth.Backend
	clock   synth.Clock
	logger  *game_log.Logger

	comp    *model.Composition
	scale   mapping.Scale
	rand    stylus.RandSource
	canvasW float64
	canvasH float64

	state      State
	instrument synth.VoiceKind
	voice      synth.Voice
	stylusID   string
	volume     float64
	speed      float64
	loop       bool

	position      float64 // seconds into the composition while not playing
	totalDuration float64
	startedAt     time.Time // wall reference for the current playing span

	timeline synth.Timeline
	autoStop synth.Timer

	onEnded func()
}

// New builds an engine around the given backend. The initial voice is
// created eagerly; reconfiguration later goes through SetInstrument.
func New(backend synth.Backend, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		backend:       backend,
		clock:         o.clock,
		logger:        o.logger,
		comp:          model.NewComposition(o.logger),
		scale:         o.scale,
		rand:          o.rand,
		canvasW:       o.canvasW,
		canvasH:       o.canvasH,
		state:         StateIdle,
		stylusID:      stylus.Default,
		volume:        0.8,
		speed:         1.0,
		totalDuration: DefaultTotalDuration,
	}

	if o.bpm > 0 {
		backend.Transport().SetBPM(o.bpm)
	}

	kind, err := synth.ParseVoiceKind(o.instrument)
	if err != nil {
		e.logger.Warnf("[ENGINE] %v, falling back to poly", err)
	}
	voice, err := backend.CreateVoice(kind)
	if err != nil {
		return nil, fmt.Errorf("create voice: %w", err)
	}
	voice.Connect(e.effectParamsLocked())
	e.voice = voice
	e.instrument = kind
	return e, nil
}

// AddStroke appends a finished stroke to the composition and re-estimates
// the total duration. While playing, the stroke is additionally previewed in
// real time without rebuilding the armed timeline.
func (e *Engine) AddStroke(s model.Stroke) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateDisposed {
		e.logger.Warnf("[ENGINE] AddStroke on disposed engine")
		return
	}
	e.comp.Add(s)
	e.totalDuration = e.estimateLocked()
	if e.state == StatePlaying {
		e.previewStrokeLocked(s)
	}
}

// Play starts (or restarts) playback from the given position in seconds.
// An empty composition is a logged no-op. If the backend cannot be brought
// to a running state the call aborts with ErrBackendUnavailable and the
// engine keeps its previous state.
func (e *Engine) Play(startSeconds float64) error {
	e.mu.Lock()
	err := e.playLocked(startSeconds)
	var cb func()
	if errors.Is(err, ErrScheduling) {
		cb = e.onEnded
	}
	e.mu.Unlock()
	if cb != nil {
		cb()
	}
	return err
}

// Stop halts playback, retaining the current position so a subsequent Play
// resumes where the composition paused. Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// ClearStrokes wipes the composition, cancels anything scheduled and resets
// the transport to idle.
func (e *Engine) ClearStrokes() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateDisposed {
		return
	}
	wasPlaying := e.state == StatePlaying
	e.cancelScheduleLocked()
	if wasPlaying {
		e.protect("transport stop", func() { e.backend.Transport().Stop() })
	}
	e.comp.Clear()
	e.position = 0
	e.totalDuration = DefaultTotalDuration
	e.state = StateIdle
	e.logger.Infof("[ENGINE] Cleared strokes, state=%s", e.state)
}

// Dispose stops playback and releases the owned voice. Terminal and
// idempotent; only reconstruction revives the engine.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateDisposed {
		return
	}
	e.stopLocked()
	if e.voice != nil {
		e.protect("voice dispose", e.voice.Dispose)
		e.voice = nil
	}
	e.state = StateDisposed
	e.logger.Infof("[ENGINE] Disposed")
}

// SetInstrument tears down the current voice and builds a new one of the
// requested kind. Old voice references held elsewhere become invalid.
func (e *Engine) SetInstrument(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateDisposed {
		return
	}
	kind, err := synth.ParseVoiceKind(id)
	if err != nil {
		e.logger.Warnf("[ENGINE] %v, using %s", err, kind)
	}
	if e.voice != nil {
		e.protect("voice dispose", e.voice.Dispose)
		e.voice = nil
	}
	voice, err := e.backend.CreateVoice(kind)
	if err != nil {
		e.logger.Errorf("[ENGINE] Creating %s voice failed: %v", kind, err)
		return
	}
	voice.Connect(e.effectParamsLocked())
	e.voice = voice
	e.instrument = kind
	e.logger.Infof("[ENGINE] Instrument set to %s", kind)
}

// SetStylus switches the active effects profile and note transform.
func (e *Engine) SetStylus(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateDisposed {
		return
	}
	e.stylusID = id
	if e.voice != nil {
		e.voice.Connect(e.effectParamsLocked())
	}
	e.logger.Debugf("[ENGINE] Stylus set to %q", id)
}

// SetVolume takes the UI's 0-100 range.
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateDisposed {
		return
	}
	e.volume = util.Clamp(v, 0, 100) / 100.0
	if e.voice != nil {
		e.voice.Connect(e.effectParamsLocked())
	}
}

// SetPlaybackSpeed adjusts the transport rate, clamped to [0.1, 2.0]. An
// auto-stop timer already armed keeps its original deadline; only the
// nominal transport rate changes mid-playback. Position already accrued is
// folded in at the old speed first, so only the span after the change runs
// at the new rate.
func (e *Engine) SetPlaybackSpeed(speed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateDisposed {
		return
	}
	if e.state == StatePlaying {
		e.position = e.positionLocked()
		e.startedAt = e.clock.Now()
	}
	e.speed = util.Clamp(speed, MinPlaybackSpeed, MaxPlaybackSpeed)
	e.backend.Transport().SetRate(e.speed)
	e.logger.Debugf("[ENGINE] Playback speed %.2fx", e.speed)
}

func (e *Engine) SetLoopPlayback(loop bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loop = loop
}

// SetPlaybackPosition seeks. While playing this is an atomic stop+restart
// from the new position; a restart failure reports end-of-playback and
// leaves the engine cleanly stopped.
func (e *Engine) SetPlaybackPosition(seconds float64) {
	e.mu.Lock()
	if e.state == StateDisposed {
		e.mu.Unlock()
		return
	}
	seconds = util.Clamp(seconds, 0, e.totalDuration)
	var cb func()
	if e.state == StatePlaying {
		e.stopLocked()
		if err := e.playLocked(seconds); err != nil {
			e.logger.Errorf("[ENGINE] Restart after seek failed: %v", err)
			e.state = StateStopped
			e.position = seconds
			cb = e.onEnded
		}
	} else {
		e.position = seconds
	}
	e.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// PlaybackPosition reports seconds elapsed into the composition.
func (e *Engine) PlaybackPosition() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positionLocked()
}

// Progress reports playback position as a 0..1 fraction.
func (e *Engine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.totalDuration <= 0 {
		return 0
	}
	return util.Clamp(e.positionLocked()/e.totalDuration, 0, 1)
}

func (e *Engine) TotalDuration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalDuration
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// OnPlaybackEnded registers the callback fired when playback runs out
// naturally (or a restart fails). It is never fired by a plain Stop.
func (e *Engine) OnPlaybackEnded(cb func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnded = cb
}

// --- internals ---

func (e *Engine) positionLocked() float64 {
	if e.state != StatePlaying {
		return e.position
	}
	elapsed := e.clock.Now().Sub(e.startedAt).Seconds()
	return math.Min(e.position+elapsed*e.speed, e.totalDuration)
}

func (e *Engine) playLocked(startSeconds float64) error {
	if e.state == StateDisposed {
		return ErrDisposed
	}
	if e.comp.Empty() {
		e.logger.Warnf("[ENGINE] Play requested with no strokes recorded")
		return nil
	}
	if err := e.ensureRunningLocked(); err != nil {
		return err
	}

	e.cancelScheduleLocked()

	events := e.buildEventsLocked()
	e.totalDuration = e.estimateLocked()
	startSeconds = util.Clamp(startSeconds, 0, e.totalDuration)

	var failure error
	func() {
		defer func() {
			if r := recover(); r != nil {
				failure = fmt.Errorf("%w: %v", ErrScheduling, r)
			}
		}()
		tl := e.backend.NewTimeline(events, e.fireEvent)
		e.timeline = tl
		remaining := (e.totalDuration - startSeconds) / e.speed
		e.autoStop = e.clock.AfterFunc(secondsToDuration(remaining), e.handleAutoStop)
		tl.Start(startSeconds)
		e.backend.Transport().Start()
	}()
	if failure != nil {
		e.logger.Errorf("[ENGINE] %v", failure)
		e.cancelScheduleLocked()
		e.protect("transport stop", func() { e.backend.Transport().Stop() })
		e.state = StateStopped
		return failure
	}

	e.state = StatePlaying
	e.startedAt = e.clock.Now()
	e.position = startSeconds
	e.logger.Infof("[ENGINE] Playing %d events from %.2fs of %.2fs at %.2fx",
		len(events), startSeconds, e.totalDuration, e.speed)
	return nil
}

func (e *Engine) stopLocked() {
	if e.state == StateDisposed {
		return
	}
	if e.state == StatePlaying {
		elapsed := e.clock.Now().Sub(e.startedAt).Seconds()
		e.position = math.Min(e.position+elapsed*e.speed, e.totalDuration)
		e.state = StateStopped
		e.logger.Debugf("[ENGINE] Stopped at %.2fs", e.position)
	}
	e.cancelScheduleLocked()
	e.protect("transport stop", func() { e.backend.Transport().Stop() })
}

// handleAutoStop fires when the armed playback window elapses: loop back to
// the start, or finish and notify.
func (e *Engine) handleAutoStop() {
	e.mu.Lock()
	if e.state != StatePlaying {
		e.mu.Unlock()
		return
	}
	loop := e.loop
	e.stopLocked()
	e.position = 0
	var cb func()
	if loop {
		if err := e.playLocked(0); err != nil {
			e.logger.Errorf("[ENGINE] Loop restart failed: %v", err)
			e.state = StateStopped
			cb = e.onEnded
		}
	} else {
		e.logger.Infof("[ENGINE] Playback finished")
		cb = e.onEnded
	}
	e.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (e *Engine) cancelScheduleLocked() {
	if e.autoStop != nil {
		e.autoStop.Stop()
		e.autoStop = nil
	}
	if e.timeline != nil {
		tl := e.timeline
		e.timeline = nil
		e.protect("timeline dispose", func() {
			tl.Stop()
			tl.Dispose()
		})
	}
}

func (e *Engine) ensureRunningLocked() error {
	if e.backend.State() == synth.StateRunning {
		return nil
	}
	if e.backend.State() == synth.StateClosed {
		return fmt.Errorf("%w: context closed", ErrBackendUnavailable)
	}
	if err := e.backend.Resume(); err != nil {
		e.logger.Warnf("[ENGINE] Resume failed: %v", err)
	}
	if e.backend.State() == synth.StateRunning {
		return nil
	}
	if err := e.backend.StartContext(); err != nil {
		e.logger.Warnf("[ENGINE] Context start failed: %v", err)
	}
	if e.backend.State() == synth.StateRunning {
		return nil
	}
	return ErrBackendUnavailable
}

// buildEventsLocked flattens the composition into a time-ordered event list.
// Missing speeds are backfilled in place first; ties in offset keep stroke
// and point traversal order.
func (e *Engine) buildEventsLocked() []synth.Event {
	strokes := e.comp.Strokes()
	minTime := math.Inf(1)
	for i := range strokes {
		mapping.BackfillSpeeds(&strokes[i])
		for _, p := range strokes[i].Points {
			if p.Time < minTime {
				minTime = p.Time
			}
		}
	}

	var events []synth.Event
	for i := range strokes {
		st := strokes[i]
		sid := e.stylusForLocked(st)
		for _, p := range st.Points {
			note := mapping.XToNote(p.X, e.canvasW, e.scale)
			note = stylus.TransformNote(note, sid, e.rand)
			events = append(events, synth.Event{
				Note:     note,
				Velocity: mapping.YToVelocity(p.Y, e.canvasH),
				Duration: mapping.SpeedToDuration(p.Speed),
				Offset:   (p.Time - minTime) / 1000.0,
				Stylus:   sid,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Offset < events[j].Offset
	})
	return events
}

// previewStrokeLocked plays a freshly drawn stroke while the main timeline
// keeps running. Only the first point, the last point and every third
// intermediate point fire. Preview triggers may interleave or double with
// timeline events near stroke boundaries; that is accepted behavior.
func (e *Engine) previewStrokeLocked(s model.Stroke) {
	if len(s.Points) == 0 || e.voice == nil {
		return
	}
	e.protect("stroke preview", func() {
		mapping.BackfillSpeeds(&s)
		first := s.First()
		base := e.backend.Now()
		sid := e.stylusForLocked(s)
		for i, p := range s.Points {
			if i != 0 && i != len(s.Points)-1 && i%3 != 0 {
				continue
			}
			note := mapping.XToNote(p.X, e.canvasW, e.scale)
			note = stylus.TransformNote(note, sid, e.rand)
			at := base + (p.Time-first.Time)/1000.0
			e.voice.TriggerAttackRelease(note, mapping.SpeedToDuration(p.Speed), at, mapping.YToVelocity(p.Y, e.canvasH))
		}
	})
}

func (e *Engine) estimateLocked() float64 {
	strokes := e.comp.Strokes()
	for i := range strokes {
		mapping.BackfillSpeeds(&strokes[i])
	}
	return EstimateDuration(strokes, e.backend.Transport().BPM())
}

func (e *Engine) stylusForLocked(s model.Stroke) string {
	if s.Stylus != "" {
		return s.Stylus
	}
	return e.stylusID
}

func (e *Engine) effectParamsLocked() synth.EffectParams {
	return synth.EffectParams{
		Profile: stylus.ProfileFor(e.stylusID),
		Volume:  e.volume,
	}
}

// fireEvent is the timeline callback. Trigger failures must never unwind
// into the backend's scheduling internals.
func (e *Engine) fireEvent(when float64, ev synth.Event) {
	e.mu.Lock()
	voice := e.voice
	e.mu.Unlock()
	if voice == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("[ENGINE] Note trigger failed: %v", r)
		}
	}()
	voice.TriggerAttackRelease(ev.Note, ev.Duration, when, ev.Velocity)
}

// protect runs fn, logging instead of propagating any panic. Used around
// backend calls whose failure must not corrupt engine state.
func (e *Engine) protect(op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("[ENGINE] %s failed: %v", op, r)
		}
	}()
	fn()
}

func secondsToDuration(s float64) time.Duration {
	if s < 0 {
		s = 0
	}
	return time.Duration(s * float64(time.Second))
}
