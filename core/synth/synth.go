// Package synth defines the capability surface the playback engine drives:
// voices, a shared transport clock, schedulable timelines and the audio
// context lifecycle. Implementations live elsewhere (internal/audio provides
// a MIDI-message backend); the engine never touches synthesis primitives
// directly.
package synth

import (
	"fmt"
	"strings"

	"github.com/CodingFreeze/Harmonize/core/mapping"
	"github.com/CodingFreeze/Harmonize/core/stylus"
)

// VoiceKind is the closed set of synthesizer voice variants. Selection
// happens once at construction; there is no runtime probing of voice
// capabilities.
type VoiceKind int

const (
	VoicePoly VoiceKind = iota
	VoiceAM
	VoiceFM
	VoiceMembrane
	VoiceMetal
)

func (k VoiceKind) String() string {
	switch k {
	case VoicePoly:
		return "poly"
	case VoiceAM:
		return "am"
	case VoiceFM:
		return "fm"
	case VoiceMembrane:
		return "membrane"
	case VoiceMetal:
		return "metal"
	default:
		return "unknown"
	}
}

// ParseVoiceKind maps an instrument id from the UI to a voice kind.
func ParseVoiceKind(id string) (VoiceKind, error) {
	switch strings.ToLower(id) {
	case "poly", "synth", "":
		return VoicePoly, nil
	case "am", "amsynth":
		return VoiceAM, nil
	case "fm", "fmsynth":
		return VoiceFM, nil
	case "membrane", "membranesynth":
		return VoiceMembrane, nil
	case "metal", "metalsynth":
		return VoiceMetal, nil
	default:
		return VoicePoly, fmt.Errorf("unknown instrument %q", id)
	}
}

// ContextState mirrors the audio context lifecycle: backends start suspended
// until a user gesture brings them to running.
type ContextState int

const (
	StateSuspended ContextState = iota
	StateRunning
	StateClosed
)

func (s ContextState) String() string {
	switch s {
	case StateSuspended:
		return "suspended"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// EffectParams is the parameter table handed to a voice's effects chain:
// the stylus profile plus master volume (0..1). No DSP happens here.
type EffectParams struct {
	stylus.Profile
	Volume float64
}

// Event is a single scheduled note: what to play and when, relative to the
// start of the timeline.
type Event struct {
	Note     string
	Velocity float64
	Duration mapping.NoteDuration
	Offset   float64 // seconds from composition start
	Stylus   string
}

// Voice triggers notes against the shared clock. At-times are in backend
// clock seconds (see Backend.Now).
type Voice interface {
	TriggerAttackRelease(note string, dur mapping.NoteDuration, at float64, velocity float64)
	Connect(params EffectParams)
	Dispose()
}

// Timeline is an armed set of scheduled events. Start(offset) begins firing
// events whose offset is at or past the given position; Stop cancels pending
// fires; Dispose releases the timeline for good. Cancellation of a playback
// session is done by disposing its timeline, never by token.
type Timeline interface {
	Start(offsetSeconds float64)
	Stop()
	Dispose()
}

// Transport is the shared playback clock.
type Transport interface {
	Start()
	Stop()
	Cancel()
	BPM() float64
	SetBPM(bpm float64)
	SetRate(rate float64)
}

// Backend is the full synthesis capability surface.
type Backend interface {
	State() ContextState
	// Resume attempts to move a suspended context to running.
	Resume() error
	// StartContext is the stronger fallback used when Resume alone does not
	// bring the context up.
	StartContext() error
	// Now is the current backend clock time in seconds.
	Now() float64
	CreateVoice(kind VoiceKind) (Voice, error)
	NewTimeline(events []Event, fire func(when float64, ev Event)) Timeline
	Transport() Transport
}
