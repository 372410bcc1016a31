package engine

import (
	"github.com/CodingFreeze/Harmonize/core/mapping"
	"github.com/CodingFreeze/Harmonize/core/synth"
)

// Diagnostic is the result of a non-mutating backend health probe.
type Diagnostic struct {
	Success bool
	Message string
}

// velocity of the calibration note ManualInitialize plays to force the
// backend awake without being heard
const calibrationVelocity = 0.001

// Initialize attempts to bring the audio backend from suspended to running.
// It reports success instead of failing hard; repeated calls are harmless.
func (e *Engine) Initialize() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateDisposed {
		return false
	}
	if err := e.ensureRunningLocked(); err != nil {
		e.logger.Warnf("[ENGINE] Initialize: %v", err)
		return false
	}
	return true
}

// ManualInitialize is Initialize for direct invocation from a user gesture,
// which autoplay policies require. On success it triggers an inaudible
// calibration note so the backend actually starts producing.
func (e *Engine) ManualInitialize() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateDisposed {
		return false
	}
	if err := e.ensureRunningLocked(); err != nil {
		e.logger.Warnf("[ENGINE] ManualInitialize: %v", err)
		return false
	}
	if e.voice != nil {
		e.protect("calibration note", func() {
			e.voice.TriggerAttackRelease("C4", mapping.Sixteenth, e.backend.Now(), calibrationVelocity)
		})
	}
	e.logger.Infof("[ENGINE] Audio backend running after manual initialize")
	return true
}

// TestAudio describes backend health without mutating anything. The audio
// permission UI uses this to decide whether to prompt for interaction.
func (e *Engine) TestAudio() Diagnostic {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateDisposed {
		return Diagnostic{Success: false, Message: "engine is disposed"}
	}
	switch e.backend.State() {
	case synth.StateRunning:
		return Diagnostic{Success: true, Message: "audio backend is running"}
	case synth.StateSuspended:
		return Diagnostic{Success: false, Message: "audio backend is suspended; interact with the app to enable sound"}
	case synth.StateClosed:
		return Diagnostic{Success: false, Message: "audio backend is closed"}
	default:
		return Diagnostic{Success: false, Message: "audio backend state unknown"}
	}
}
