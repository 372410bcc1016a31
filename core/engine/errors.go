package engine

import "errors"

// Error kinds for the failures a caller can meaningfully distinguish.
// Everything else is handled internally: logged, downgraded to a clean
// Stopped/Idle state, and surfaced through the end-of-playback callback.
var (
	// ErrBackendUnavailable means the audio backend could not reach a
	// running state even after resume and start attempts. The fix is user
	// interaction, not a retry loop.
	ErrBackendUnavailable = errors.New("audio backend unavailable, user interaction required")

	// ErrScheduling wraps an unexpected failure while building or starting
	// a playback timeline. The engine is left Stopped when it is returned.
	ErrScheduling = errors.New("playback scheduling failed")

	// ErrDisposed is returned by operations on a disposed engine.
	ErrDisposed = errors.New("engine disposed")
)
