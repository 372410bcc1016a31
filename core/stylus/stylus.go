// Package stylus holds the per-stylus effects parameter profiles and the
// note transform each stylus applies. Profiles are parameter tables only;
// the audio backend decides what to do with them.
package stylus

import "math/rand"

// Profile is the effects-parameter set for one stylus. Times are seconds,
// wet/feedback values are 0..1 mix fractions.
type Profile struct {
	ReverbSeconds float64
	ReverbWet     float64
	DelayTime     float64
	DelayFeedback float64
	DelayWet      float64
}

const (
	Default    = "default"
	Brush      = "brush"
	Pencil     = "pencil"
	Marker     = "marker"
	Watercolor = "watercolor"
)

var profiles = map[string]Profile{
	Default:    {ReverbSeconds: 2.0, ReverbWet: 0.3, DelayTime: 0.25, DelayFeedback: 0.3, DelayWet: 0.2},
	Brush:      {ReverbSeconds: 4.0, ReverbWet: 0.5, DelayTime: 0.3, DelayFeedback: 0.4, DelayWet: 0.3},
	Pencil:     {ReverbSeconds: 0.8, ReverbWet: 0.15, DelayTime: 0.1, DelayFeedback: 0.1, DelayWet: 0.1},
	Marker:     {ReverbSeconds: 2.5, ReverbWet: 0.4, DelayTime: 0.25, DelayFeedback: 0.35, DelayWet: 0.25},
	Watercolor: {ReverbSeconds: 6.0, ReverbWet: 0.6, DelayTime: 0.5, DelayFeedback: 0.5, DelayWet: 0.4},
}

// ProfileFor returns the profile for a stylus id, falling back to the
// default profile for unknown ids.
func ProfileFor(id string) Profile {
	if p, ok := profiles[id]; ok {
		return p
	}
	return profiles[Default]
}

// RandSource yields uniform values in [0,1). Injectable so the pencil
// transform is deterministic under test.
type RandSource func() float64

func DefaultRand() RandSource {
	return rand.Float64
}

// pencil raises the octave on roughly 30% of notes
const pencilRaiseProbability = 0.3

// TransformNote perturbs a pitch name according to the stylus. Currently only
// the pencil does anything: a Bernoulli trial per note, raising the octave
// digit by one on success. All other styli pass the note through.
func TransformNote(note, stylusID string, r RandSource) string {
	if stylusID != Pencil || len(note) < 2 {
		return note
	}
	if r == nil {
		r = DefaultRand()
	}
	if r() >= pencilRaiseProbability {
		return note
	}
	oct := note[len(note)-1]
	if oct < '0' || oct >= '9' {
		return note
	}
	return note[:len(note)-1] + string(oct+1)
}
