package audio

import (
	"sync"
	"time"

	"github.com/CodingFreeze/Harmonize/core/mapping"
	"github.com/CodingFreeze/Harmonize/core/synth"
	"github.com/CodingFreeze/Harmonize/internal/util"
	"gitlab.com/gomidi/midi/v2"
)

const ccAllNotesOff = 123

type voice struct {
	backend *Backend
	kind    synth.VoiceKind
	channel uint8

	mu       sync.Mutex
	params   synth.EffectParams
	timers   []synth.Timer
	disposed bool
}

// TriggerAttackRelease schedules a note-on at the given backend time and the
// matching note-off after the category's real-time length at the transport
// tempo. Past at-times play immediately.
func (v *voice) TriggerAttackRelease(note string, dur mapping.NoteDuration, at float64, velocity float64) {
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		return
	}
	params := v.params
	v.mu.Unlock()

	key, err := mapping.MidiKey(note)
	if err != nil {
		v.backend.logger.Warnf("[AUDIO] Dropping unplayable note: %v", err)
		return
	}
	scale := params.Volume
	if scale == 0 {
		scale = 1 // unconnected voices play at full volume
	}
	vel := uint8(util.Clamp(velocity*scale, 0, 1) * 127)
	if vel == 0 {
		vel = 1 // keep the calibration note a real note-on
	}

	delay := at - v.backend.Now()
	if delay < 0 {
		delay = 0
	}
	length := dur.Seconds(v.backend.transport.BPM())

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return
	}
	v.timers = append(v.timers, v.backend.clock.AfterFunc(secondsToDuration(delay), func() {
		if err := v.backend.sender.Send(midi.NoteOn(v.channel, key, vel)); err != nil {
			v.backend.logger.Errorf("[AUDIO] Note on failed: %v", err)
			return
		}
		v.mu.Lock()
		if v.disposed {
			v.mu.Unlock()
			return
		}
		v.timers = append(v.timers, v.backend.clock.AfterFunc(secondsToDuration(length), func() {
			if err := v.backend.sender.Send(midi.NoteOff(v.channel, key)); err != nil {
				v.backend.logger.Errorf("[AUDIO] Note off failed: %v", err)
			}
		}))
		v.mu.Unlock()
	}))
}

// Connect installs the effects-parameter table. MIDI carries no reverb or
// delay of its own, so the profile is only retained and logged; velocity is
// scaled by the master volume.
func (v *voice) Connect(params synth.EffectParams) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params = params
	v.backend.logger.Debugf("[AUDIO] Voice %s effects: reverb %.1fs/%.2f delay %.2fs fb %.2f wet %.2f vol %.2f",
		v.kind, params.ReverbSeconds, params.ReverbWet, params.DelayTime, params.DelayFeedback, params.DelayWet, params.Volume)
}

func (v *voice) Dispose() {
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		return
	}
	v.disposed = true
	timers := v.timers
	v.timers = nil
	v.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
	if err := v.backend.sender.Send(midi.ControlChange(v.channel, ccAllNotesOff, 0)); err != nil {
		v.backend.logger.Warnf("[AUDIO] All-notes-off failed: %v", err)
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
