// Package audio implements the synth capability surface on top of MIDI
// messages. Voices become program-change plus timed note-on/note-off pairs
// pushed through a Sender; no sample synthesis happens here.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/CodingFreeze/Harmonize/core/synth"
	game_log "github.com/CodingFreeze/Harmonize/internal/log"
	"gitlab.com/gomidi/midi/v2"
)

// General MIDI programs for each voice kind.
var voicePrograms = map[synth.VoiceKind]uint8{
	synth.VoicePoly:     0,   // acoustic grand
	synth.VoiceAM:       4,   // electric piano 1
	synth.VoiceFM:       5,   // electric piano 2
	synth.VoiceMembrane: 115, // woodblock
	synth.VoiceMetal:    112, // tinkle bell
}

// Backend is a MIDI-message implementation of synth.Backend. It mimics the
// autoplay-gated lifecycle of a browser audio context: constructed suspended,
// brought to running by Resume or StartContext.
type Backend struct {
	mu        sync.Mutex
	sender    Sender
	clock     synth.Clock
	logger    *game_log.Logger
	state     synth.ContextState
	epoch     time.Time
	transport *transport
	nextChan  uint8
}

func New(sender Sender, clock synth.Clock, logger *game_log.Logger) *Backend {
	return &Backend{
		sender:    sender,
		clock:     clock,
		logger:    logger,
		state:     synth.StateSuspended,
		epoch:     clock.Now(),
		transport: newTransport(),
	}
}

func (b *Backend) State() synth.ContextState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Backend) Resume() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == synth.StateClosed {
		return fmt.Errorf("audio context is closed")
	}
	b.state = synth.StateRunning
	return nil
}

func (b *Backend) StartContext() error {
	return b.Resume()
}

// Close moves the context to its terminal state. Further Resume calls fail.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = synth.StateClosed
}

// Now is seconds since the backend was constructed.
func (b *Backend) Now() float64 {
	return b.clock.Now().Sub(b.epoch).Seconds()
}

func (b *Backend) CreateVoice(kind synth.VoiceKind) (synth.Voice, error) {
	b.mu.Lock()
	channel := b.nextChan
	b.nextChan = (b.nextChan + 1) % 16
	b.mu.Unlock()

	program, ok := voicePrograms[kind]
	if !ok {
		return nil, fmt.Errorf("no program mapping for voice kind %s", kind)
	}
	if err := b.sender.Send(midi.ProgramChange(channel, program)); err != nil {
		return nil, fmt.Errorf("program change for %s: %w", kind, err)
	}
	b.logger.Debugf("[AUDIO] Voice %s on channel %d (program %d)", kind, channel, program)
	return &voice{backend: b, kind: kind, channel: channel}, nil
}

func (b *Backend) NewTimeline(events []synth.Event, fire func(when float64, ev synth.Event)) synth.Timeline {
	return &timeline{backend: b, events: events, fire: fire}
}

func (b *Backend) Transport() synth.Transport {
	return b.transport
}
