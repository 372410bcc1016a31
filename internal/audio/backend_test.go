package audio

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"github.com/CodingFreeze/Harmonize/core/mapping"
	"github.com/CodingFreeze/Harmonize/core/synth"
	game_log "github.com/CodingFreeze/Harmonize/internal/log"
)

func newTestBackend(t *testing.T) (*Backend, *Collector, *synth.FakeClock) {
	t.Helper()
	clock := synth.NewFakeClock()
	collector := &Collector{}
	logger := game_log.New(io.Discard, game_log.LevelNone)
	return New(collector, clock, logger), collector, clock
}

func TestBackendLifecycle(t *testing.T) {
	b, _, _ := newTestBackend(t)
	assert.Equal(t, synth.StateSuspended, b.State())

	require.NoError(t, b.Resume())
	assert.Equal(t, synth.StateRunning, b.State())

	b.Close()
	assert.Equal(t, synth.StateClosed, b.State())
	assert.Error(t, b.Resume(), "a closed context cannot be resumed")
}

func TestCreateVoiceSendsProgramChange(t *testing.T) {
	b, collector, _ := newTestBackend(t)
	_, err := b.CreateVoice(synth.VoiceFM)
	require.NoError(t, err)

	msgs := collector.Messages()
	require.Len(t, msgs, 1)
	var channel, program uint8
	require.True(t, msgs[0].GetProgramChange(&channel, &program))
	assert.Equal(t, uint8(5), program)
}

func TestTriggerAttackReleaseSendsNoteOnThenOff(t *testing.T) {
	b, collector, clock := newTestBackend(t)
	v, err := b.CreateVoice(synth.VoicePoly)
	require.NoError(t, err)

	v.TriggerAttackRelease("C4", mapping.Quarter, b.Now(), 0.8)
	clock.Advance(0) // due immediately

	msgs := collector.Messages()
	require.Len(t, msgs, 2, "program change + note on")
	var ch, key, vel uint8
	require.True(t, msgs[1].GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(60), key)
	assert.Equal(t, uint8(101), vel) // 0.8 * 127, truncated

	clock.Advance(500 * time.Millisecond) // quarter note at 120 BPM
	msgs = collector.Messages()
	require.Len(t, msgs, 3)
	assert.True(t, msgs[2].GetNoteOff(&ch, &key, &vel))
	assert.Equal(t, uint8(60), key)
}

func TestTriggerDropsUnparseableNote(t *testing.T) {
	b, collector, clock := newTestBackend(t)
	v, err := b.CreateVoice(synth.VoicePoly)
	require.NoError(t, err)

	v.TriggerAttackRelease("nope", mapping.Quarter, 0, 0.8)
	clock.Advance(time.Second)
	assert.Equal(t, 1, collector.Len(), "only the program change should have gone out")
}

func TestVolumeScalesVelocity(t *testing.T) {
	b, collector, clock := newTestBackend(t)
	v, err := b.CreateVoice(synth.VoicePoly)
	require.NoError(t, err)
	v.Connect(synth.EffectParams{Volume: 0.5})

	v.TriggerAttackRelease("C4", mapping.Quarter, 0, 1.0)
	clock.Advance(0)

	var ch, key, vel uint8
	msgs := collector.Messages()
	require.True(t, msgs[len(msgs)-1].GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(63), vel) // 0.5 * 127
}

func TestVoiceDisposeCancelsAndSilences(t *testing.T) {
	b, collector, clock := newTestBackend(t)
	v, err := b.CreateVoice(synth.VoicePoly)
	require.NoError(t, err)

	v.TriggerAttackRelease("C4", mapping.Quarter, b.Now()+10, 0.8)
	v.Dispose()
	clock.Advance(time.Minute)

	var ch, cc, val uint8
	msgs := collector.Messages()
	require.Len(t, msgs, 2, "program change + all-notes-off, pending note canceled")
	require.True(t, msgs[1].GetControlChange(&ch, &cc, &val))
	assert.Equal(t, uint8(ccAllNotesOff), cc)

	v.TriggerAttackRelease("C4", mapping.Quarter, 0, 0.8)
	clock.Advance(time.Second)
	assert.Equal(t, 2, collector.Len(), "disposed voices stay silent")
}

func TestTimelineFiresInOrderAndHonorsOffset(t *testing.T) {
	b, _, clock := newTestBackend(t)
	events := []synth.Event{
		{Note: "C4", Offset: 0},
		{Note: "D4", Offset: 1},
		{Note: "E4", Offset: 2},
	}
	var fired []string
	tl := b.NewTimeline(events, func(when float64, ev synth.Event) {
		fired = append(fired, ev.Note)
	})

	tl.Start(1) // skip everything before one second in
	clock.Advance(5 * time.Second)
	assert.Equal(t, []string{"D4", "E4"}, fired)
}

func TestTimelineRateScalesSpacing(t *testing.T) {
	b, _, clock := newTestBackend(t)
	b.Transport().SetRate(2.0)
	events := []synth.Event{
		{Note: "C4", Offset: 0},
		{Note: "D4", Offset: 2},
	}
	var fired []string
	tl := b.NewTimeline(events, func(when float64, ev synth.Event) {
		fired = append(fired, ev.Note)
	})
	tl.Start(0)

	clock.Advance(1100 * time.Millisecond) // 2s of material in 1s at 2x
	assert.Equal(t, []string{"C4", "D4"}, fired)
}

func TestTimelineStopCancelsPendingEvents(t *testing.T) {
	b, _, clock := newTestBackend(t)
	events := []synth.Event{{Note: "C4", Offset: 5}}
	fired := 0
	tl := b.NewTimeline(events, func(when float64, ev synth.Event) { fired++ })
	tl.Start(0)
	tl.Stop()
	clock.Advance(time.Minute)
	assert.Equal(t, 0, fired)
}

func TestSenderFunc(t *testing.T) {
	var got midi.Message
	s := SenderFunc(func(msg midi.Message) error {
		got = msg
		return nil
	})
	require.NoError(t, s.Send(midi.NoteOn(0, 60, 100)))
	assert.NotNil(t, got)
}
