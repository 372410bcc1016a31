package mapping

import (
	"testing"

	"github.com/CodingFreeze/Harmonize/core/model"
)

func TestXToNoteEndpoints(t *testing.T) {
	w := 800.0
	if got := XToNote(0, w, PentatonicC); got != PentatonicC[0] {
		t.Fatalf("expected first bucket at x=0, got %s", got)
	}
	if got := XToNote(w-0.001, w, PentatonicC); got != PentatonicC[len(PentatonicC)-1] {
		t.Fatalf("expected last bucket just inside right edge, got %s", got)
	}
}

func TestXToNoteClampsOutOfRange(t *testing.T) {
	w := 800.0
	if got := XToNote(-50, w, PentatonicC); got != PentatonicC[0] {
		t.Fatalf("negative x should clamp to first bucket, got %s", got)
	}
	if got := XToNote(w+100, w, PentatonicC); got != PentatonicC[len(PentatonicC)-1] {
		t.Fatalf("x past width should clamp to last bucket, got %s", got)
	}
}

func TestXToNoteMonotonic(t *testing.T) {
	w := 800.0
	last := -1
	for x := 0.0; x < w; x += 7.3 {
		note := XToNote(x, w, PentatonicC)
		idx := -1
		for i, n := range PentatonicC {
			if n == note {
				idx = i
				break
			}
		}
		if idx < last {
			t.Fatalf("bucket index decreased at x=%.1f: %d < %d", x, idx, last)
		}
		last = idx
	}
}

func TestYToVelocityInvertedLinear(t *testing.T) {
	h := 600.0
	if got := YToVelocity(0, h); got != 1.0 {
		t.Fatalf("top of canvas should be max velocity, got %f", got)
	}
	if got := YToVelocity(h, h); got != 0.2 {
		t.Fatalf("bottom of canvas should be min velocity, got %f", got)
	}
	mid := YToVelocity(h/2, h)
	if mid < 0.599 || mid > 0.601 {
		t.Fatalf("expected 0.6 at midpoint, got %f", mid)
	}
}

func TestSpeedToDurationLadder(t *testing.T) {
	cases := []struct {
		speed *float64
		want  NoteDuration
	}{
		{f(25), Sixteenth},
		{f(15), Eighth},
		{f(7), Quarter},
		{f(1), Half},
		{nil, Eighth},
	}
	for _, c := range cases {
		if got := SpeedToDuration(c.speed); got != c.want {
			t.Fatalf("SpeedToDuration(%v) = %s, want %s", c.speed, got, c.want)
		}
	}
}

func f(v float64) *float64 { return &v }

func TestSpeedEuclidean(t *testing.T) {
	p1 := model.StrokePoint{X: 0, Y: 0, Time: 0}
	p2 := model.StrokePoint{X: 3, Y: 4, Time: 5}
	if got := Speed(p1, p2); got != 1.0 {
		t.Fatalf("expected 5px over 5ms = 1, got %f", got)
	}
}

func TestSpeedZeroElapsedTime(t *testing.T) {
	p := model.StrokePoint{X: 0, Y: 0, Time: 100}
	q := model.StrokePoint{X: 10, Y: 0, Time: 100}
	if got := Speed(p, q); got != 0 {
		t.Fatalf("zero elapsed time must yield 0, got %f", got)
	}
}

func TestBackfillSpeeds(t *testing.T) {
	existing := 99.0
	s := model.Stroke{Points: []model.StrokePoint{
		{X: 0, Y: 0, Time: 0},
		{X: 10, Y: 0, Time: 10},
		{X: 20, Y: 0, Time: 20, Speed: &existing},
	}}
	BackfillSpeeds(&s)
	if s.Points[0].Speed != nil {
		t.Fatalf("first point must keep nil speed")
	}
	if s.Points[1].Speed == nil || *s.Points[1].Speed != 1.0 {
		t.Fatalf("expected backfilled speed 1, got %v", s.Points[1].Speed)
	}
	if *s.Points[2].Speed != existing {
		t.Fatalf("existing speed must be preserved, got %f", *s.Points[2].Speed)
	}
}

func TestNoteDurationSeconds(t *testing.T) {
	if got := Quarter.Seconds(120); got != 0.5 {
		t.Fatalf("quarter at 120 BPM should be 0.5s, got %f", got)
	}
	if got := Half.Seconds(120); got != 1.0 {
		t.Fatalf("half at 120 BPM should be 1s, got %f", got)
	}
	if got := Sixteenth.Seconds(60); got != 0.25 {
		t.Fatalf("sixteenth at 60 BPM should be 0.25s, got %f", got)
	}
	if got := Eighth.Seconds(0); got != Eighth.Seconds(DefaultBPM) {
		t.Fatalf("non-positive BPM should fall back to the default")
	}
}

func TestMidiKey(t *testing.T) {
	cases := []struct {
		note string
		key  uint8
	}{
		{"C4", 60},
		{"A4", 69},
		{"F#3", 54},
		{"Bb2", 46},
		{"C-1", 0},
		{"G9", 127},
	}
	for _, c := range cases {
		got, err := MidiKey(c.note)
		if err != nil {
			t.Fatalf("MidiKey(%q): %v", c.note, err)
		}
		if got != c.key {
			t.Fatalf("MidiKey(%q) = %d, want %d", c.note, got, c.key)
		}
	}
	for _, bad := range []string{"", "H4", "C", "C#x", "A12"} {
		if _, err := MidiKey(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
