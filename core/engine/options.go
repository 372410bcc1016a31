package engine

import (
	"os"

	"github.com/CodingFreeze/Harmonize/core/mapping"
	"github.com/CodingFreeze/Harmonize/core/stylus"
	"github.com/CodingFreeze/Harmonize/core/synth"
	game_log "github.com/CodingFreeze/Harmonize/internal/log"
)

const (
	defaultCanvasWidth  = 800.0
	defaultCanvasHeight = 600.0
)

type options struct {
	logger     *game_log.Logger
	clock      synth.Clock
	scale      mapping.Scale
	rand       stylus.RandSource
	instrument string
	canvasW    float64
	canvasH    float64
	bpm        float64
}

// Option customizes engine construction.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:     game_log.New(os.Stderr, game_log.LevelInfo),
		clock:      synth.SystemClock{},
		scale:      mapping.PentatonicC,
		rand:       stylus.DefaultRand(),
		instrument: "poly",
		canvasW:    defaultCanvasWidth,
		canvasH:    defaultCanvasHeight,
	}
}

func WithLogger(l *game_log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock substitutes the timer source, letting tests drive auto-stop
// deterministically.
func WithClock(c synth.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithScale(s mapping.Scale) Option {
	return func(o *options) { o.scale = s }
}

// WithRand injects the random source used by stylus note transforms.
func WithRand(r stylus.RandSource) Option {
	return func(o *options) { o.rand = r }
}

func WithInstrument(id string) Option {
	return func(o *options) { o.instrument = id }
}

// WithBPM sets the transport tempo at construction. Non-positive values keep
// the backend's default.
func WithBPM(bpm float64) Option {
	return func(o *options) { o.bpm = bpm }
}

// WithCanvasSize sets the coordinate space strokes are mapped against.
func WithCanvasSize(w, h float64) Option {
	return func(o *options) {
		if w > 0 {
			o.canvasW = w
		}
		if h > 0 {
			o.canvasH = h
		}
	}
}
