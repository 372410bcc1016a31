package model

import (
	game_log "github.com/CodingFreeze/Harmonize/internal/log"
)

// Composition is the ordered collection of recorded strokes. Insertion order
// is drawing order and doubles as the playback tie-breaker. Strokes are never
// removed individually, only cleared wholesale.
type Composition struct {
	strokes []Stroke
	logger  *game_log.Logger
}

func NewComposition(logger *game_log.Logger) *Composition {
	return &Composition{logger: logger}
}

// Add appends a stroke. Empty or time-disordered strokes are accepted with a
// warning rather than rejected; playback treats them as degenerate input.
func (c *Composition) Add(s Stroke) {
	if len(s.Points) == 0 {
		c.logger.Warnf("[COMPOSITION] Appending stroke %s with no points", s.ID)
	} else if !s.Ordered() {
		c.logger.Warnf("[COMPOSITION] Stroke %s has out-of-order point times", s.ID)
	}
	c.strokes = append(c.strokes, s)
	c.logger.Debugf("[COMPOSITION] Added stroke %s (%d points, stylus=%q), total strokes: %d",
		s.ID, len(s.Points), s.Stylus, len(c.strokes))
}

func (c *Composition) Clear() {
	c.logger.Debugf("[COMPOSITION] Cleared %d strokes", len(c.strokes))
	c.strokes = nil
}

// Strokes returns the ordered underlying slice. Callers backfilling speeds
// mutate points through it; that is the one sanctioned mutation.
func (c *Composition) Strokes() []Stroke {
	return c.strokes
}

func (c *Composition) Len() int {
	return len(c.strokes)
}

func (c *Composition) Empty() bool {
	return len(c.strokes) == 0
}
