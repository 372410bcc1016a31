package engine

import (
	"math"

	"github.com/CodingFreeze/Harmonize/core/mapping"
	"github.com/CodingFreeze/Harmonize/core/model"
)

const (
	// MaxTotalDuration caps any composition at two minutes of playback.
	MaxTotalDuration = 120.0
	// DefaultTotalDuration is reported while the composition is empty.
	DefaultTotalDuration = 120.0

	minTailSeconds = 5.0
	tailPadSeconds = 2.0
)

// EstimateDuration derives the composition length in seconds: the real-time
// span of all point timestamps plus a tail of at least minTailSeconds, where
// the tail grows to let the longest final note (at the given tempo) ring out.
// Empty compositions report the default; everything is capped at two minutes.
func EstimateDuration(strokes []model.Stroke, bpm float64) float64 {
	minTime := math.Inf(1)
	maxTime := math.Inf(-1)
	longestNote := 0.0
	sawPoint := false

	for _, s := range strokes {
		if len(s.Points) == 0 {
			continue
		}
		sawPoint = true
		for _, p := range s.Points {
			if p.Time < minTime {
				minTime = p.Time
			}
			if p.Time > maxTime {
				maxTime = p.Time
			}
		}
		d := mapping.SpeedToDuration(s.Last().Speed).Seconds(bpm)
		if d > longestNote {
			longestNote = d
		}
	}
	if !sawPoint {
		return DefaultTotalDuration
	}

	span := (maxTime - minTime) / 1000.0
	total := span + math.Max(minTailSeconds, longestNote+tailPadSeconds)
	return math.Min(total, MaxTotalDuration)
}
