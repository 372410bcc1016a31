package mapping

import (
	"math"

	"github.com/CodingFreeze/Harmonize/core/model"
	"github.com/CodingFreeze/Harmonize/internal/util"
)

const (
	MinVelocity = 0.2
	MaxVelocity = 1.0
)

// XToNote partitions [0, canvasWidth) into len(scale) equal buckets and
// returns the pitch for the bucket containing x. Out-of-range x clamps to
// the first or last bucket.
func XToNote(x, canvasWidth float64, scale Scale) string {
	if len(scale) == 0 {
		scale = PentatonicC
	}
	if canvasWidth <= 0 {
		return scale[0]
	}
	idx := int(math.Floor(x / canvasWidth * float64(len(scale))))
	idx = util.Clamp(idx, 0, len(scale)-1)
	return scale[idx]
}

// YToVelocity maps vertical position to velocity, inverted: the top of the
// canvas is loudest. The mapping is purely linear; y outside [0, canvasHeight]
// produces velocities outside [MinVelocity, MaxVelocity] and callers are
// expected to supply in-range coordinates.
func YToVelocity(y, canvasHeight float64) float64 {
	if canvasHeight <= 0 {
		return MaxVelocity
	}
	return MinVelocity + (MaxVelocity-MinVelocity)*(1-y/canvasHeight)
}

// SpeedToDuration converts motion speed (pixels per millisecond, raw ratio,
// no normalization) into a note-length category. A nil speed means the point
// had no predecessor and gets the middle-of-the-road eighth note.
func SpeedToDuration(speed *float64) NoteDuration {
	if speed == nil {
		return Eighth
	}
	switch s := *speed; {
	case s > 20:
		return Sixteenth
	case s > 10:
		return Eighth
	case s > 5:
		return Quarter
	default:
		return Half
	}
}

// Speed is the Euclidean distance between two points over elapsed capture
// time. Zero elapsed time yields 0 rather than an error.
func Speed(p1, p2 model.StrokePoint) float64 {
	dt := p2.Time - p1.Time
	if dt == 0 {
		return 0
	}
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	return math.Sqrt(dx*dx+dy*dy) / dt
}

// BackfillSpeeds fills in missing Speed values pairwise, in place. The first
// point of a stroke never gets one.
func BackfillSpeeds(s *model.Stroke) {
	for i := 1; i < len(s.Points); i++ {
		if s.Points[i].Speed != nil {
			continue
		}
		v := Speed(s.Points[i-1], s.Points[i])
		s.Points[i].Speed = &v
	}
}
