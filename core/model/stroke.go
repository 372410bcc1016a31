package model

import (
	"github.com/google/uuid"
)

// StrokePoint is a single sampled position of a drawing gesture. Time is the
// capture timestamp in monotonic milliseconds. Speed (pixels per millisecond
// between this point and the previous one) is derived lazily; it stays nil
// until playback preparation backfills it.
type StrokePoint struct {
	X        float64
	Y        float64
	Time     float64
	Pressure float64
	Speed    *float64
}

// Stroke is one continuous drawing gesture. Points are ordered by capture
// time. A stroke is immutable once handed to the composition, except for the
// in-place Speed backfill.
type Stroke struct {
	ID     string
	Points []StrokePoint
	Color  string
	Width  float64
	Stylus string
}

func NewStroke(points []StrokePoint, color string, width float64, stylus string) Stroke {
	return Stroke{
		ID:     uuid.NewString(),
		Points: points,
		Color:  color,
		Width:  width,
		Stylus: stylus,
	}
}

func (s Stroke) First() StrokePoint {
	return s.Points[0]
}

func (s Stroke) Last() StrokePoint {
	return s.Points[len(s.Points)-1]
}

// Ordered reports whether point times are non-decreasing.
func (s Stroke) Ordered() bool {
	for i := 1; i < len(s.Points); i++ {
		if s.Points[i].Time < s.Points[i-1].Time {
			return false
		}
	}
	return true
}
