package stylus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileForKnownStyli(t *testing.T) {
	assert := assert.New(t)

	brush := ProfileFor(Brush)
	pencil := ProfileFor(Pencil)
	watercolor := ProfileFor(Watercolor)

	assert.Greater(brush.ReverbSeconds, ProfileFor(Default).ReverbSeconds, "brush carries a longer reverb than default")
	assert.Less(pencil.ReverbSeconds, 1.0, "pencil is short and sharp")
	assert.Greater(watercolor.ReverbSeconds, brush.ReverbSeconds, "watercolor has the longest tail")
}

func TestProfileForUnknownFallsBack(t *testing.T) {
	assert.Equal(t, ProfileFor(Default), ProfileFor("crayon"))
	assert.Equal(t, ProfileFor(Default), ProfileFor(""))
}

func TestTransformNotePencilRaisesOctave(t *testing.T) {
	always := RandSource(func() float64 { return 0.0 })
	never := RandSource(func() float64 { return 0.99 })

	assert.Equal(t, "C5", TransformNote("C4", Pencil, always))
	assert.Equal(t, "F#4", TransformNote("F#3", Pencil, always))
	assert.Equal(t, "C4", TransformNote("C4", Pencil, never))
}

func TestTransformNoteOtherStyliPassThrough(t *testing.T) {
	always := RandSource(func() float64 { return 0.0 })
	for _, id := range []string{Default, Brush, Marker, Watercolor, "unknown"} {
		assert.Equal(t, "C4", TransformNote("C4", id, always), "stylus %s must not transform", id)
	}
}

func TestTransformNoteTopOctaveUnchanged(t *testing.T) {
	always := RandSource(func() float64 { return 0.0 })
	assert.Equal(t, "C9", TransformNote("C9", Pencil, always))
}

func TestTransformNoteBernoulliRate(t *testing.T) {
	// Deterministic generator sweeping [0,1): 30% of trials land below the
	// raise probability.
	i := 0
	sweep := RandSource(func() float64 {
		v := float64(i%100) / 100.0
		i++
		return v
	})
	raised := 0
	for n := 0; n < 100; n++ {
		if TransformNote("C4", Pencil, sweep) == "C5" {
			raised++
		}
	}
	assert.Equal(t, 30, raised)
}
