package mapping

// Scale is an ordered set of pitch names; index 0 maps to the left edge of
// the canvas.
type Scale []string

// PentatonicC spans two octaves of C major pentatonic, ten buckets across
// the canvas width.
var PentatonicC = Scale{"C4", "D4", "E4", "G4", "A4", "C5", "D5", "E5", "G5", "A5"}
