package mapping

// NoteDuration is a note-length category in conventional subdivision
// notation ("4n" is a quarter note, one beat).
type NoteDuration string

const (
	Sixteenth NoteDuration = "16n"
	Eighth    NoteDuration = "8n"
	Quarter   NoteDuration = "4n"
	Half      NoteDuration = "2n"
)

const DefaultBPM = 120.0

// Seconds converts the category into real time at the given tempo. A quarter
// note is one beat, 60/bpm seconds.
func (d NoteDuration) Seconds(bpm float64) float64 {
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	beat := 60.0 / bpm
	switch d {
	case Sixteenth:
		return beat / 4
	case Eighth:
		return beat / 2
	case Quarter:
		return beat
	case Half:
		return beat * 2
	default:
		return beat / 2
	}
}
