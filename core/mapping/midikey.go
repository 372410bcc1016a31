package mapping

import (
	"fmt"
	"strconv"
)

// semitone offset of each pitch letter within an octave
var letterSemitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// MidiKey parses a pitch name such as "C4", "F#3" or "Bb2" into its MIDI key
// number (C4 = 60).
func MidiKey(note string) (uint8, error) {
	if len(note) < 2 {
		return 0, fmt.Errorf("invalid note %q", note)
	}
	semi, ok := letterSemitones[note[0]]
	if !ok {
		return 0, fmt.Errorf("invalid note letter in %q", note)
	}
	rest := note[1:]
	switch rest[0] {
	case '#':
		semi++
		rest = rest[1:]
	case 'b':
		semi--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in %q: %w", note, err)
	}
	key := (octave+1)*12 + semi
	if key < 0 || key > 127 {
		return 0, fmt.Errorf("note %q out of MIDI range", note)
	}
	return uint8(key), nil
}
