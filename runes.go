// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package brackets

const (
	// Escape makes the following control character literal text.
	Escape rune = '\\'

	// OpenBracket starts a sequence.
	OpenBracket rune = '['

	// CloseBracket ends a sequence.
	CloseBracket rune = ']'

	// Bar ends a text run explicitly. It is consumed but never part of the content.
	Bar rune = '|'

	// LF is 0x0A or '\n'. It is the only rune that starts a new line.
	// CR is an ordinary rune, so the CR of a CR+LF pair takes up a column.
	LF rune = rune(10)

	// EOF is a sentinel for end of input
	EOF rune = rune(-1)
)

var (
	controls = [128]bool{
		Escape:       true,
		OpenBracket:  true,
		CloseBracket: true,
		Bar:          true,
	}
)

// IsControl reports whether ch is one of the four control characters.
// Only control characters may follow an Escape.
func IsControl(ch rune) bool {
	if 0 <= ch && ch < 128 {
		return controls[ch]
	}
	return false
}
