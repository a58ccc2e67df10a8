package guest

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// =============================================================================
// Avatar Presentation
// =============================================================================

// Palette is the ordered list of avatar style tokens. Only its order and
// length matter to ColorBucket; the values are presentation detail.
var Palette = []string{
	"indigo",
	"amber",
	"slate",
	"purple",
	"emerald",
	"rose",
}

// Initials returns up to two upper-cased initials for a name.
// Two or more words give the first letters of the first and last word; a
// single word gives its first two characters.
func Initials(name string) string {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return strings.ToUpper(firstRunes(parts[0], 2))
	default:
		return strings.ToUpper(firstRunes(parts[0], 1) + firstRunes(parts[len(parts)-1], 1))
	}
}

// ColorBucket maps initials to an index into Palette using the first UTF-16
// code unit of the first initial, so initials outside the Basic Multilingual
// Plane hash by their high surrogate. Empty initials map to bucket 0.
func ColorBucket(initials string) int {
	r, size := utf8.DecodeRuneInString(initials)
	if size == 0 {
		return 0
	}
	if hi, _ := utf16.EncodeRune(r); hi != utf8.RuneError {
		r = hi
	}
	return int(r) % len(Palette)
}

// AvatarColor returns the palette token for the given initials.
func AvatarColor(initials string) string {
	return Palette[ColorBucket(initials)]
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
