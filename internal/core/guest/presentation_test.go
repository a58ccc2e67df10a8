package guest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitials(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"two words", "Jane Doe", "JD"},
		{"single word", "Madonna", "MA"},
		{"three words uses last", "Mary Ann Smith", "MS"},
		{"short single word", "J", "J"},
		{"extra whitespace", "  jane   doe  ", "JD"},
		{"empty", "", ""},
		{"unicode", "Ørjan Åsen", "ØÅ"},
		{"couple", "Mr. & Mrs. Smith", "MS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Initials(tt.input))
		})
	}
}

func TestColorBucket_ModuloOfFirstInitial(t *testing.T) {
	assert.Equal(t, int('J')%len(Palette), ColorBucket("JD"))
	assert.Equal(t, int('M')%len(Palette), ColorBucket("MA"))
	assert.Equal(t, 0, ColorBucket(""))
}

func TestColorBucket_UsesFirstUTF16CodeUnit(t *testing.T) {
	assert.Equal(t, 0xD83D%len(Palette), ColorBucket("😀"))
	assert.Equal(t, 1, ColorBucket("😀"))
	assert.Equal(t, int('Z')%len(Palette), ColorBucket("ZÖ"))
	assert.Equal(t, int('É')%len(Palette), ColorBucket("ÉA"))
}

func TestColorBucket_Deterministic(t *testing.T) {
	a := Guest{ID: "gst_1", Name: "Jane Doe"}
	b := Guest{ID: "gst_2", Name: "Jane Doe"}

	first := ColorBucket(Initials(a.Name))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ColorBucket(Initials(a.Name)))
	}
	assert.Equal(t, first, ColorBucket(Initials(b.Name)))
	assert.Equal(t, AvatarColor("JD"), AvatarColor(Initials(b.Name)))
}

func TestPalette_HasAtLeastSixDistinctTokens(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range Palette {
		seen[p] = true
	}
	assert.GreaterOrEqual(t, len(seen), 6)
	assert.Len(t, seen, len(Palette))
}
