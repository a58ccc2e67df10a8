package guest

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CanonicalName Tests
// =============================================================================

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		name     string
		param    string
		expected string
	}{
		{"slug", "jane-doe", "Jane Doe"},
		{"plus as space", "jane+doe", "Jane Doe"},
		{"mixed case", "jANE-dOE", "Jane Doe"},
		{"double encoded space", "jane%20doe", "Jane Doe"},
		{"malformed escape kept", "jane%zz", "Jane%zz"},
		{"repeated separators", "jane--doe", "Jane Doe"},
		{"unicode", "zoë-ångström", "Zoë Ångström"},
		{"only separators", "---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanonicalName(tt.param))
		})
	}
}

// =============================================================================
// ResolveQuery Tests
// =============================================================================

func TestResolveQuery_Known(t *testing.T) {
	values, err := url.ParseQuery("guest=mr-mrs-smith")
	require.NoError(t, err)

	inv := ResolveQuery(values)
	assert.True(t, inv.Known)
	assert.Equal(t, "Mr Mrs Smith", inv.Name)
	assert.Equal(t, "Dear Mr Mrs Smith,", inv.Greeting())
}

func TestResolveQuery_MissingParam(t *testing.T) {
	inv := ResolveQuery(url.Values{})
	assert.False(t, inv.Known)
	assert.Empty(t, inv.Name)
	assert.Empty(t, inv.Greeting())

	inv = ResolveQuery(url.Values{"other": {"x"}})
	assert.False(t, inv.Known)
}

func TestResolveQuery_EmptyParam(t *testing.T) {
	values, err := url.ParseQuery("guest=")
	require.NoError(t, err)
	assert.False(t, ResolveQuery(values).Known)

	values, err = url.ParseQuery("guest=---")
	require.NoError(t, err)
	assert.False(t, ResolveQuery(values).Known)
}

// =============================================================================
// ResolveLink Tests
// =============================================================================

func TestResolveLink(t *testing.T) {
	target, err := ResolveLink("https://mingalaroo.com/akpcpp/?guest=jane-doe")
	require.NoError(t, err)
	assert.Equal(t, "akpcpp", target.Segment)
	assert.True(t, target.Invitation.Known)
	assert.Equal(t, "Jane Doe", target.Invitation.Name)
}

func TestResolveLink_NoGuest(t *testing.T) {
	target, err := ResolveLink("https://mingalaroo.com/akpcpp/")
	require.NoError(t, err)
	assert.Equal(t, "akpcpp", target.Segment)
	assert.False(t, target.Invitation.Known)
}

func TestResolveLink_Invalid(t *testing.T) {
	_, err := ResolveLink("http://[::1")
	assert.ErrorIs(t, err, ErrInvalidLink)
}

// =============================================================================
// Round Trip
// =============================================================================

func TestLinkRoundTrip_MatchesStoredName(t *testing.T) {
	links := DefaultLinkBuilder()
	names := []string{
		"Jane Doe",
		"Madonna",
		"Zoë Ångström",
		"Иван Петров",
		"Mary Ann Smith",
		"Table 12",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			link := links.Generate("owner-1", Slugify(name))
			target, err := ResolveLink(link)
			require.NoError(t, err)
			require.True(t, target.Invitation.Known)

			assert.Equal(t, "owner-1", target.Segment)
			assert.Equal(t, CanonicalName(name), target.Invitation.Name)
			assert.True(t, strings.EqualFold(name, target.Invitation.Name))
			assert.Equal(t, Slugify(name), Slugify(target.Invitation.Name))
		})
	}
}

func TestLinkRoundTrip_PunctuatedNamesKeepSlug(t *testing.T) {
	links := DefaultLinkBuilder()
	for _, name := range []string{"Mr. & Mrs. Smith", "O'Brien, Pat", "Anna-Maria Lopez"} {
		slug := Slugify(name)
		target, err := ResolveLink(links.Generate("o", slug))
		require.NoError(t, err)
		assert.Equal(t, slug, Slugify(target.Invitation.Name), "name %q", name)
	}
}
