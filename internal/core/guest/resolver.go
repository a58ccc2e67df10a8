package guest

import (
	"errors"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// =============================================================================
// Link Resolution
// =============================================================================

// ErrInvalidLink is returned when an invitation link cannot be parsed.
var ErrInvalidLink = errors.New("invalid invitation link")

// Invitation is the guest identity recovered from an invitation link.
// When Known is false the link carried no guest and RSVP must be refused.
type Invitation struct {
	// Name is both the display name and the canonical name used to match
	// the stored guest record.
	Name  string
	Known bool
}

// Greeting returns the salutation shown on the landing page.
func (i Invitation) Greeting() string {
	if !i.Known {
		return ""
	}
	return "Dear " + i.Name + ","
}

// LinkTarget is a fully parsed invitation link.
type LinkTarget struct {
	// Segment is the first path segment (the owner segment).
	Segment    string
	Invitation Invitation
}

// ResolveQuery recovers the invited guest from already-parsed query values.
func ResolveQuery(values url.Values) Invitation {
	raw := values.Get(GuestParam)
	if raw == "" {
		return Invitation{}
	}
	name := CanonicalName(raw)
	if name == "" {
		return Invitation{}
	}
	return Invitation{Name: name, Known: true}
}

// ResolveLink parses a full invitation link.
func ResolveLink(rawURL string) (LinkTarget, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return LinkTarget{}, ErrInvalidLink
	}

	segment := ""
	if path := strings.Trim(u.Path, "/"); path != "" {
		segment, _, _ = strings.Cut(path, "/")
	}

	return LinkTarget{
		Segment:    segment,
		Invitation: ResolveQuery(u.Query()),
	}, nil
}

// CanonicalName turns a query-decoded guest parameter back into a name:
// '+' becomes a space, any remaining percent-escapes are decoded, hyphens
// split words, and every word is capitalized.
func CanonicalName(param string) string {
	decoded := strings.ReplaceAll(param, "+", " ")
	if unescaped, err := url.PathUnescape(decoded); err == nil {
		decoded = unescaped
	}
	decoded = strings.ReplaceAll(decoded, "-", " ")

	words := strings.Fields(decoded)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if size == 0 {
		return word
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}
