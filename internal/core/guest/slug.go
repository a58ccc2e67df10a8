package guest

import (
	"strings"
	"unicode"
)

// =============================================================================
// Slug Generation
// =============================================================================

// Slugify converts a guest name to a URL-safe slug.
//
// The transformation rules are:
//   - The name is lower-cased and trimmed
//   - Unicode letters and numbers (digits, fractions, numerals) are kept as-is
//   - Every run of other characters becomes a single hyphen
//   - Leading and trailing hyphens are removed
//
// Slugify is idempotent. An empty result means the name has no letters or
// digits and must be rejected before it is persisted.
//
// Example:
//
//	Slugify("Mr. & Mrs. Smith")  // returns "mr-mrs-smith"
//	Slugify("  Zoë Ångström ")   // returns "zoë-ångström"
//	Slugify("Table ½")           // returns "table-½"
//	Slugify("!!!")               // returns ""
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingHyphen := false
	for _, r := range strings.TrimSpace(strings.ToLower(name)) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
