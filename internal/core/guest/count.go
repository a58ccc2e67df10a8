package guest

import (
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// Guest Count Parsing
// =============================================================================

// CountSummary is the parsed form of a free-form guest count such as "2 + 1".
type CountSummary struct {
	Display string `json:"display"`
	Total   int    `json:"total"`
}

var (
	plusPattern    = regexp.MustCompile(`(\d+)\s*\+\s*(\d+)`)
	leadingInteger = regexp.MustCompile(`^\s*([+-]?\d+)`)
)

// ParseGuestCount interprets a guest count string. It never fails: anything it
// cannot read counts as zero and is displayed unchanged.
//
// Rules, first match wins:
//  1. "", "-" and "0" are returned verbatim with total 0
//  2. "N + M" anywhere in the string sums to N+M and is displayed as "raw = N+M"
//  3. a leading integer ("4", "4 guests") is the total, displayed unchanged
//  4. anything else totals 0
func ParseGuestCount(raw string) CountSummary {
	if raw == "" || raw == "-" || raw == "0" {
		return CountSummary{Display: raw, Total: 0}
	}

	if m := plusPattern.FindStringSubmatch(raw); m != nil {
		primary, err1 := strconv.Atoi(m[1])
		additional, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil && primary <= maxCount-additional {
			total := primary + additional
			return CountSummary{Display: raw + " = " + strconv.Itoa(total), Total: total}
		}
		return CountSummary{Display: raw, Total: 0}
	}

	if m := leadingInteger.FindStringSubmatch(raw); m != nil {
		n, err := strconv.Atoi(strings.TrimPrefix(m[1], "+"))
		if err != nil || n < 0 {
			n = 0
		}
		return CountSummary{Display: raw, Total: n}
	}

	return CountSummary{Display: raw, Total: 0}
}

const maxCount = int(^uint(0) >> 1)

// SumGuestCounts totals the parsed guest counts of every guest.
func SumGuestCounts(guests []Guest) int {
	total := 0
	for _, g := range guests {
		n := ParseGuestCount(g.GuestCount).Total
		if total > maxCount-n {
			return maxCount
		}
		total += n
	}
	return total
}
