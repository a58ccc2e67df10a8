package guest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// CSV Export
// =============================================================================

// ExportHeader is the first row of the exported guest list.
const ExportHeader = "Guest Name,Link,Attendance,Guest Count,Gift Status"

// ExportCSV renders guests as CSV in the given order. The name column is
// always quoted; the remaining columns are written verbatim. Rows are joined
// by "\n" with no trailing newline.
func ExportCSV(guests []Guest) string {
	var b strings.Builder
	b.WriteString(ExportHeader)
	for _, g := range guests {
		b.WriteByte('\n')
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(g.Name, `"`, `""`))
		b.WriteString(`",`)
		b.WriteString(g.GeneratedLink)
		b.WriteByte(',')
		b.WriteString(string(g.AttendanceState))
		b.WriteByte(',')
		b.WriteString(g.GuestCount)
		b.WriteByte(',')
		b.WriteString(string(g.GiftStatus))
	}
	return b.String()
}

// ExportFilename returns the download name for an export made on day.
func ExportFilename(day time.Time) string {
	return "wedding-guests-" + day.UTC().Format("2006-01-02") + ".csv"
}

// =============================================================================
// YAML Import
// =============================================================================

// ErrImportEmpty is returned when an import document lists no guests.
var ErrImportEmpty = errors.New("import contains no guest names")

type importDocument struct {
	Guests []string `yaml:"guests"`
}

// ParseImport reads guest names from a YAML document. Both a bare list and a
// mapping with a "guests" key are accepted. Blank entries are skipped; names
// are otherwise returned untouched so each one goes through normal validation.
func ParseImport(data []byte) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid import document: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, ErrImportEmpty
	}

	var names []string
	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&names); err != nil {
			return nil, fmt.Errorf("invalid import document: %w", err)
		}
	case yaml.MappingNode:
		var wrapped importDocument
		if err := doc.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("invalid import document: %w", err)
		}
		names = wrapped.Guests
	default:
		return nil, fmt.Errorf("invalid import document: expected a list of names")
	}

	result := make([]string, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			result = append(result, n)
		}
	}
	if len(result) == 0 {
		return nil, ErrImportEmpty
	}
	return result, nil
}
