package guest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Link Tests
// =============================================================================

func TestLinkBuilder_OwnerScoped(t *testing.T) {
	b := LinkBuilder{Scheme: "https", Host: "mingalaroo.com"}
	assert.True(t, b.OwnerScoped())
	assert.Equal(t, "https://mingalaroo.com/alice/?guest=jane-doe", b.Generate("alice", "jane-doe"))
	assert.Equal(t, "https://mingalaroo.com/bob/?guest=jane-doe", b.Generate("bob", "jane-doe"))
}

func TestLinkBuilder_FixedSegment(t *testing.T) {
	b := LinkBuilder{Scheme: "https", Host: "mingalaroo.com", FixedSegment: "akpcpp"}
	assert.False(t, b.OwnerScoped())
	assert.Equal(t, b.Generate("alice", "jane-doe"), b.Generate("bob", "jane-doe"))
	assert.Equal(t, "https://mingalaroo.com/akpcpp/?guest=jane-doe", b.Generate("alice", "jane-doe"))
}

func TestLinkBuilder_DefaultsScheme(t *testing.T) {
	b := LinkBuilder{Host: "example.org/"}
	assert.Equal(t, "https://example.org/o/?guest=s", b.Generate("o", "s"))
}

// =============================================================================
// Export Tests
// =============================================================================

func TestExportCSV_SingleGuest(t *testing.T) {
	guests := []Guest{{
		Name:            "A B",
		GeneratedLink:   "L",
		AttendanceState: AttendanceAttending,
		GuestCount:      "-",
		GiftStatus:      GiftNotYet,
	}}

	assert.Equal(t,
		"Guest Name,Link,Attendance,Guest Count,Gift Status\n\"A B\",L,attending,-,not_yet",
		ExportCSV(guests))
}

func TestExportCSV_KeepsOrderAndRawCount(t *testing.T) {
	guests := []Guest{
		{Name: "Zed", GeneratedLink: "l1", AttendanceState: AttendancePending, GuestCount: "2 + 1", GiftStatus: GiftGifted},
		{Name: "Amy", GeneratedLink: "l2", AttendanceState: AttendanceNotAttending, GuestCount: "0", GiftStatus: GiftNotYet},
	}

	assert.Equal(t,
		ExportHeader+"\n"+
			"\"Zed\",l1,pending,2 + 1,gifted\n"+
			"\"Amy\",l2,not_attending,0,not_yet",
		ExportCSV(guests))
}

func TestExportCSV_Empty(t *testing.T) {
	assert.Equal(t, ExportHeader, ExportCSV(nil))
}

func TestExportCSV_EscapesQuotes(t *testing.T) {
	out := ExportCSV([]Guest{{Name: `The "Boss"`, GeneratedLink: "l", AttendanceState: AttendancePending, GuestCount: "-", GiftStatus: GiftNotYet}})
	assert.Contains(t, out, `"The ""Boss""",l`)
}

func TestExportFilename(t *testing.T) {
	day := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "wedding-guests-2026-03-14.csv", ExportFilename(day))
}

// =============================================================================
// Import Tests
// =============================================================================

func TestParseImport_List(t *testing.T) {
	names, err := ParseImport([]byte("- Jane Doe\n- \"Mr. & Mrs. Smith\"\n- \"  \"\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe", "Mr. & Mrs. Smith"}, names)
}

func TestParseImport_Mapping(t *testing.T) {
	names, err := ParseImport([]byte("guests:\n  - Madonna\n  - Prince\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Madonna", "Prince"}, names)
}

func TestParseImport_Errors(t *testing.T) {
	_, err := ParseImport([]byte(""))
	assert.ErrorIs(t, err, ErrImportEmpty)

	_, err = ParseImport([]byte("guests: []\n"))
	assert.ErrorIs(t, err, ErrImportEmpty)

	_, err = ParseImport([]byte("just a string"))
	assert.Error(t, err)

	_, err = ParseImport([]byte("- [unclosed"))
	assert.Error(t, err)
}
