package dashboard

import (
	"fmt"
	"testing"

	"github.com/artpar/mingalaroo/internal/core/guest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeGuests(n int) []guest.Guest {
	guests := make([]guest.Guest, n)
	for i := range guests {
		guests[i] = guest.Guest{
			ID:              fmt.Sprintf("gst_%03d", i),
			Name:            fmt.Sprintf("Guest %d", i),
			AttendanceState: guest.AttendancePending,
			GuestCount:      "-",
			GiftStatus:      guest.GiftNotYet,
		}
	}
	return guests
}

// =============================================================================
// Pagination Tests
// =============================================================================

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		page     int
		perPage  int
		expected PageInfo
	}{
		{"empty", 0, 1, 20, PageInfo{Page: 1, PerPage: 20, TotalPages: 0, StartItem: 0, EndItem: 0, Total: 0}},
		{"first page", 57, 1, 20, PageInfo{Page: 1, PerPage: 20, TotalPages: 3, StartItem: 1, EndItem: 20, Total: 57, HasNext: true}},
		{"middle page", 57, 2, 20, PageInfo{Page: 2, PerPage: 20, TotalPages: 3, StartItem: 21, EndItem: 40, Total: 57, HasPrev: true, HasNext: true}},
		{"last partial page", 57, 3, 20, PageInfo{Page: 3, PerPage: 20, TotalPages: 3, StartItem: 41, EndItem: 57, Total: 57, HasPrev: true}},
		{"page past end clamps", 57, 9, 20, PageInfo{Page: 3, PerPage: 20, TotalPages: 3, StartItem: 41, EndItem: 57, Total: 57, HasPrev: true}},
		{"page zero clamps", 5, 0, 20, PageInfo{Page: 1, PerPage: 20, TotalPages: 1, StartItem: 1, EndItem: 5, Total: 5}},
		{"default page size", 25, 2, 0, PageInfo{Page: 2, PerPage: 20, TotalPages: 2, StartItem: 21, EndItem: 25, Total: 25, HasPrev: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Paginate(tt.total, tt.page, tt.perPage))
		})
	}
}

// =============================================================================
// State Tests
// =============================================================================

func TestState_WithGuestsKeepsPageInRange(t *testing.T) {
	s := NewState(10).WithGuests(makeGuests(35)).WithPage(4)
	require.Equal(t, 4, s.Page)

	s = s.WithGuests(makeGuests(12))
	assert.Equal(t, 2, s.Page)
}

func TestState_LoadFailedIsUsable(t *testing.T) {
	s := NewState(20).WithGuests(makeGuests(3)).LoadFailed("Failed to load guests: boom")

	view := s.View()
	assert.Empty(t, view.Rows)
	assert.NotNil(t, view.Rows)
	assert.Equal(t, 0, view.Stats.Invited)
	require.NotNil(t, view.Notice)
	assert.Equal(t, NoticeError, view.Notice.Level)
	assert.Equal(t, "Failed to load guests: boom", view.Notice.Message)
}

func TestState_ViewSlicesCurrentPage(t *testing.T) {
	s := NewState(20).WithGuests(makeGuests(45)).WithPage(3)

	view := s.View()
	require.Len(t, view.Rows, 5)
	assert.Equal(t, "gst_040", view.Rows[0].ID)
	assert.Equal(t, 41, view.Pagination.StartItem)
	assert.Equal(t, 45, view.Pagination.EndItem)
	assert.Equal(t, 45, view.Stats.Invited)
}

func TestNewRow(t *testing.T) {
	row := NewRow(guest.Guest{
		ID:              "gst_1",
		Name:            "Jane Doe",
		GeneratedLink:   "https://mingalaroo.com/o/?guest=jane-doe",
		AttendanceState: guest.AttendanceAttending,
		GuestCount:      "2 + 3",
		GiftStatus:      guest.GiftGifted,
	})

	assert.Equal(t, "JD", row.Initials)
	assert.Equal(t, guest.AvatarColor("JD"), row.AvatarColor)
	assert.Equal(t, "Attending", row.AttendanceLabel)
	assert.Equal(t, guest.CountSummary{Display: "2 + 3 = 5", Total: 5}, row.Count)
	assert.Equal(t, "Gifted", row.GiftLabel)
}

// =============================================================================
// Stats Tests
// =============================================================================

func TestComputeStats(t *testing.T) {
	guests := []guest.Guest{
		{AttendanceState: guest.AttendanceAttending, GuestCount: "2 + 1", GiftStatus: guest.GiftGifted},
		{AttendanceState: guest.AttendanceAttending, GuestCount: "1", GiftStatus: guest.GiftNotYet},
		{AttendanceState: guest.AttendanceNotAttending, GuestCount: "0", GiftStatus: guest.GiftGifted},
		{AttendanceState: guest.AttendancePending, GuestCount: "-", GiftStatus: guest.GiftNotYet},
	}

	assert.Equal(t, Stats{
		Invited:      4,
		Attending:    2,
		NotAttending: 1,
		Pending:      1,
		Gifts:        2,
		Headcount:    4,
	}, ComputeStats(guests))
}

// =============================================================================
// Command Tests
// =============================================================================

func TestValidate(t *testing.T) {
	name := "New Name"
	empty := ""

	assert.NoError(t, Validate(AddGuest{GuestName: "Jane"}))
	assert.ErrorIs(t, Validate(AddGuest{GuestName: "  "}), guest.ErrNameRequired)
	assert.ErrorIs(t, Validate(UpdateGuest{Patch: guest.Patch{Name: &name}}), ErrGuestIDRequired)
	assert.ErrorIs(t, Validate(UpdateGuest{ID: "gst_1"}), ErrEmptyPatch)
	assert.ErrorIs(t, Validate(UpdateGuest{ID: "gst_1", Patch: guest.Patch{Name: &empty}}), guest.ErrNameRequired)
	assert.ErrorIs(t, Validate(DeleteGuest{}), ErrGuestIDRequired)
	assert.NoError(t, Validate(ChangePage{Page: -4}))
	assert.NoError(t, Validate(Reload{}))
}

func TestMutates(t *testing.T) {
	assert.True(t, Mutates(AddGuest{}))
	assert.True(t, Mutates(UpdateGuest{}))
	assert.True(t, Mutates(DeleteGuest{}))
	assert.False(t, Mutates(ChangePage{}))
	assert.False(t, Mutates(Reload{}))
}
