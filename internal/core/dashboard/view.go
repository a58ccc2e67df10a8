package dashboard

import (
	"errors"

	"github.com/artpar/mingalaroo/internal/core/guest"
)

var (
	// ErrGuestIDRequired is returned when an edit or delete names no guest.
	ErrGuestIDRequired = errors.New("guest id is required")

	// ErrEmptyPatch is returned when an edit changes nothing.
	ErrEmptyPatch = errors.New("no fields to update")
)

// =============================================================================
// Pagination
// =============================================================================

// PageInfo describes one page of the guest table ("Showing 21 to 40 of 57").
type PageInfo struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	StartItem  int  `json:"start_item"`
	EndItem    int  `json:"end_item"`
	Total      int  `json:"total"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// Paginate computes the page window, clamping page into [1, TotalPages].
// StartItem and EndItem are 1-based and both zero for an empty list.
func Paginate(total, page, perPage int) PageInfo {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}

	totalPages := (total + perPage - 1) / perPage
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	info := PageInfo{
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
	if total > 0 {
		info.StartItem = (page-1)*perPage + 1
		info.EndItem = min(page*perPage, total)
	}
	return info
}

// =============================================================================
// Stats
// =============================================================================

// Stats are the summary cards above the guest table.
type Stats struct {
	Invited      int `json:"invited"`
	Attending    int `json:"attending"`
	NotAttending int `json:"not_attending"`
	Pending      int `json:"pending"`
	Gifts        int `json:"gifts"`
	Headcount    int `json:"headcount"`
}

// ComputeStats summarizes the guest list.
func ComputeStats(guests []guest.Guest) Stats {
	st := Stats{Invited: len(guests)}
	for _, g := range guests {
		switch g.AttendanceState {
		case guest.AttendanceAttending:
			st.Attending++
		case guest.AttendanceNotAttending:
			st.NotAttending++
		default:
			st.Pending++
		}
		if g.GiftStatus == guest.GiftGifted {
			st.Gifts++
		}
	}
	st.Headcount = guest.SumGuestCounts(guests)
	return st
}

// =============================================================================
// View
// =============================================================================

// Row is one rendered line of the guest table.
type Row struct {
	ID              string                `json:"id"`
	GuestName       string                `json:"guest_name"`
	Initials        string                `json:"initials"`
	AvatarColor     string                `json:"avatar_color"`
	GeneratedLink   string                `json:"generated_link"`
	AttendanceState guest.AttendanceState `json:"attendance_state"`
	AttendanceLabel string                `json:"attendance_label"`
	GuestCount      string                `json:"guest_count"`
	Count           guest.CountSummary    `json:"count"`
	GiftStatus      guest.GiftStatus      `json:"gift_status"`
	GiftLabel       string                `json:"gift_label"`
}

// View is everything the dashboard renders.
type View struct {
	Stats      Stats    `json:"stats"`
	Rows       []Row    `json:"guests"`
	Pagination PageInfo `json:"pagination"`
	Notice     *Notice  `json:"notice,omitempty"`
}

// View renders the current page of the state.
func (s State) View() View {
	info := Paginate(len(s.Guests), s.Page, s.PerPage)

	rows := make([]Row, 0, info.PerPage)
	if info.Total > 0 {
		for _, g := range s.Guests[info.StartItem-1 : info.EndItem] {
			rows = append(rows, NewRow(g))
		}
	}

	return View{
		Stats:      ComputeStats(s.Guests),
		Rows:       rows,
		Pagination: info,
		Notice:     s.Notice,
	}
}

// NewRow derives the presentation attributes of one guest.
func NewRow(g guest.Guest) Row {
	initials := guest.Initials(g.Name)
	return Row{
		ID:              g.ID,
		GuestName:       g.Name,
		Initials:        initials,
		AvatarColor:     guest.AvatarColor(initials),
		GeneratedLink:   g.GeneratedLink,
		AttendanceState: g.AttendanceState,
		AttendanceLabel: g.AttendanceState.Label(),
		GuestCount:      g.GuestCount,
		Count:           g.Count(),
		GiftStatus:      g.GiftStatus,
		GiftLabel:       g.GiftStatus.Label(),
	}
}
