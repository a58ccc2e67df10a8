// Package guest contains the guest record model and the pure normalization
// functions shared by the organizer dashboard and the public RSVP page.
// This is part of the Functional Core - all functions are pure with no I/O.
package guest

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrNameRequired is returned when a guest name is blank.
	ErrNameRequired = errors.New("guest name is required")

	// ErrNameTooLong is returned when a guest name exceeds MaxNameLength runes.
	ErrNameTooLong = errors.New("guest name must be at most 200 characters")

	// ErrSlugEmpty is returned when a name contains no letters or digits and
	// therefore produces no usable slug.
	ErrSlugEmpty = errors.New("guest name must contain at least one letter or digit")

	// ErrInvalidAttendance is returned for an unknown attendance state.
	ErrInvalidAttendance = errors.New("invalid attendance state")

	// ErrInvalidGiftStatus is returned for an unknown gift status.
	ErrInvalidGiftStatus = errors.New("invalid gift status")
)

// MaxNameLength is the longest accepted guest name, in runes.
const MaxNameLength = 200

// DefaultGuestCount is the guest count of a freshly added guest.
const DefaultGuestCount = "-"

// =============================================================================
// Attendance State
// =============================================================================

// AttendanceState is the RSVP answer recorded for a guest.
type AttendanceState string

const (
	AttendancePending      AttendanceState = "pending"
	AttendanceAttending    AttendanceState = "attending"
	AttendanceNotAttending AttendanceState = "not_attending"
)

// IsValid checks if the attendance state is one of the known values.
func (s AttendanceState) IsValid() bool {
	switch s {
	case AttendancePending, AttendanceAttending, AttendanceNotAttending:
		return true
	default:
		return false
	}
}

// Label returns the badge text shown on the dashboard.
func (s AttendanceState) Label() string {
	switch s {
	case AttendanceAttending:
		return "Attending"
	case AttendanceNotAttending:
		return "Not Attending"
	default:
		return "Pending"
	}
}

// =============================================================================
// Gift Status
// =============================================================================

// GiftStatus records whether a guest has given a gift.
type GiftStatus string

const (
	GiftNotYet GiftStatus = "not_yet"
	GiftGifted GiftStatus = "gifted"
)

// IsValid checks if the gift status is one of the known values.
func (s GiftStatus) IsValid() bool {
	return s == GiftNotYet || s == GiftGifted
}

// Label returns the text shown on the dashboard.
func (s GiftStatus) Label() string {
	if s == GiftGifted {
		return "Gifted"
	}
	return "Not yet"
}

// =============================================================================
// Guest
// =============================================================================

// Guest is a single invited guest owned by an organizer account.
type Guest struct {
	ID              string          `json:"id"`
	Name            string          `json:"guest_name"`
	Slug            string          `json:"slug"`
	GeneratedLink   string          `json:"generated_link"`
	AttendanceState AttendanceState `json:"attendance_state"`
	GuestCount      string          `json:"guest_count"`
	GiftStatus      GiftStatus      `json:"gift_status"`
	OwnerID         string          `json:"owner_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Count returns the parsed guest count summary.
func (g Guest) Count() CountSummary {
	return ParseGuestCount(g.GuestCount)
}

// ValidateName checks a raw guest name and returns the trimmed name.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrNameRequired
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return "", ErrNameTooLong
	}
	if Slugify(trimmed) == "" {
		return "", ErrSlugEmpty
	}
	return trimmed, nil
}

// NewGuest creates a pending guest for the given owner.
// The name is validated before anything is derived from it.
func NewGuest(ownerID, name string, links LinkBuilder) (*Guest, error) {
	trimmed, err := ValidateName(name)
	if err != nil {
		return nil, err
	}

	slug := Slugify(trimmed)
	now := time.Now().UTC()
	return &Guest{
		ID:              "gst_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8],
		Name:            trimmed,
		Slug:            slug,
		GeneratedLink:   links.Generate(ownerID, slug),
		AttendanceState: AttendancePending,
		GuestCount:      DefaultGuestCount,
		GiftStatus:      GiftNotYet,
		OwnerID:         ownerID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// =============================================================================
// Patch
// =============================================================================

// Patch is an organizer edit. Nil fields are left untouched.
type Patch struct {
	Name            *string          `json:"guest_name,omitempty"`
	AttendanceState *AttendanceState `json:"attendance_state,omitempty"`
	GuestCount      *string          `json:"guest_count,omitempty"`
	GiftStatus      *GiftStatus      `json:"gift_status,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.AttendanceState == nil && p.GuestCount == nil && p.GiftStatus == nil
}

// Validate checks every field the patch sets.
func (p Patch) Validate() error {
	if p.Name != nil {
		if _, err := ValidateName(*p.Name); err != nil {
			return err
		}
	}
	if p.AttendanceState != nil && !p.AttendanceState.IsValid() {
		return ErrInvalidAttendance
	}
	if p.GiftStatus != nil && !p.GiftStatus.IsValid() {
		return ErrInvalidGiftStatus
	}
	return nil
}

// ApplyPatch returns a copy of g with the patch applied.
// Renaming a guest regenerates the slug and the invitation link, since the
// public page matches guests by the name carried in the link.
func (g Guest) ApplyPatch(p Patch, links LinkBuilder) (Guest, error) {
	if err := p.Validate(); err != nil {
		return g, err
	}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name != g.Name {
			g.Name = name
			g.Slug = Slugify(name)
			g.GeneratedLink = links.Generate(g.OwnerID, g.Slug)
		}
	}
	if p.AttendanceState != nil {
		g.AttendanceState = *p.AttendanceState
	}
	if p.GuestCount != nil {
		count := strings.TrimSpace(*p.GuestCount)
		if count == "" {
			count = DefaultGuestCount
		}
		g.GuestCount = count
	}
	if p.GiftStatus != nil {
		g.GiftStatus = *p.GiftStatus
	}
	g.UpdatedAt = time.Now().UTC()
	return g, nil
}
