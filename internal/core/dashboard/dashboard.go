// Package dashboard models the organizer dashboard as an explicit state value
// and a set of commands. All functions are pure; the imperative shell
// (internal/shell/dashboard) executes commands against the record store.
package dashboard

import (
	"github.com/artpar/mingalaroo/internal/core/guest"
)

// DefaultPageSize is the number of guests shown per dashboard page.
const DefaultPageSize = 20

// =============================================================================
// State
// =============================================================================

// NoticeLevel classifies a transient dashboard notification.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a transient message for the organizer.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// State is the complete dashboard application state. Guests are kept in the
// order the store returned them (newest first).
type State struct {
	Guests  []guest.Guest
	Page    int
	PerPage int
	Notice  *Notice
}

// NewState returns an empty dashboard on the first page.
func NewState(perPage int) State {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	return State{Page: 1, PerPage: perPage}
}

// WithGuests replaces the guest list, keeping the current page in range.
func (s State) WithGuests(guests []guest.Guest) State {
	s.Guests = guests
	s.Page = Paginate(len(guests), s.Page, s.PerPage).Page
	return s
}

// WithPage moves to page, clamped to the available pages.
func (s State) WithPage(page int) State {
	s.Page = Paginate(len(s.Guests), page, s.PerPage).Page
	return s
}

// WithNotice attaches a notice.
func (s State) WithNotice(level NoticeLevel, message string) State {
	s.Notice = &Notice{Level: level, Message: message}
	return s
}

// LoadFailed returns the empty, still usable dashboard shown when the guest
// list cannot be loaded.
func (s State) LoadFailed(message string) State {
	s.Guests = nil
	s.Page = 1
	return s.WithNotice(NoticeError, message)
}

// =============================================================================
// Commands
// =============================================================================

// Command is a single organizer action.
type Command interface {
	Name() string
}

// AddGuest adds a guest by name.
type AddGuest struct {
	GuestName string
}

// UpdateGuest edits an existing guest.
type UpdateGuest struct {
	ID    string
	Patch guest.Patch
}

// DeleteGuest removes a guest.
type DeleteGuest struct {
	ID string
}

// ChangePage moves to another page of the guest table.
type ChangePage struct {
	Page int
}

// Reload re-reads the guest list.
type Reload struct{}

func (AddGuest) Name() string    { return "add_guest" }
func (UpdateGuest) Name() string { return "update_guest" }
func (DeleteGuest) Name() string { return "delete_guest" }
func (ChangePage) Name() string  { return "change_page" }
func (Reload) Name() string      { return "reload" }

// Mutates reports whether a command changes stored data and therefore must be
// followed by a full reload.
func Mutates(cmd Command) bool {
	switch cmd.(type) {
	case AddGuest, UpdateGuest, DeleteGuest:
		return true
	default:
		return false
	}
}

// Validate checks a command before anything touches the store.
func Validate(cmd Command) error {
	switch c := cmd.(type) {
	case AddGuest:
		_, err := guest.ValidateName(c.GuestName)
		return err
	case UpdateGuest:
		if c.ID == "" {
			return ErrGuestIDRequired
		}
		if c.Patch.IsEmpty() {
			return ErrEmptyPatch
		}
		return c.Patch.Validate()
	case DeleteGuest:
		if c.ID == "" {
			return ErrGuestIDRequired
		}
	}
	return nil
}
