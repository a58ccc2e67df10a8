package store

import (
	"context"

	"github.com/artpar/mingalaroo/internal/core/guest"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store is the guest record store. Every organizer operation is scoped by
// owner id; only the public RSVP update may run unscoped.
type Store interface {
	// CreateGuest inserts a new guest. Returns ErrDuplicateSlug when the owner
	// already has a guest whose name produces the same slug.
	CreateGuest(ctx context.Context, g *guest.Guest) error

	// GetGuest returns one guest of ownerID.
	GetGuest(ctx context.Context, ownerID, id string) (*guest.Guest, error)

	// UpdateGuest replaces the mutable fields of an existing guest.
	UpdateGuest(ctx context.Context, g *guest.Guest) error

	// DeleteGuest removes a guest of ownerID.
	DeleteGuest(ctx context.Context, ownerID, id string) error

	// ListGuests returns the owner's guests, newest first.
	ListGuests(ctx context.Context, ownerID string, opts ListOptions) ([]guest.Guest, error)

	// UpdateAttendanceByName records an RSVP answer for every guest whose
	// stored name equals name or whose slug equals Slugify(name). An empty
	// ownerID matches guests of every owner. Returns the affected row count.
	UpdateAttendanceByName(ctx context.Context, ownerID, name string, state guest.AttendanceState, guestCount string) (int64, error)

	// WithTx runs fn inside a transaction.
	WithTx(ctx context.Context, fn func(Store) error) error

	// Ping checks the connection.
	Ping(ctx context.Context) error

	Close() error
}

// =============================================================================
// Options
// =============================================================================

// MaxListLimit bounds a single list query.
const MaxListLimit = 10000

// ListOptions defines pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns options that list the whole guest book.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: MaxListLimit}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 || o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// matchSlug is the slug used by UpdateAttendanceByName. Names without any
// letter or digit match nothing.
func matchSlug(name string) string {
	slug := guest.Slugify(name)
	if slug == "" {
		return "\x00"
	}
	return slug
}
