package store

import (
	"context"
	"testing"
	"time"

	"github.com/artpar/mingalaroo/internal/core/guest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreSuite exercises the Store contract against any driver. Each test
// uses a fresh owner id so suites can share a database.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	links := guest.DefaultLinkBuilder()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	newOwner := func() string { return "owner_" + uuid.NewString()[:8] }

	createGuest := func(t *testing.T, s Store, owner, name string, offset time.Duration) *guest.Guest {
		t.Helper()
		g, err := guest.NewGuest(owner, name, links)
		require.NoError(t, err)
		g.CreatedAt = base.Add(offset)
		g.UpdatedAt = g.CreatedAt
		require.NoError(t, s.CreateGuest(context.Background(), g))
		return g
	}

	t.Run("create and get", func(t *testing.T) {
		s := newStore(t)
		owner := newOwner()
		created := createGuest(t, s, owner, "Jane Doe", 0)

		got, err := s.GetGuest(context.Background(), owner, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Jane Doe", got.Name)
		assert.Equal(t, "jane-doe", got.Slug)
		assert.Equal(t, created.GeneratedLink, got.GeneratedLink)
		assert.Equal(t, guest.AttendancePending, got.AttendanceState)
		assert.Equal(t, "-", got.GuestCount)
		assert.Equal(t, guest.GiftNotYet, got.GiftStatus)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("get is owner scoped", func(t *testing.T) {
		s := newStore(t)
		owner := newOwner()
		created := createGuest(t, s, owner, "Jane Doe", 0)

		_, err := s.GetGuest(context.Background(), newOwner(), created.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate slug per owner", func(t *testing.T) {
		s := newStore(t)
		owner := newOwner()
		createGuest(t, s, owner, "Jane Doe", 0)

		dup, err := guest.NewGuest(owner, "jane   DOE!", links)
		require.NoError(t, err)
		err = s.CreateGuest(context.Background(), dup)
		assert.ErrorIs(t, err, ErrDuplicateSlug)

		other, err := guest.NewGuest(newOwner(), "Jane Doe", links)
		require.NoError(t, err)
		assert.NoError(t, s.CreateGuest(context.Background(), other))
	})

	t.Run("duplicate id", func(t *testing.T) {
		s := newStore(t)
		owner := newOwner()
		first := createGuest(t, s, owner, "Jane Doe", 0)

		second, err := guest.NewGuest(owner, "John Roe", links)
		require.NoError(t, err)
		second.ID = first.ID
		assert.ErrorIs(t, s.CreateGuest(context.Background(), second), ErrDuplicateID)
	})

	t.Run("list newest first", func(t *testing.T) {
		s := newStore(t)
		owner := newOwner()
		createGuest(t, s, owner, "First", 0)
		createGuest(t, s, owner, "Second", time.Minute)
		createGuest(t, s, owner, "Third", 2*time.Minute)
		createGuest(t, s, newOwner(), "Someone Else", 3*time.Minute)

		guests, err := s.ListGuests(context.Background(), owner, DefaultListOptions())
		require.NoError(t, err)
		require.Len(t, guests, 3)
		assert.Equal(t, "Third", guests[0].Name)
		assert.Equal(t, "Second", guests[1].Name)
		assert.Equal(t, "First", guests[2].Name)

		page, err := s.ListGuests(context.Background(), owner, ListOptions{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "Second", page[0].Name)
	})

	t.Run("list empty", func(t *testing.T) {
		s := newStore(t)
		guests, err := s.ListGuests(context.Background(), newOwner(), DefaultListOptions())
		require.NoError(t, err)
		assert.Empty(t, guests)
	})

	t.Run("update", func(t *testing.T) {
		s := newStore(t)
		owner := newOwner()
		created := createGuest(t, s, owner, "Jane Doe", 0)

		name := "Jane Smith"
		count := "2 + 1"
		gift := guest.GiftGifted
		updated, err := created.ApplyPatch(guest.Patch{Name: &name, GuestCount: &count, GiftStatus: &gift}, links)
		require.NoError(t, err)
		require.NoError(t, s.UpdateGuest(context.Background(), &updated))

		got, err := s.GetGuest(context.Background(), owner, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane Smith", got.Name)
		assert.Equal(t, "jane-smith", got.Slug)
		assert.Equal(t, "2 + 1", got.GuestCount)
		assert.Equal(t, guest.GiftGifted, got.GiftStatus)
	})

	t.Run("update rename onto existing slug", func(t *testing.T) {
		s := newStore(t)
		owner := newOwner()
		createGuest(t, s, owner, "Jane Doe", 0)
		other := createGuest(t, s, owner, "John Roe", time.Minute)

		name := "Jane Doe"
		renamed, err := other.ApplyPatch(guest.Patch{Name: &name}, links)
		require.NoError(t, err)
		assert.ErrorIs(t, s.UpdateGuest(context.Background(), &renamed), ErrDuplicateSlug)
	})

	t.Run("update missing", func(t *testing.T) {
		s := newStore(t)
		g, err := guest.NewGuest(newOwner(), "Nobody", links)
		require.NoError(t, err)
		assert.ErrorIs(t, s.UpdateGuest(context.Background(), g), ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		owner := newOwner()
		created := createGuest(t, s, owner, "Jane Doe", 0)

		assert.ErrorIs(t, s.DeleteGuest(context.Background(), newOwner(), created.ID), ErrNotFound)
		require.NoError(t, s.DeleteGuest(context.Background(), owner, created.ID))
		assert.ErrorIs(t, s.DeleteGuest(context.Background(), owner, created.ID), ErrNotFound)

		_, err := s.GetGuest(context.Background(), owner, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("attendance by exact name", func(t *testing.T) {
		s := newStore(t)
		owner := newOwner()
		created := createGuest(t, s, owner, "Jane Doe", 0)

		n, err := s.UpdateAttendanceByName(context.Background(), owner, "Jane Doe", guest.AttendanceAttending, "0")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		got, err := s.GetGuest(context.Background(), owner, created.ID)
		require.NoError(t, err)
		assert.Equal(t, guest.AttendanceAttending, got.AttendanceState)
		assert.Equal(t, "0", got.GuestCount)
	})

	t.Run("attendance by slug of punctuated name", func(t *testing.T) {
		s := newStore(t)
		owner := newOwner()
		created := createGuest(t, s, owner, "Mr. & Mrs. Smith", 0)

		// The resolved link name is "Mr Mrs Smith", which only matches by slug.
		n, err := s.UpdateAttendanceByName(context.Background(), owner, "Mr Mrs Smith", guest.AttendanceNotAttending, "0")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		got, err := s.GetGuest(context.Background(), owner, created.ID)
		require.NoError(t, err)
		assert.Equal(t, guest.AttendanceNotAttending, got.AttendanceState)
	})

	t.Run("attendance scoped to owner", func(t *testing.T) {
		s := newStore(t)
		owner := newOwner()
		createGuest(t, s, owner, "Jane Doe", 0)

		n, err := s.UpdateAttendanceByName(context.Background(), newOwner(), "Jane Doe", guest.AttendanceAttending, "0")
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("attendance with no match", func(t *testing.T) {
		s := newStore(t)
		n, err := s.UpdateAttendanceByName(context.Background(), newOwner(), "Nobody Here", guest.AttendanceAttending, "0")
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		n, err = s.UpdateAttendanceByName(context.Background(), newOwner(), "!!!", guest.AttendanceAttending, "0")
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("transaction commit", func(t *testing.T) {
		s := newStore(t)
		owner := newOwner()
		g, err := guest.NewGuest(owner, "Tx Guest", links)
		require.NoError(t, err)

		err = s.WithTx(context.Background(), func(tx Store) error {
			return tx.CreateGuest(context.Background(), g)
		})
		require.NoError(t, err)

		_, err = s.GetGuest(context.Background(), owner, g.ID)
		assert.NoError(t, err)
	})

	t.Run("transaction rollback", func(t *testing.T) {
		s := newStore(t)
		owner := newOwner()
		g, err := guest.NewGuest(owner, "Rolled Back", links)
		require.NoError(t, err)

		err = s.WithTx(context.Background(), func(tx Store) error {
			if err := tx.CreateGuest(context.Background(), g); err != nil {
				return err
			}
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)

		_, err = s.GetGuest(context.Background(), owner, g.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(context.Background()))
	})
}
