// Package dashboard executes organizer dashboard commands against the record
// store. Every successful mutation is followed by a full reload so the state
// handed back always reflects what is stored.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	core "github.com/artpar/mingalaroo/internal/core/dashboard"
	"github.com/artpar/mingalaroo/internal/core/guest"
	"github.com/artpar/mingalaroo/internal/shell/store"
)

// ErrOwnerRequired is returned when a command is dispatched without an owner.
var ErrOwnerRequired = errors.New("owner id is required")

// Config configures a Dispatcher.
type Config struct {
	Store  store.Store
	Links  guest.LinkBuilder
	Logger *slog.Logger
}

// Dispatcher runs dashboard commands.
type Dispatcher struct {
	store  store.Store
	links  guest.LinkBuilder
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Dispatcher{
		store:  cfg.Store,
		links:  cfg.Links,
		logger: cfg.Logger.With("component", "dashboard"),
	}
}

// =============================================================================
// Loading
// =============================================================================

// Load reads the owner's guest list into state. A failed read yields an empty
// dashboard with an error notice rather than an error.
func (d *Dispatcher) Load(ctx context.Context, ownerID string, state core.State) core.State {
	guests, err := d.store.ListGuests(ctx, ownerID, store.DefaultListOptions())
	if err != nil {
		d.logger.Error("failed to load guests", "owner_id", ownerID, "error", err)
		return state.LoadFailed("Failed to load guests. Please refresh the page.")
	}
	state.Notice = nil
	return state.WithGuests(guests)
}

// =============================================================================
// Dispatch
// =============================================================================

// Dispatch validates and executes cmd for ownerID.
//
// Validation errors are returned before the store is touched and leave state
// unchanged. Store errors are returned together with state carrying an error
// notice. After a successful mutation the list is reloaded.
func (d *Dispatcher) Dispatch(ctx context.Context, ownerID string, state core.State, cmd core.Command) (core.State, error) {
	if ownerID == "" {
		return state, ErrOwnerRequired
	}
	if err := core.Validate(cmd); err != nil {
		return state, err
	}

	d.logger.Debug("dispatching command", "command", cmd.Name(), "owner_id", ownerID)

	var (
		message string
		err     error
	)
	switch c := cmd.(type) {
	case core.AddGuest:
		message, err = d.addGuest(ctx, ownerID, c.GuestName)
	case core.UpdateGuest:
		message, err = d.updateGuest(ctx, ownerID, c)
	case core.DeleteGuest:
		message, err = d.deleteGuest(ctx, ownerID, c.ID)
	case core.ChangePage:
		return state.WithPage(c.Page), nil
	case core.Reload:
		return d.Load(ctx, ownerID, state), nil
	default:
		return state, fmt.Errorf("unknown command %q", cmd.Name())
	}

	if err != nil {
		d.logger.Error("command failed", "command", cmd.Name(), "owner_id", ownerID, "error", err)
		return state.WithNotice(core.NoticeError, failureMessage(cmd, err)), fmt.Errorf("command %s: %w", cmd.Name(), err)
	}

	if core.Mutates(cmd) {
		state = d.Load(ctx, ownerID, state)
	}
	if state.Notice == nil {
		state = state.WithNotice(core.NoticeInfo, message)
	}
	return state, nil
}

func (d *Dispatcher) addGuest(ctx context.Context, ownerID, name string) (string, error) {
	g, err := guest.NewGuest(ownerID, name, d.links)
	if err != nil {
		return "", err
	}
	if err := d.store.CreateGuest(ctx, g); err != nil {
		return "", err
	}
	d.logger.Info("guest added", "owner_id", ownerID, "guest_id", g.ID)
	return fmt.Sprintf("%s was added to the guest list.", g.Name), nil
}

func (d *Dispatcher) updateGuest(ctx context.Context, ownerID string, c core.UpdateGuest) (string, error) {
	var name string
	err := d.store.WithTx(ctx, func(tx store.Store) error {
		current, err := tx.GetGuest(ctx, ownerID, c.ID)
		if err != nil {
			return err
		}
		updated, err := current.ApplyPatch(c.Patch, d.links)
		if err != nil {
			return err
		}
		name = updated.Name
		return tx.UpdateGuest(ctx, &updated)
	})
	if err != nil {
		return "", err
	}
	d.logger.Info("guest updated", "owner_id", ownerID, "guest_id", c.ID)
	return fmt.Sprintf("%s was updated.", name), nil
}

func (d *Dispatcher) deleteGuest(ctx context.Context, ownerID, id string) (string, error) {
	if err := d.store.DeleteGuest(ctx, ownerID, id); err != nil {
		return "", err
	}
	d.logger.Info("guest deleted", "owner_id", ownerID, "guest_id", id)
	return "Guest removed.", nil
}

// =============================================================================
// Bulk Import
// =============================================================================

// ImportResult reports the outcome for one imported name.
type ImportResult struct {
	GuestName string `json:"guest_name"`
	Added     bool   `json:"added"`
	Error     string `json:"error,omitempty"`
}

// Import adds every name independently and reloads once at the end. A name
// that fails does not prevent the others from being added.
func (d *Dispatcher) Import(ctx context.Context, ownerID string, state core.State, names []string) (core.State, []ImportResult, error) {
	if ownerID == "" {
		return state, nil, ErrOwnerRequired
	}

	results := make([]ImportResult, 0, len(names))
	added := 0
	for _, name := range names {
		res := ImportResult{GuestName: name}
		if _, err := d.addGuest(ctx, ownerID, name); err != nil {
			res.Error = failureMessage(core.AddGuest{GuestName: name}, err)
		} else {
			res.Added = true
			added++
		}
		results = append(results, res)
	}

	d.logger.Info("guest import finished", "owner_id", ownerID, "requested", len(names), "added", added)

	state = d.Load(ctx, ownerID, state)
	if state.Notice == nil {
		state = state.WithNotice(core.NoticeInfo, fmt.Sprintf("Imported %d of %d guests.", added, len(names)))
	}
	return state, results, nil
}

// failureMessage is the organizer-facing text for a failed command.
func failureMessage(cmd core.Command, err error) string {
	switch {
	case errors.Is(err, store.ErrDuplicateSlug):
		return "A guest with this name already exists."
	case errors.Is(err, store.ErrNotFound):
		return "Guest not found."
	case errors.Is(err, guest.ErrNameRequired),
		errors.Is(err, guest.ErrNameTooLong),
		errors.Is(err, guest.ErrSlugEmpty),
		errors.Is(err, guest.ErrInvalidAttendance),
		errors.Is(err, guest.ErrInvalidGiftStatus):
		return err.Error()
	}

	switch cmd.(type) {
	case core.AddGuest:
		return "Failed to add guest."
	case core.UpdateGuest:
		return "Failed to update guest."
	case core.DeleteGuest:
		return "Failed to delete guest."
	default:
		return "Something went wrong."
	}
}
