// Package rsvp implements the guest-side RSVP state machine: at most one
// attendance update in flight per session, plus a cooldown that rate-limits
// the celebration shown when a guest accepts.
package rsvp

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/artpar/mingalaroo/internal/core/guest"
)

// =============================================================================
// Collaborators
// =============================================================================

// ErrNoMatch is returned by an Updater when no guest record matched the name.
var ErrNoMatch = errors.New("no guest matched the invitation")

// RSVPGuestCount is the guest count written by every RSVP. Head counts are
// edited by the organizer only.
const RSVPGuestCount = "0"

// DefaultCooldown is how long the attending action stays gated after a click.
const DefaultCooldown = 5 * time.Second

// FarewellMessage is shown whenever a guest declines.
const FarewellMessage = "We'll miss you! 🥺"

// MissingIdentityMessage is shown when an action needs a guest identity the
// link did not provide.
const MissingIdentityMessage = "Missing required information. Please check the URL."

// Updater persists an attendance answer for the guest with the given name.
type Updater interface {
	UpdateAttendance(ctx context.Context, name string, state guest.AttendanceState, guestCount string) error
}

// Effects are the user-visible side effects of the page.
type Effects interface {
	Celebrate()
	Notify(message string)
	ScrollToSecondary()
	SetButtons(attendingEnabled, declineEnabled bool)
}

// =============================================================================
// State & Outcome
// =============================================================================

// State is the submission state of a session.
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	if s == StateSubmitting {
		return "submitting"
	}
	return "idle"
}

// Outcome describes what a click did.
type Outcome string

const (
	// OutcomeSubmitted means the update was accepted by the backend.
	OutcomeSubmitted Outcome = "submitted"
	// OutcomeFailed means the update was attempted and failed; the session is idle again.
	OutcomeFailed Outcome = "failed"
	// OutcomeIgnored means the click landed inside the cooldown window.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeDropped means another update was already in flight.
	OutcomeDropped Outcome = "dropped"
	// OutcomeRejected means the session has no guest identity.
	OutcomeRejected Outcome = "rejected"
	// OutcomeSkipped means a decline was acknowledged without an update.
	OutcomeSkipped Outcome = "skipped"
)

// =============================================================================
// Session
// =============================================================================

// Config configures a Session.
type Config struct {
	Invitation guest.Invitation
	Updater    Updater
	Effects    Effects
	Cooldown   time.Duration
	Now        func() time.Time
	Logger     *slog.Logger
}

// Session is the RSVP state machine for one page load.
type Session struct {
	mu            sync.Mutex
	invitation    guest.Invitation
	state         State
	cooldownUntil time.Time

	cooldown time.Duration
	now      func() time.Time
	updater  Updater
	effects  Effects
	logger   *slog.Logger
}

// NewSession creates a session. When the invitation carries no guest the
// attending button starts disabled and stays that way.
func NewSession(cfg Config) *Session {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Effects == nil {
		cfg.Effects = NopEffects{}
	}

	s := &Session{
		invitation: cfg.Invitation,
		cooldown:   cfg.Cooldown,
		now:        cfg.Now,
		updater:    cfg.Updater,
		effects:    cfg.Effects,
		logger:     cfg.Logger,
	}
	if !s.invitation.Known {
		s.effects.SetButtons(false, true)
	}
	return s
}

// State returns the current submission state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// InCooldown reports whether the attending action is currently gated.
func (s *Session) InCooldown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Before(s.cooldownUntil)
}

// Attend handles a click on the attending button.
func (s *Session) Attend(ctx context.Context) Outcome {
	if !s.invitation.Known {
		s.effects.Notify(MissingIdentityMessage)
		return OutcomeRejected
	}

	s.mu.Lock()
	now := s.now()
	if now.Before(s.cooldownUntil) {
		s.mu.Unlock()
		return OutcomeIgnored
	}
	s.cooldownUntil = now.Add(s.cooldown)
	s.mu.Unlock()

	s.effects.Celebrate()
	return s.submit(ctx, guest.AttendanceAttending)
}

// Decline handles a click on the decline button. The farewell is shown and
// the page scrolls on regardless of whether an update was made.
func (s *Session) Decline(ctx context.Context) Outcome {
	outcome := OutcomeSkipped
	if s.invitation.Known {
		outcome = s.submit(ctx, guest.AttendanceNotAttending)
	}
	s.effects.Notify(FarewellMessage)
	s.effects.ScrollToSecondary()
	return outcome
}

func (s *Session) submit(ctx context.Context, state guest.AttendanceState) Outcome {
	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return OutcomeDropped
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	s.effects.SetButtons(false, false)

	err := s.updater.UpdateAttendance(ctx, s.invitation.Name, state, RSVPGuestCount)

	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
	s.effects.SetButtons(s.invitation.Known, true)

	if err != nil {
		if errors.Is(err, ErrNoMatch) {
			s.logger.Warn("rsvp matched no guest", "guest", s.invitation.Name, "attendance", state)
		} else {
			s.logger.Error("failed to update rsvp", "guest", s.invitation.Name, "attendance", state, "error", err)
		}
		return OutcomeFailed
	}

	s.logger.Info("rsvp updated", "guest", s.invitation.Name, "attendance", state)
	return OutcomeSubmitted
}

// =============================================================================
// No-op Effects
// =============================================================================

// NopEffects discards every effect.
type NopEffects struct{}

func (NopEffects) Celebrate()            {}
func (NopEffects) Notify(string)         {}
func (NopEffects) ScrollToSecondary()    {}
func (NopEffects) SetButtons(bool, bool) {}
