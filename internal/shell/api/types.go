package api

import (
	"github.com/artpar/mingalaroo/internal/core/dashboard"
	"github.com/artpar/mingalaroo/internal/core/guest"
	shelldashboard "github.com/artpar/mingalaroo/internal/shell/dashboard"
)

// =============================================================================
// Request Types
// =============================================================================

// CreateGuestRequest is the request body for adding a guest.
type CreateGuestRequest struct {
	GuestName string `json:"guest_name"`
}

// UpdateGuestRequest is the request body for editing a guest. Omitted fields
// are left unchanged.
type UpdateGuestRequest struct {
	GuestName       *string                `json:"guest_name,omitempty"`
	AttendanceState *guest.AttendanceState `json:"attendance_state,omitempty"`
	GuestCount      *string                `json:"guest_count,omitempty"`
	GiftStatus      *guest.GiftStatus      `json:"gift_status,omitempty"`
}

func (r UpdateGuestRequest) toPatch() guest.Patch {
	return guest.Patch{
		Name:            r.GuestName,
		AttendanceState: r.AttendanceState,
		GuestCount:      r.GuestCount,
		GiftStatus:      r.GiftStatus,
	}
}

// RSVPRequest is the body a guest posts from the invitation page.
type RSVPRequest struct {
	Attendance guest.AttendanceState `json:"attendance"`
}

// =============================================================================
// Response Types
// =============================================================================

// MeResponse describes the authenticated organizer.
type MeResponse struct {
	OwnerID     string `json:"owner_id"`
	AuthMode    string `json:"auth_mode"`
	LinkSegment string `json:"link_segment"`
}

// DashboardResponse is the dashboard view.
type DashboardResponse = dashboard.View

// ImportResponse reports a bulk import.
type ImportResponse struct {
	Results   []shelldashboard.ImportResult `json:"results"`
	Dashboard dashboard.View                `json:"dashboard"`
}

// InvitationResponse is what the public invitation page renders.
type InvitationResponse struct {
	DisplayName string `json:"display_name"`
	Greeting    string `json:"greeting"`
	RSVPEnabled bool   `json:"rsvp_enabled"`
}

// RSVPResponse acknowledges a recorded answer.
type RSVPResponse struct {
	Status     string                `json:"status"`
	Attendance guest.AttendanceState `json:"attendance"`
	Matched    int64                 `json:"matched"`
	Message    string                `json:"message,omitempty"`
}

// ErrorResponse is the error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
