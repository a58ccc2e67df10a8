package api

import (
	"encoding/json"
	"net/http"

	"github.com/artpar/mingalaroo/internal/core/guest"
	"github.com/artpar/mingalaroo/internal/core/rsvp"
	"github.com/go-chi/chi/v5"
)

// =============================================================================
// Public RSVP Handlers
// =============================================================================

// matchOwner returns the owner scope used to match guests for a link segment.
// With a fixed link segment every organizer shares one landing page, so the
// match is unscoped and only that segment is served.
func (h *Handler) matchOwner(segment string) (string, bool) {
	if h.links.OwnerScoped() {
		return segment, segment != ""
	}
	return "", segment == h.links.FixedSegment
}

func (h *Handler) handleGetInvitation(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.matchOwner(chi.URLParam(r, "owner")); !ok {
		h.writeError(w, http.StatusNotFound, "Invitation not found.", "not_found")
		return
	}

	inv := guest.ResolveQuery(r.URL.Query())
	h.writeJSON(w, http.StatusOK, InvitationResponse{
		DisplayName: inv.Name,
		Greeting:    inv.Greeting(),
		RSVPEnabled: inv.Known,
	})
}

func (h *Handler) handleRSVP(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.matchOwner(chi.URLParam(r, "owner"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "Invitation not found.", "not_found")
		return
	}

	inv := guest.ResolveQuery(r.URL.Query())
	if !inv.Known {
		h.writeError(w, http.StatusBadRequest, rsvp.MissingIdentityMessage, "missing_identity")
		return
	}

	var req RSVPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error(), "invalid_json")
		return
	}
	if req.Attendance != guest.AttendanceAttending && req.Attendance != guest.AttendanceNotAttending {
		h.writeError(w, http.StatusBadRequest, "attendance must be attending or not_attending", "validation_error")
		return
	}

	n, err := h.store.UpdateAttendanceByName(r.Context(), owner, inv.Name, req.Attendance, rsvp.RSVPGuestCount)
	if err != nil {
		h.logger.Error("failed to record rsvp", "owner", owner, "guest", inv.Name, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to record your answer.", "internal_error")
		return
	}
	if n == 0 {
		h.logger.Info("rsvp matched no guest", "owner", owner, "guest", inv.Name)
		h.writeError(w, http.StatusNotFound, rsvp.ErrNoMatch.Error(), "no_match")
		return
	}

	h.logger.Info("rsvp recorded", "owner", owner, "guest", inv.Name, "attendance", req.Attendance, "matched", n)

	resp := RSVPResponse{
		Status:     "recorded",
		Attendance: req.Attendance,
		Matched:    n,
	}
	if req.Attendance == guest.AttendanceNotAttending {
		resp.Message = rsvp.FarewellMessage
	}
	h.writeJSON(w, http.StatusOK, resp)
}
