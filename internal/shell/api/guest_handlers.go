package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/artpar/mingalaroo/internal/core/dashboard"
	"github.com/artpar/mingalaroo/internal/core/guest"
	"github.com/artpar/mingalaroo/internal/shell/store"
	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
)

// DefaultQRSize is the edge length of invitation QR codes in pixels.
const DefaultQRSize = 256

// maxImportBytes bounds the size of an uploaded guest list.
const maxImportBytes = 1 << 20

// =============================================================================
// Organizer Handlers
// =============================================================================

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	h.writeJSON(w, http.StatusOK, MeResponse{
		OwnerID:     owner,
		AuthMode:    string(h.authMode),
		LinkSegment: h.links.Segment(owner),
	})
}

// loadState reads the organizer's full list positioned on the requested page.
func (h *Handler) loadState(r *http.Request) dashboard.State {
	state := h.dispatcher.Load(r.Context(), ownerID(r), dashboard.NewState(h.pageSize))
	return state.WithPage(pageParam(r))
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.loadState(r).View())
}

func (h *Handler) handleCreateGuest(w http.ResponseWriter, r *http.Request) {
	var req CreateGuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error(), "invalid_json")
		return
	}

	state := dashboard.NewState(h.pageSize).WithPage(pageParam(r))
	state, err := h.dispatcher.Dispatch(r.Context(), ownerID(r), state, dashboard.AddGuest{GuestName: req.GuestName})
	if err != nil {
		h.writeCommandError(w, err, state.Notice)
		return
	}
	h.writeJSON(w, http.StatusCreated, state.View())
}

func (h *Handler) handleUpdateGuest(w http.ResponseWriter, r *http.Request) {
	var req UpdateGuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error(), "invalid_json")
		return
	}

	cmd := dashboard.UpdateGuest{ID: chi.URLParam(r, "id"), Patch: req.toPatch()}
	state := dashboard.NewState(h.pageSize).WithPage(pageParam(r))
	state, err := h.dispatcher.Dispatch(r.Context(), ownerID(r), state, cmd)
	if err != nil {
		h.writeCommandError(w, err, state.Notice)
		return
	}
	h.writeJSON(w, http.StatusOK, state.View())
}

func (h *Handler) handleDeleteGuest(w http.ResponseWriter, r *http.Request) {
	cmd := dashboard.DeleteGuest{ID: chi.URLParam(r, "id")}
	state := dashboard.NewState(h.pageSize).WithPage(pageParam(r))
	state, err := h.dispatcher.Dispatch(r.Context(), ownerID(r), state, cmd)
	if err != nil {
		h.writeCommandError(w, err, state.Notice)
		return
	}
	h.writeJSON(w, http.StatusOK, state.View())
}

// handleImportGuests accepts a YAML guest list (a bare sequence of names or a
// mapping with a "guests" key) and adds each name independently.
func (h *Handler) handleImportGuests(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes+1))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Failed to read request body", "invalid_import")
		return
	}
	if len(data) > maxImportBytes {
		h.writeError(w, http.StatusRequestEntityTooLarge, "Import document is too large", "invalid_import")
		return
	}

	names, err := guest.ParseImport(data)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "invalid_import")
		return
	}

	state := dashboard.NewState(h.pageSize)
	state, results, err := h.dispatcher.Import(r.Context(), ownerID(r), state, names)
	if err != nil {
		h.writeCommandError(w, err, state.Notice)
		return
	}
	h.writeJSON(w, http.StatusOK, ImportResponse{
		Results:   results,
		Dashboard: state.View(),
	})
}

func (h *Handler) handleExportGuests(w http.ResponseWriter, r *http.Request) {
	guests, err := h.store.ListGuests(r.Context(), ownerID(r), store.DefaultListOptions())
	if err != nil {
		h.logger.Error("failed to export guests", "owner_id", ownerID(r), "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to export guests.", "internal_error")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+guest.ExportFilename(h.now())+`"`)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, guest.ExportCSV(guests))
}

// handleGuestQR renders the guest's invitation link as a PNG QR code.
func (h *Handler) handleGuestQR(w http.ResponseWriter, r *http.Request) {
	g, err := h.store.GetGuest(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Guest not found.", "not_found")
			return
		}
		h.logger.Error("failed to load guest", "guest_id", chi.URLParam(r, "id"), "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load guest.", "internal_error")
		return
	}

	png, err := qrcode.Encode(g.GeneratedLink, qrcode.Medium, h.qrSize)
	if err != nil {
		h.logger.Error("failed to encode qr code", "guest_id", g.ID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to render QR code.", "internal_error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
