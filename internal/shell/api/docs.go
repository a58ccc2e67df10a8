package api

import (
	"net/http"

	"github.com/artpar/mingalaroo/internal/shell/api/openapi"
	shelldashboard "github.com/artpar/mingalaroo/internal/shell/dashboard"
)

// APIVersion is advertised in the OpenAPI document.
const APIVersion = "1.0.0"

// newDocs registers every served route with the OpenAPI generator.
func newDocs(serverURL string) *openapi.Generator {
	opts := []openapi.Option{
		openapi.WithTitle("Mingalaroo API"),
		openapi.WithVersion(APIVersion),
	}
	if serverURL != "" {
		opts = append(opts, openapi.WithServer(serverURL))
	}
	g := openapi.NewGenerator(opts...)

	g.Register(
		openapi.Route{
			Method: http.MethodGet, Path: "/health", OperationID: "health",
			Summary: "Liveness probe", Tag: "Meta", Response: HealthResponse{}, Public: true,
		},
		openapi.Route{
			Method: http.MethodGet, Path: "/ready", OperationID: "ready",
			Summary: "Readiness probe", Tag: "Meta", Response: ReadyResponse{}, Public: true,
		},

		openapi.Route{
			Method: http.MethodGet, Path: "/api/v1/rsvp/{owner}", OperationID: "getInvitation",
			Summary: "Resolve an invitation link", Tag: "RSVP",
			QueryParams: []string{"guest"}, Response: InvitationResponse{}, Public: true,
		},
		openapi.Route{
			Method: http.MethodPost, Path: "/api/v1/rsvp/{owner}", OperationID: "submitRSVP",
			Summary: "Record a guest's answer", Tag: "RSVP",
			QueryParams: []string{"guest"}, Request: RSVPRequest{}, Response: RSVPResponse{}, Public: true,
		},

		openapi.Route{
			Method: http.MethodGet, Path: "/api/v1/me", OperationID: "getMe",
			Summary: "Current organizer", Tag: "Organizer", Response: MeResponse{},
		},
		openapi.Route{
			Method: http.MethodGet, Path: "/api/v1/dashboard", OperationID: "getDashboard",
			Summary: "Guest dashboard", Tag: "Organizer",
			QueryParams: []string{"page"}, Response: DashboardResponse{},
		},
		openapi.Route{
			Method: http.MethodPost, Path: "/api/v1/guests", OperationID: "createGuest",
			Summary: "Add a guest", Tag: "Guests",
			QueryParams: []string{"page"}, Request: CreateGuestRequest{}, Response: DashboardResponse{},
			Status: http.StatusCreated,
		},
		openapi.Route{
			Method: http.MethodPatch, Path: "/api/v1/guests/{id}", OperationID: "updateGuest",
			Summary: "Edit a guest", Tag: "Guests",
			QueryParams: []string{"page"}, Request: UpdateGuestRequest{}, Response: DashboardResponse{},
		},
		openapi.Route{
			Method: http.MethodDelete, Path: "/api/v1/guests/{id}", OperationID: "deleteGuest",
			Summary: "Remove a guest", Tag: "Guests",
			QueryParams: []string{"page"}, Response: DashboardResponse{},
		},
		openapi.Route{
			Method: http.MethodPost, Path: "/api/v1/guests/import", OperationID: "importGuests",
			Summary: "Bulk add guests from a YAML list", Tag: "Guests",
			Request: "", RequestContentType: "application/yaml",
			Response: ImportResponse{Results: []shelldashboard.ImportResult{}},
		},
		openapi.Route{
			Method: http.MethodGet, Path: "/api/v1/guests/export.csv", OperationID: "exportGuests",
			Summary: "Download the guest list", Tag: "Guests",
			Response: "", ResponseContentType: "text/csv",
		},
		openapi.Route{
			Method: http.MethodGet, Path: "/api/v1/guests/{id}/qr.png", OperationID: "guestQRCode",
			Summary: "Invitation link as a QR code", Tag: "Guests",
			Response: []byte{}, ResponseContentType: "image/png",
		},
	)
	return g
}
