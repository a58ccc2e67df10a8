// Package rsvpclient talks to the public RSVP endpoints of a Mingalaroo server.
// Client implements rsvp.Updater so a guest-side session can submit answers
// over HTTP.
package rsvpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/artpar/mingalaroo/internal/core/guest"
	"github.com/artpar/mingalaroo/internal/core/rsvp"
)

// Client submits RSVP answers for one invitation page.
type Client struct {
	baseURL    string
	segment    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Config holds client configuration.
type Config struct {
	BaseURL string // server base URL, e.g. "http://localhost:8080"
	Segment string // owner segment of the invitation link
	Timeout time.Duration
}

// NewClient creates a new RSVP client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		segment: cfg.Segment,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

var _ rsvp.Updater = (*Client)(nil)

// =============================================================================
// Wire Types
// =============================================================================

// Invitation is the server's view of an invitation link.
type Invitation struct {
	DisplayName string `json:"display_name"`
	Greeting    string `json:"greeting"`
	RSVPEnabled bool   `json:"rsvp_enabled"`
}

type answerRequest struct {
	Attendance guest.AttendanceState `json:"attendance"`
}

type answerResponse struct {
	Status  string `json:"status"`
	Matched int64  `json:"matched"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// =============================================================================
// Operations
// =============================================================================

// endpoint returns the RSVP URL for a guest name. The name travels as its
// slug, exactly as it appears in a generated link.
func (c *Client) endpoint(name string) string {
	u := c.baseURL + "/api/v1/rsvp/" + url.PathEscape(c.segment)
	if name == "" {
		return u
	}
	return u + "?" + guest.GuestParam + "=" + url.QueryEscape(guest.Slugify(name))
}

// GetInvitation fetches the landing-page greeting for a guest.
func (c *Client) GetInvitation(ctx context.Context, name string) (*Invitation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(name), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var inv Invitation
	if err := json.NewDecoder(resp.Body).Decode(&inv); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &inv, nil
}

// UpdateAttendance records the guest's answer. The server always stores the
// RSVP guest count, so count is only logged. A response matching no guest
// returns rsvp.ErrNoMatch.
func (c *Client) UpdateAttendance(ctx context.Context, name string, state guest.AttendanceState, count string) error {
	body, err := json.Marshal(answerRequest{Attendance: state})
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(name), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	var result answerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	c.logger.Debug("rsvp submitted", "guest", name, "attendance", state, "count", count, "matched", result.Matched)
	return nil
}

// statusError describes a non-2xx response. A no_match error code maps to
// rsvp.ErrNoMatch.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e errorResponse
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		if e.Code == "no_match" {
			return rsvp.ErrNoMatch
		}
		return fmt.Errorf("unexpected status %d: %s (%s)", resp.StatusCode, e.Error, e.Code)
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
}
