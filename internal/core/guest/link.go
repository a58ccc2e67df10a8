package guest

import (
	"net/url"
	"strings"
)

// GuestParam is the query parameter that carries the guest slug.
const GuestParam = "guest"

// LinkBuilder generates public invitation links of the form
// https://<host>/<segment>/?guest=<slug>.
//
// By default the segment is the owner id, so two organizers never share a
// landing page. Setting FixedSegment reproduces the legacy behaviour where every
// link points at one hard-coded segment regardless of owner.
type LinkBuilder struct {
	Scheme       string
	Host         string
	FixedSegment string
}

// DefaultLinkBuilder returns the builder for the production landing host.
func DefaultLinkBuilder() LinkBuilder {
	return LinkBuilder{Scheme: "https", Host: "mingalaroo.com"}
}

// OwnerScoped reports whether links carry the owner id.
func (b LinkBuilder) OwnerScoped() bool {
	return b.FixedSegment == ""
}

// Segment returns the path segment used for the given owner.
func (b LinkBuilder) Segment(ownerID string) string {
	if b.FixedSegment != "" {
		return b.FixedSegment
	}
	return ownerID
}

// Generate builds the invitation link for a slug.
func (b LinkBuilder) Generate(ownerID, slug string) string {
	scheme := b.Scheme
	if scheme == "" {
		scheme = "https"
	}
	host := strings.TrimSuffix(b.Host, "/")

	var sb strings.Builder
	sb.WriteString(scheme)
	sb.WriteString("://")
	sb.WriteString(host)
	sb.WriteByte('/')
	sb.WriteString(url.PathEscape(b.Segment(ownerID)))
	sb.WriteString("/?")
	sb.WriteString(GuestParam)
	sb.WriteByte('=')
	sb.WriteString(url.QueryEscape(slug))
	return sb.String()
}
