// Package filter implements the in-memory ticket filter and sort pipeline
// shared by the API handlers and the client store.
package filter

import (
	"strings"
	"time"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// Filter is the predicate tuple applied to a ticket list. Zero values are
// pass-through: an empty field never excludes a ticket on that field's
// account. All active predicates are ANDed.
type Filter struct {
	// Search is matched case-insensitively as a substring of the ticket's
	// issue type, subject, or description.
	Search string

	IssueType domain.IssueType
	Status    domain.TicketStatus
	Urgency   domain.Urgency

	// Date, when set, requires the ticket's CreatedAt to fall on the same
	// calendar day. The day boundary is computed in Date's own location, so
	// callers pick the timezone by constructing Date in it.
	Date *time.Time
}

// Matches reports whether a single ticket passes every active predicate.
func (f Filter) Matches(t *domain.Ticket) bool {
	if q := strings.TrimSpace(f.Search); q != "" {
		q = strings.ToLower(q)
		if !strings.Contains(strings.ToLower(string(t.IssueType)), q) &&
			!strings.Contains(strings.ToLower(t.Subject), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	if f.IssueType != "" && t.IssueType != f.IssueType {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Urgency != "" && t.Urgency != f.Urgency {
		return false
	}
	if f.Date != nil && !sameDay(t.CreatedAt, *f.Date) {
		return false
	}
	return true
}

// Apply returns the tickets passing the filter, preserving input order.
func Apply(tickets []domain.Ticket, f Filter) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		if f.Matches(&tickets[i]) {
			out = append(out, tickets[i])
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	loc := b.Location()
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
