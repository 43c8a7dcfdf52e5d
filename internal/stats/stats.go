// Package stats computes dashboard statistics from a ticket snapshot.
// Everything here is pure: callers filter the snapshot to the scope they
// care about first, then pass the subset in.
package stats

import (
	"time"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// OldestSentinel is returned by Oldest for an empty subset.
const OldestSentinel = "N/A"

// Summary holds the dashboard card counters for one ticket subset.
type Summary struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
	Closed     int `json:"closed"`
	Critical   int `json:"critical"`
	Unassigned int `json:"unassigned"`
	SLABreach  int `json:"slaBreach"`
}

// Summarize computes all counters in one pass over the subset, evaluating the
// SLA threshold against now.
func Summarize(tickets []domain.Ticket, now time.Time) Summary {
	s := Summary{Total: len(tickets)}
	for i := range tickets {
		t := &tickets[i]
		switch t.Status {
		case domain.TicketStatusOpen:
			s.Open++
		case domain.TicketStatusInProgress:
			s.InProgress++
		case domain.TicketStatusResolved:
			s.Resolved++
		case domain.TicketStatusClosed:
			s.Closed++
		}
		if t.Urgency == domain.UrgencyCritical {
			s.Critical++
		}
		if t.AssignedTo == nil {
			s.Unassigned++
			if now.Sub(t.CreatedAt) > domain.SLABreachThreshold {
				s.SLABreach++
			}
		}
	}
	return s
}

// CountWhere counts tickets satisfying an arbitrary predicate.
func CountWhere(tickets []domain.Ticket, pred func(*domain.Ticket) bool) int {
	n := 0
	for i := range tickets {
		if pred(&tickets[i]) {
			n++
		}
	}
	return n
}

// Oldest returns the earliest CreatedAt in the subset formatted as a local
// date string, or OldestSentinel when the subset is empty.
func Oldest(tickets []domain.Ticket) string {
	if len(tickets) == 0 {
		return OldestSentinel
	}
	oldest := tickets[0].CreatedAt
	for i := 1; i < len(tickets); i++ {
		if tickets[i].CreatedAt.Before(oldest) {
			oldest = tickets[i].CreatedAt
		}
	}
	return oldest.Local().Format("Jan 2, 2006")
}
