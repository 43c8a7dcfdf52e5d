package filter

import (
	"sort"
	"strings"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// SortKey selects the sortable column.
type SortKey string

const (
	// SortByCreated orders by CreatedAt; descending is the default view.
	SortByCreated SortKey = "created"
	// SortByID orders lexicographically on the short display id.
	SortByID SortKey = "id"
	// SortByUrgency orders by urgency rank (Low < Medium < High < Critical).
	SortByUrgency SortKey = "urgency"
	// SortByUpdated orders by UpdatedAt, falling back to CreatedAt.
	SortByUpdated SortKey = "updated"
)

// Direction is the sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Sort returns a newly ordered copy of tickets. Ties on the sort key break on
// ticket id so the ordering is total and sorting is idempotent.
func Sort(tickets []domain.Ticket, key SortKey, dir Direction) []domain.Ticket {
	out := make([]domain.Ticket, len(tickets))
	copy(out, tickets)

	less := lessFunc(key)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if dir == Descending {
			a, b = b, a
		}
		switch {
		case less(a, b):
			return true
		case less(b, a):
			return false
		default:
			return a.ID < b.ID
		}
	})
	return out
}

func lessFunc(key SortKey) func(a, b *domain.Ticket) bool {
	switch key {
	case SortByID:
		return func(a, b *domain.Ticket) bool {
			return strings.Compare(a.DisplayID(), b.DisplayID()) < 0
		}
	case SortByUrgency:
		return func(a, b *domain.Ticket) bool {
			return a.Urgency.Rank() < b.Urgency.Rank()
		}
	case SortByUpdated:
		return func(a, b *domain.Ticket) bool {
			return a.EffectiveUpdatedAt().Before(b.EffectiveUpdatedAt())
		}
	default:
		return func(a, b *domain.Ticket) bool {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
}

// SortState tracks the column-header toggle behavior of the table views:
// clicking the active column flips direction, clicking a new column selects
// it ascending.
type SortState struct {
	Key       SortKey
	Direction Direction
}

// DefaultSortState is the most-recent-first default view.
func DefaultSortState() SortState {
	return SortState{Key: SortByCreated, Direction: Descending}
}

// Click applies a column-header click and returns the new state.
func (s SortState) Click(key SortKey) SortState {
	if s.Key == key {
		if s.Direction == Ascending {
			s.Direction = Descending
		} else {
			s.Direction = Ascending
		}
		return s
	}
	return SortState{Key: key, Direction: Ascending}
}

// Apply sorts tickets according to the current state.
func (s SortState) Apply(tickets []domain.Ticket) []domain.Ticket {
	key := s.Key
	if key == "" {
		key = SortByCreated
	}
	dir := s.Direction
	if dir == "" {
		dir = Descending
	}
	return Sort(tickets, key, dir)
}
