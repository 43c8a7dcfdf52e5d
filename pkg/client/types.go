package client

import (
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/filter"
	"github.com/helpdesk-kit/helpdesk-service/internal/stats"
)

// Aliases so embedders can name the model and view types without reaching
// into internal packages.
type (
	Ticket       = domain.Ticket
	TicketDraft  = domain.TicketDraft
	TicketStatus = domain.TicketStatus
	Urgency      = domain.Urgency
	IssueType    = domain.IssueType
	Role         = domain.Role
	Comment      = domain.Comment
	Notification = domain.Notification

	Filter    = filter.Filter
	SortKey   = filter.SortKey
	SortState = filter.SortState
	Summary   = stats.Summary
)

// DefaultSortState is the newest-first ordering views start from.
func DefaultSortState() SortState {
	return filter.DefaultSortState()
}
