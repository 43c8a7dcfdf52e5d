// Package authz is the single authorization policy for the helpdesk core.
// Every role check in handlers, services and the client store goes through
// this table instead of re-deriving role comparisons in place.
package authz

import "github.com/helpdesk-kit/helpdesk-service/internal/domain"

// Action enumerates gated operations.
type Action string

const (
	ActionCreateTicket     Action = "ticket.create"
	ActionTransitionStatus Action = "ticket.transition"
	ActionAssignTicket     Action = "ticket.assign"
	ActionModerateComment  Action = "comment.moderate"
	ActionIntervene        Action = "ticket.intervene"
	ActionViewAllTickets   Action = "ticket.view_all"
)

// policy maps role x action to allowed. Absent entries mean denied.
var policy = map[domain.Role]map[Action]bool{
	domain.RoleClient: {
		ActionCreateTicket: true,
	},
	domain.RoleServiceDesk: {
		ActionCreateTicket:     true,
		ActionTransitionStatus: true,
		ActionAssignTicket:     true,
		ActionViewAllTickets:   true,
	},
	domain.RoleITSupport: {
		ActionCreateTicket:   true,
		ActionViewAllTickets: true,
		// Status transitions for IT Support are assignment-scoped; see
		// CanUpdateStatus.
	},
	domain.RoleReviewer: {
		ActionCreateTicket:     true,
		ActionTransitionStatus: true,
		ActionModerateComment:  true,
		ActionViewAllTickets:   true,
	},
	domain.RoleManager: {
		ActionCreateTicket:     true,
		ActionTransitionStatus: true,
		ActionAssignTicket:     true,
		ActionModerateComment:  true,
		ActionIntervene:        true,
		ActionViewAllTickets:   true,
	},
}

// Allowed reports whether the role may perform the action unconditionally.
func Allowed(role domain.Role, action Action) bool {
	return policy[role][action]
}

// CanTransition reports whether the role may change ticket status regardless
// of assignment. IT Support intentionally returns false here.
func CanTransition(role domain.Role) bool {
	return Allowed(role, ActionTransitionStatus)
}

// CanUpdateStatus is the full status-write predicate: unconditional for the
// transition roles, assignment-scoped for IT Support, denied otherwise.
func CanUpdateStatus(role domain.Role, userID string, ticket *domain.Ticket) bool {
	if CanTransition(role) {
		return true
	}
	if role == domain.RoleITSupport && ticket != nil && ticket.AssignedTo != nil {
		return ticket.AssignedTo.ID == userID
	}
	return false
}

// CanModerate reports whether the role may hide or unhide ticket comments.
func CanModerate(role domain.Role) bool {
	return Allowed(role, ActionModerateComment)
}

// CanIntervene reports whether the role may post a manager intervention reply.
func CanIntervene(role domain.Role) bool {
	return Allowed(role, ActionIntervene)
}
