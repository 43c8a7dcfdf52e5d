package events

import (
	"time"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventCommentHidden       EventType = "comment_hidden"
	EventCommentUnhidden     EventType = "comment_unhidden"
	EventManagerIntervened   EventType = "manager_intervened"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	RaisedByID string           `json:"raised_by_id"`
	IssueType  domain.IssueType `json:"issue_type"`
	Urgency    domain.Urgency   `json:"urgency"`
	Subject    string           `json:"subject"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	RaisedByID string              `json:"raised_by_id"`
	OldStatus  domain.TicketStatus `json:"old_status"`
	NewStatus  domain.TicketStatus `json:"new_status"`
	Automated  bool                `json:"automated,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// CommentModerationPayload payload for hide/unhide.
type CommentModerationPayload struct {
	CommentID string `json:"comment_id"`
	Reason    string `json:"reason,omitempty"`
}

// ManagerIntervenedPayload payload.
type ManagerIntervenedPayload struct {
	RaisedByID string `json:"raised_by_id"`
	CommentID  string `json:"comment_id"`
	ReplyID    string `json:"reply_id"`
}
