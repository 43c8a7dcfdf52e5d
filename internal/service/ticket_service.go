package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk-service/internal/authz"
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/events"
	"github.com/helpdesk-kit/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// AttachmentInput carries upload metadata for ticket creation.
type AttachmentInput struct {
	Filename string
	Size     int64
	MimeType string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateTicket validates the draft and creates a ticket raised by the caller.
func (s *TicketService) CreateTicket(ctx context.Context, user *domain.User, draft domain.TicketDraft, attachments []AttachmentInput) (*domain.Ticket, error) {
	if !authz.Allowed(user.Role, authz.ActionCreateTicket) {
		return nil, apperrors.NewForbidden("role cannot create tickets")
	}
	if missing := draft.Validate(); len(missing) > 0 {
		return nil, apperrors.NewValidationError("required fields missing", map[string]any{"fields": missing})
	}
	if !draft.Urgency.Valid() {
		return nil, apperrors.NewValidationError("unknown urgency", map[string]any{"urgency": draft.Urgency})
	}

	ticket := &domain.Ticket{
		Location:    strings.TrimSpace(draft.Location),
		IssueType:   draft.IssueType,
		Subject:     strings.TrimSpace(draft.Subject),
		Description: strings.TrimSpace(draft.Description),
		Urgency:     draft.Urgency,
		Status:      domain.TicketStatusOpen,
		RaisedBy:    user.Ref(),
		ChatEnabled: draft.ChatEnabled,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, in := range attachments {
		att := &domain.Attachment{
			TicketID: ticket.ID,
			Filename: in.Filename,
			Size:     in.Size,
			MimeType: in.MimeType,
		}
		if err := s.tickets.AddAttachment(ctx, att); err != nil {
			return nil, apperrors.MapError(err)
		}
		ticket.Attachments = append(ticket.Attachments, *att)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  user.ID,
		Payload: events.TicketCreatedPayload{
			RaisedByID: user.ID,
			IssueType:  ticket.IssueType,
			Urgency:    ticket.Urgency,
			Subject:    ticket.Subject,
		},
	})
	return ticket, nil
}

// ListTickets returns the caller's visible ticket set: everything for staff
// roles, own tickets only for clients.
func (s *TicketService) ListTickets(ctx context.Context, user *domain.User) ([]domain.Ticket, error) {
	scope := repository.TicketScope{}
	if !authz.Allowed(user.Role, authz.ActionViewAllTickets) {
		id := user.ID
		scope.RaisedBy = &id
	}
	tickets, err := s.tickets.List(ctx, scope)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket fetches one ticket with comments, enforcing client ownership.
func (s *TicketService) GetTicket(ctx context.Context, user *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !authz.Allowed(user.Role, authz.ActionViewAllTickets) {
		if ticket.RaisedBy == nil || ticket.RaisedBy.ID != user.ID {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	return ticket, nil
}

// UpdateStatus performs a role-gated status transition. Setting the current
// status again is an idempotent no-op: no write, no history, no event.
func (s *TicketService) UpdateStatus(ctx context.Context, user *domain.User, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !authz.CanUpdateStatus(user.Role, user.ID, ticket) {
		return nil, apperrors.NewForbidden("role cannot change ticket status")
	}
	if ticket.Status == newStatus {
		return ticket, nil
	}

	oldStatus := ticket.Status
	if err := s.tickets.UpdateStatus(ctx, ticketID, newStatus, false, ""); err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.Status = newStatus
	ticket.UpdatedAt = time.Now()

	s.recordHistory(ctx, user.ID, ticketID, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": newStatus},
	)
	raisedBy := ""
	if ticket.RaisedBy != nil {
		raisedBy = ticket.RaisedBy.ID
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		ActorID:  user.ID,
		Payload: events.TicketStatusChangedPayload{
			RaisedByID: raisedBy,
			OldStatus:  oldStatus,
			NewStatus:  newStatus,
		},
	})
	return ticket, nil
}

// AssignTicket routes a ticket to an IT Support member, or unassigns it.
func (s *TicketService) AssignTicket(ctx context.Context, user *domain.User, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	if !authz.Allowed(user.Role, authz.ActionAssignTicket) {
		return nil, apperrors.NewForbidden("role cannot assign tickets")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if assigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *assigneeID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if assignee.Role != domain.RoleITSupport {
			return nil, apperrors.NewValidationError("assignee is not IT Support", nil)
		}
		if assignee.Status != domain.UserStatusActive {
			return nil, apperrors.NewConflict("assignee account is not active", nil)
		}
	}

	var oldAssignee *string
	if ticket.AssignedTo != nil {
		id := ticket.AssignedTo.ID
		oldAssignee = &id
	}
	if err := s.tickets.Assign(ctx, ticketID, assigneeID); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recordHistory(ctx, user.ID, ticketID, domain.ChangeTypeAssignee,
		map[string]any{"assignedTo": oldAssignee},
		map[string]any{"assignedTo": assigneeID},
	)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticketID,
		ActorID:  user.ID,
		Payload:  events.TicketAssignedPayload{AssigneeID: assigneeID},
	})
	return s.tickets.GetByID(ctx, ticketID)
}

// HideComment flags a comment hidden. The reason is mandatory and recorded.
func (s *TicketService) HideComment(ctx context.Context, user *domain.User, ticketID, commentID, reason string) (*domain.Ticket, error) {
	if !authz.CanModerate(user.Role) {
		return nil, apperrors.NewForbidden("role cannot moderate comments")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("reason required to hide a comment", nil)
	}
	if err := s.tickets.SetCommentHidden(ctx, ticketID, commentID, true, strings.TrimSpace(reason)); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordHistory(ctx, user.ID, ticketID, domain.ChangeTypeModeration,
		map[string]any{"commentId": commentID, "hidden": false},
		map[string]any{"commentId": commentID, "hidden": true, "reason": reason},
	)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventCommentHidden,
		TicketID: ticketID,
		ActorID:  user.ID,
		Payload:  events.CommentModerationPayload{CommentID: commentID, Reason: reason},
	})
	return s.tickets.GetByID(ctx, ticketID)
}

// UnhideComment clears the moderation flag. No reason is required.
func (s *TicketService) UnhideComment(ctx context.Context, user *domain.User, ticketID, commentID string) (*domain.Ticket, error) {
	if !authz.CanModerate(user.Role) {
		return nil, apperrors.NewForbidden("role cannot moderate comments")
	}
	if err := s.tickets.SetCommentHidden(ctx, ticketID, commentID, false, ""); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordHistory(ctx, user.ID, ticketID, domain.ChangeTypeModeration,
		map[string]any{"commentId": commentID, "hidden": true},
		map[string]any{"commentId": commentID, "hidden": false},
	)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventCommentUnhidden,
		TicketID: ticketID,
		ActorID:  user.ID,
		Payload:  events.CommentModerationPayload{CommentID: commentID},
	})
	return s.tickets.GetByID(ctx, ticketID)
}

// Intervene appends a privileged manager reply to the ticket's first comment.
func (s *TicketService) Intervene(ctx context.Context, user *domain.User, ticketID, content string) (*domain.Ticket, error) {
	if !authz.CanIntervene(user.Role) {
		return nil, apperrors.NewForbidden("role cannot intervene")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("intervention content required", nil)
	}
	commentID, err := s.tickets.FirstCommentID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	reply := &domain.Reply{
		CommentID: commentID,
		Content:   strings.TrimSpace(content),
		User:      user.Ref(),
	}
	if err := s.tickets.AddReply(ctx, reply); err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	raisedBy := ""
	if ticket.RaisedBy != nil {
		raisedBy = ticket.RaisedBy.ID
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventManagerIntervened,
		TicketID: ticketID,
		ActorID:  user.ID,
		Payload: events.ManagerIntervenedPayload{
			RaisedByID: raisedBy,
			CommentID:  commentID,
			ReplyID:    reply.ID,
		},
	})
	return ticket, nil
}

// ListITSupport returns active IT Support users for assignment pickers.
func (s *TicketService) ListITSupport(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListByRole(ctx, domain.RoleITSupport)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// AutoProgressOpenTickets advances assigned tickets that sat in Open past the
// window to In Progress. It is the server-side replacement for the old
// client-side idle timer, so the transition survives navigation.
func (s *TicketService) AutoProgressOpenTickets(ctx context.Context, window time.Duration) (int, error) {
	cutoff := time.Now().Add(-window)
	stale, err := s.tickets.ListOpenAssignedBefore(ctx, cutoff)
	if err != nil {
		return 0, apperrors.MapError(err)
	}

	advanced := 0
	for i := range stale {
		ticket := &stale[i]
		if err := s.tickets.UpdateStatus(ctx, ticket.ID, domain.TicketStatusInProgress, true, "auto_progress"); err != nil {
			s.logger.Warn("auto-progress update failed",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		advanced++
		s.recordHistory(ctx, "", ticket.ID, domain.ChangeTypeStatus,
			map[string]any{"status": domain.TicketStatusOpen},
			map[string]any{"status": domain.TicketStatusInProgress, "automated": true},
		)
		raisedBy := ""
		if ticket.RaisedBy != nil {
			raisedBy = ticket.RaisedBy.ID
		}
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Payload: events.TicketStatusChangedPayload{
				RaisedByID: raisedBy,
				OldStatus:  domain.TicketStatusOpen,
				NewStatus:  domain.TicketStatusInProgress,
				Automated:  true,
			},
		})
	}
	return advanced, nil
}

func (s *TicketService) recordHistory(ctx context.Context, actorID, ticketID string, changeType domain.TicketChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:   ticketID,
		ChangeType: changeType,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	if actorID != "" {
		entry.ChangedByID = &actorID
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("history append failed", zap.String("ticket_id", ticketID), zap.Error(err))
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
