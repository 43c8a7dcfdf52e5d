package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk-service/internal/api/dto"
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/filter"
	"github.com/helpdesk-kit/helpdesk-service/internal/stats"
)

// Operation names the async actions whose progress the store tracks. Each
// operation gets its own loading/error slot so a failed update does not blank
// the error of an in-flight fetch.
type Operation string

const (
	OpFetch     Operation = "fetch"
	OpCreate    Operation = "create"
	OpUpdate    Operation = "update"
	OpModerate  Operation = "moderate"
	OpIntervene Operation = "intervene"
)

// OpState is a snapshot of one operation slot.
type OpState struct {
	Loading bool
	Err     error
}

// ValidationError reports the draft fields that were missing. It is raised
// locally, before any request is sent.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// TicketStore holds the in-memory ticket list as the single source of truth
// for views. Mutations go to the server first; the confirmed ticket is then
// reconciled into the list.
type TicketStore struct {
	api    *Client
	logger *zap.Logger

	mu         sync.RWMutex
	tickets    []domain.Ticket
	ops        map[Operation]OpState
	moderating map[string]bool
}

// NewTicketStore builds an empty store over the given API client.
func NewTicketStore(api *Client, logger *zap.Logger) *TicketStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketStore{
		api:        api,
		logger:     logger,
		ops:        make(map[Operation]OpState),
		moderating: make(map[string]bool),
	}
}

// State returns the slot for one operation.
func (s *TicketStore) State(op Operation) OpState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ops[op]
}

// Moderating reports whether a hide/unhide request for the comment is in
// flight, so a UI can disable just that comment's controls.
func (s *TicketStore) Moderating(commentID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.moderating[commentID]
}

// Snapshot returns a copy of the current list.
func (s *TicketStore) Snapshot() []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Ticket, len(s.tickets))
	copy(out, s.tickets)
	return out
}

// Get returns the locally held ticket, if any.
func (s *TicketStore) Get(id string) (domain.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			return s.tickets[i], true
		}
	}
	return domain.Ticket{}, false
}

// View applies a filter and sort state over the snapshot.
func (s *TicketStore) View(f filter.Filter, sortState filter.SortState) []domain.Ticket {
	return sortState.Apply(filter.Apply(s.Snapshot(), f))
}

// Stats summarizes the currently visible subset.
func (s *TicketStore) Stats(f filter.Filter, now time.Time) stats.Summary {
	return stats.Summarize(filter.Apply(s.Snapshot(), f), now)
}

// FetchAll replaces the list with the server's visible set.
func (s *TicketStore) FetchAll(ctx context.Context) error {
	s.begin(OpFetch)
	tickets, err := s.api.FetchTickets(ctx)
	if err != nil {
		s.finish(OpFetch, err)
		return err
	}
	s.mu.Lock()
	s.tickets = tickets
	s.mu.Unlock()
	s.finish(OpFetch, nil)
	return nil
}

// Refresh re-fetches one ticket and reconciles it; the detail poller uses it.
func (s *TicketStore) Refresh(ctx context.Context, id string) error {
	ticket, err := s.api.FetchTicket(ctx, id)
	if err != nil {
		return err
	}
	s.reconcile(*ticket)
	return nil
}

// Create validates the draft locally first; an incomplete draft produces a
// ValidationError without a network round trip. On success the confirmed
// ticket is prepended so it shows up under the default newest-first sort.
func (s *TicketStore) Create(ctx context.Context, draft domain.TicketDraft) (*domain.Ticket, error) {
	if missing := draft.Validate(); len(missing) > 0 {
		err := &ValidationError{Fields: missing}
		s.mu.Lock()
		s.ops[OpCreate] = OpState{Err: err}
		s.mu.Unlock()
		return nil, err
	}

	s.begin(OpCreate)
	ticket, err := s.api.CreateTicket(ctx, draft)
	if err != nil {
		s.finish(OpCreate, err)
		return nil, err
	}

	s.mu.Lock()
	s.tickets = append([]domain.Ticket{*ticket}, s.tickets...)
	s.mu.Unlock()
	s.finish(OpCreate, nil)
	return ticket, nil
}

// ChangeStatus sets a ticket's status. Setting the status the ticket already
// holds locally is answered from the store without a network round trip.
func (s *TicketStore) ChangeStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	return s.Update(ctx, id, dto.UpdateTicketRequest{Status: &status})
}

// Update sends a partial update and patches the local entry in place. A
// status-only update matching the locally held status short-circuits before
// the request is built. A confirmed ticket that is no longer in the list is
// logged and appended rather than dropped, so the store cannot silently lose
// a mutation.
func (s *TicketStore) Update(ctx context.Context, id string, req dto.UpdateTicketRequest) (*domain.Ticket, error) {
	if req.Status != nil && req.AssignedTo == nil {
		if held, ok := s.Get(id); ok && held.Status == *req.Status {
			s.finish(OpUpdate, nil)
			return &held, nil
		}
	}

	s.begin(OpUpdate)
	ticket, err := s.api.UpdateTicket(ctx, id, req)
	if err != nil {
		s.finish(OpUpdate, err)
		return nil, err
	}
	s.reconcile(*ticket)
	s.finish(OpUpdate, nil)
	return ticket, nil
}

// HideComment requires a reason before anything is sent.
func (s *TicketStore) HideComment(ctx context.Context, ticketID, commentID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		err := &ValidationError{Fields: []string{"reason"}}
		s.mu.Lock()
		s.ops[OpModerate] = OpState{Err: err}
		s.mu.Unlock()
		return err
	}
	return s.moderate(ctx, commentID, func() (*domain.Ticket, error) {
		return s.api.HideComment(ctx, ticketID, commentID, reason)
	})
}

// UnhideComment restores a hidden comment.
func (s *TicketStore) UnhideComment(ctx context.Context, ticketID, commentID string) error {
	return s.moderate(ctx, commentID, func() (*domain.Ticket, error) {
		return s.api.UnhideComment(ctx, ticketID, commentID)
	})
}

// Intervene posts a manager reply and reconciles the returned ticket.
func (s *TicketStore) Intervene(ctx context.Context, ticketID, content string) error {
	s.begin(OpIntervene)
	ticket, err := s.api.Intervene(ctx, ticketID, content)
	if err != nil {
		s.finish(OpIntervene, err)
		return err
	}
	s.reconcile(*ticket)
	s.finish(OpIntervene, nil)
	return nil
}

func (s *TicketStore) moderate(ctx context.Context, commentID string, call func() (*domain.Ticket, error)) error {
	s.mu.Lock()
	if s.moderating[commentID] {
		s.mu.Unlock()
		return fmt.Errorf("moderation already in progress for comment %s", commentID)
	}
	s.moderating[commentID] = true
	s.ops[OpModerate] = OpState{Loading: true}
	s.mu.Unlock()

	ticket, err := call()

	s.mu.Lock()
	delete(s.moderating, commentID)
	s.ops[OpModerate] = OpState{Err: err}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.reconcile(*ticket)
	return nil
}

func (s *TicketStore) reconcile(ticket domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID == ticket.ID {
			s.tickets[i] = ticket
			return
		}
	}
	s.logger.Warn("confirmed ticket missing from local list, appending",
		zap.String("ticket_id", ticket.ID))
	s.tickets = append(s.tickets, ticket)
}

func (s *TicketStore) begin(op Operation) {
	s.mu.Lock()
	s.ops[op] = OpState{Loading: true}
	s.mu.Unlock()
}

func (s *TicketStore) finish(op Operation, err error) {
	s.mu.Lock()
	s.ops[op] = OpState{Err: err}
	s.mu.Unlock()
}
