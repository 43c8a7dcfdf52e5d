package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk-service/internal/api/dto"
	"github.com/helpdesk-kit/helpdesk-service/internal/auth"
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/filter"
	"github.com/helpdesk-kit/helpdesk-service/internal/service"
	"github.com/helpdesk-kit/helpdesk-service/internal/stats"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketsHandler serves the ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// List GET /ticket/get-ticket. Optional query params run the shared filter
// pipeline server-side so non-browser clients get the same semantics.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	tickets, err := h.service.ListTickets(c.UserContext(), user)
	if err != nil {
		return err
	}

	f := parseFilterQuery(c)
	tickets = filter.Apply(tickets, f)
	tickets = filter.SortState{
		Key:       filter.SortKey(c.Query("sort")),
		Direction: filter.Direction(c.Query("dir")),
	}.Apply(tickets)

	resp := dto.TicketListResponse{Tickets: make([]dto.TicketResponse, 0, len(tickets))}
	for i := range tickets {
		resp.Tickets = append(resp.Tickets, dto.FromTicket(&tickets[i]))
	}
	return c.JSON(resp)
}

// Get GET /ticket/get-ticket/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	ticket, err := h.service.GetTicket(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketEnvelope{Ticket: dto.FromTicket(ticket)})
}

// Create POST /ticket/create-ticket.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), user, req.Draft(), nil)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.TicketEnvelope{Ticket: dto.FromTicket(ticket)})
}

// Update PUT /ticket/update-ticket/:id. Accepts the partial fields the
// frontend mutates: status and assignment.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == nil && req.AssignedTo == nil {
		return apperrors.NewValidationError("no fields to update", nil)
	}

	var (
		ticket *domain.Ticket
		err    error
	)
	if req.Status != nil {
		ticket, err = h.service.UpdateStatus(c.UserContext(), user, c.Params("id"), *req.Status)
		if err != nil {
			return err
		}
	}
	if req.AssignedTo != nil {
		assignee := req.AssignedTo
		if *assignee == "" {
			assignee = nil
		}
		ticket, err = h.service.AssignTicket(c.UserContext(), user, c.Params("id"), assignee)
		if err != nil {
			return err
		}
	}
	return c.JSON(dto.TicketEnvelope{Ticket: dto.FromTicket(ticket)})
}

// Stats GET /ticket/stats summarizes the caller's visible set.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	tickets, err := h.service.ListTickets(c.UserContext(), user)
	if err != nil {
		return err
	}
	tickets = filter.Apply(tickets, parseFilterQuery(c))
	return c.JSON(stats.Summarize(tickets, time.Now()))
}

// HideComment PUT /ticket/:id/comments/:commentId/hide.
func (h *TicketsHandler) HideComment(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	var req dto.HideCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.HideComment(c.UserContext(), user, c.Params("id"), c.Params("commentId"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketEnvelope{Ticket: dto.FromTicket(ticket)})
}

// UnhideComment PUT /ticket/:id/comments/:commentId/unhide.
func (h *TicketsHandler) UnhideComment(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	ticket, err := h.service.UnhideComment(c.UserContext(), user, c.Params("id"), c.Params("commentId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketEnvelope{Ticket: dto.FromTicket(ticket)})
}

// Intervene POST /ticket/:id/intervene.
func (h *TicketsHandler) Intervene(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	var req dto.InterveneRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Intervene(c.UserContext(), user, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketEnvelope{Ticket: dto.FromTicket(ticket)})
}

func parseFilterQuery(c *fiber.Ctx) filter.Filter {
	f := filter.Filter{
		Search:    c.Query("search"),
		IssueType: domain.IssueType(c.Query("issueType")),
		Status:    domain.TicketStatus(c.Query("status")),
		Urgency:   domain.Urgency(c.Query("urgency")),
	}
	if raw := c.Query("date"); raw != "" {
		if day, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
			f.Date = &day
		}
	}
	return f
}
