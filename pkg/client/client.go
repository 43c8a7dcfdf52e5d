// Package client is an embeddable frontend-state layer for the helpdesk
// service. It mirrors what the web UI keeps in memory: a ticket store, a
// notification tracker with pagination, and pollers, all against the REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk-service/internal/api/dto"
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// Client is a stateless typed API client. Stores layered on top hold state.
// The HTTP client is injected so tests can supply a fake transport; when nil,
// a default client with a cookie jar is used so the session cookie persists
// across calls.
type Client struct {
	base   string
	http   *http.Client
	logger *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient injects the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger injects a logger; defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		jar, _ := cookiejar.New(nil)
		c.http = &http.Client{Jar: jar}
	}
	return c
}

// Login authenticates and lets the cookie jar capture the session cookie.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.User, error) {
	var resp dto.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:       resp.User.ID,
		Username: resp.User.Username,
		Name:     resp.User.Name,
		Email:    resp.User.Email,
		Role:     resp.User.Role,
		Status:   resp.User.Status,
	}
	return user, nil
}

// Logout drops the server session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// FetchTickets returns the caller's visible ticket set.
func (c *Client) FetchTickets(ctx context.Context) ([]domain.Ticket, error) {
	var resp dto.TicketListResponse
	if err := c.do(ctx, http.MethodGet, "/ticket/get-ticket", nil, &resp); err != nil {
		return nil, err
	}
	tickets := make([]domain.Ticket, 0, len(resp.Tickets))
	for _, t := range resp.Tickets {
		tickets = append(tickets, t.ToDomain())
	}
	return tickets, nil
}

// FetchTicket returns one ticket with comments.
func (c *Client) FetchTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	var resp dto.TicketEnvelope
	if err := c.do(ctx, http.MethodGet, "/ticket/get-ticket/"+id, nil, &resp); err != nil {
		return nil, err
	}
	ticket := resp.Ticket.ToDomain()
	return &ticket, nil
}

// CreateTicket submits a draft the caller has already validated.
func (c *Client) CreateTicket(ctx context.Context, draft domain.TicketDraft) (*domain.Ticket, error) {
	req := dto.CreateTicketRequest{
		Location:    draft.Location,
		IssueType:   draft.IssueType,
		Subject:     draft.Subject,
		Description: draft.Description,
		Urgency:     draft.Urgency,
		ChatEnabled: draft.ChatEnabled,
	}
	var resp dto.TicketEnvelope
	if err := c.do(ctx, http.MethodPost, "/ticket/create-ticket", req, &resp); err != nil {
		return nil, err
	}
	ticket := resp.Ticket.ToDomain()
	return &ticket, nil
}

// UpdateTicket sends a partial update and returns the server's ticket.
func (c *Client) UpdateTicket(ctx context.Context, id string, req dto.UpdateTicketRequest) (*domain.Ticket, error) {
	var resp dto.TicketEnvelope
	if err := c.do(ctx, http.MethodPut, "/ticket/update-ticket/"+id, req, &resp); err != nil {
		return nil, err
	}
	ticket := resp.Ticket.ToDomain()
	return &ticket, nil
}

// HideComment flags a comment hidden with the given reason.
func (c *Client) HideComment(ctx context.Context, ticketID, commentID, reason string) (*domain.Ticket, error) {
	var resp dto.TicketEnvelope
	path := "/ticket/" + ticketID + "/comments/" + commentID + "/hide"
	if err := c.do(ctx, http.MethodPut, path, dto.HideCommentRequest{Reason: reason}, &resp); err != nil {
		return nil, err
	}
	ticket := resp.Ticket.ToDomain()
	return &ticket, nil
}

// UnhideComment clears a comment's moderation flag.
func (c *Client) UnhideComment(ctx context.Context, ticketID, commentID string) (*domain.Ticket, error) {
	var resp dto.TicketEnvelope
	path := "/ticket/" + ticketID + "/comments/" + commentID + "/unhide"
	if err := c.do(ctx, http.MethodPut, path, nil, &resp); err != nil {
		return nil, err
	}
	ticket := resp.Ticket.ToDomain()
	return &ticket, nil
}

// Intervene posts a manager reply onto the ticket's first comment.
func (c *Client) Intervene(ctx context.Context, ticketID, content string) (*domain.Ticket, error) {
	var resp dto.TicketEnvelope
	if err := c.do(ctx, http.MethodPost, "/ticket/"+ticketID+"/intervene", dto.InterveneRequest{Content: content}, &resp); err != nil {
		return nil, err
	}
	ticket := resp.Ticket.ToDomain()
	return &ticket, nil
}

// ListITSupport fetches the assignment directory.
func (c *Client) ListITSupport(ctx context.Context) ([]dto.UserResponse, error) {
	var resp dto.UserListResponse
	if err := c.do(ctx, http.MethodGet, "/user/get-it-support", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// FetchNotifications returns the feed and the unread count.
func (c *Client) FetchNotifications(ctx context.Context) ([]domain.Notification, int, error) {
	var resp dto.NotificationListResponse
	if err := c.do(ctx, http.MethodGet, "/notifications/", nil, &resp); err != nil {
		return nil, 0, err
	}
	items := make([]domain.Notification, 0, len(resp.Notifications))
	for _, n := range resp.Notifications {
		items = append(items, n.ToDomain())
	}
	return items, resp.UnreadCount, nil
}

// FetchUnreadCount is the lightweight poll.
func (c *Client) FetchUnreadCount(ctx context.Context) (int, error) {
	var resp dto.UnreadCountResponse
	if err := c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.UnreadCount, nil
}

// MarkNotificationRead marks one entry read and returns the authoritative
// remaining unread count.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) (int, error) {
	var resp dto.UnreadCountResponse
	if err := c.do(ctx, http.MethodPut, "/notifications/"+id+"/read", nil, &resp); err != nil {
		return 0, err
	}
	return resp.UnreadCount, nil
}

// MarkAllNotificationsRead clears the unread set.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/notifications/read-all", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(apiErr))
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Code: "UNKNOWN"}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}
