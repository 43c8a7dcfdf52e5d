package dto

import (
	"time"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// NotificationResponse is the wire shape of one feed entry.
type NotificationResponse struct {
	ID        string                  `json:"_id"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Type      domain.NotificationType `json:"type"`
	Read      bool                    `json:"read"`
	TicketID  *string                 `json:"ticket,omitempty"`
	NewStatus *domain.TicketStatus    `json:"newStatus,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

// NotificationListResponse wraps the feed endpoint body.
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unreadCount"`
}

// UnreadCountResponse wraps the poll endpoint body.
type UnreadCountResponse struct {
	UnreadCount int `json:"unreadCount"`
}

// FromNotification maps a domain notification onto the wire shape.
func FromNotification(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		TicketID:  n.TicketID,
		NewStatus: n.NewStatus,
		CreatedAt: n.CreatedAt,
	}
}

// ToDomain maps the wire shape back into a domain notification.
func (r NotificationResponse) ToDomain() domain.Notification {
	return domain.Notification{
		ID:        r.ID,
		Title:     r.Title,
		Message:   r.Message,
		Type:      r.Type,
		Read:      r.Read,
		TicketID:  r.TicketID,
		NewStatus: r.NewStatus,
		CreatedAt: r.CreatedAt,
	}
}
