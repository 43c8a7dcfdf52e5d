package domain

import "time"

// NotificationType categorizes notification feed entries.
type NotificationType string

const (
	NotificationTypeStatusChange NotificationType = "status_change"
	NotificationTypeAssignment   NotificationType = "assignment"
	NotificationTypeIntervention NotificationType = "intervention"
	NotificationTypeModeration   NotificationType = "moderation"
)

// Notification is a per-user feed entry created server-side; clients only
// flip its read state.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Type      NotificationType
	Read      bool
	TicketID  *string
	NewStatus *TicketStatus
	CreatedAt time.Time
}
