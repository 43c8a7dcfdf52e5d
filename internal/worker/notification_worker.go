package worker

import (
	"context"
	"fmt"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/events"
	"github.com/helpdesk-kit/helpdesk-service/internal/service"
)

// NotificationWorker materializes feed notifications from domain events so
// ticket raisers see status changes and interventions on their bell.
type NotificationWorker struct {
	notifications *service.NotificationService
}

// NewNotificationWorker constructs the worker.
func NewNotificationWorker(notifications *service.NotificationService) *NotificationWorker {
	return &NotificationWorker{notifications: notifications}
}

// Register subscribes the worker's handlers on the dispatcher.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketStatusChanged, w.handleStatusChanged)
	dispatcher.Subscribe(events.EventManagerIntervened, w.handleIntervention)
}

func (w *NotificationWorker) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	// The actor already knows; notify the raiser unless they made the change.
	if payload.RaisedByID == "" || payload.RaisedByID == event.ActorID {
		return nil
	}
	status := payload.NewStatus
	ticketID := event.TicketID
	n := &domain.Notification{
		UserID:    payload.RaisedByID,
		Title:     "Ticket status updated",
		Message:   fmt.Sprintf("Your ticket is now %s", status),
		Type:      domain.NotificationTypeStatusChange,
		TicketID:  &ticketID,
		NewStatus: &status,
	}
	return w.notifications.Notify(ctx, n)
}

func (w *NotificationWorker) handleIntervention(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ManagerIntervenedPayload)
	if !ok {
		return nil
	}
	if payload.RaisedByID == "" || payload.RaisedByID == event.ActorID {
		return nil
	}
	ticketID := event.TicketID
	n := &domain.Notification{
		UserID:   payload.RaisedByID,
		Title:    "Manager responded",
		Message:  "A manager replied on your ticket",
		Type:     domain.NotificationTypeIntervention,
		TicketID: &ticketID,
	}
	return w.notifications.Notify(ctx, n)
}
