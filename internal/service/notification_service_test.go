package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

type fakeNotificationRepo struct {
	byUser map[string][]domain.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = "generated"
	}
	f.byUser[n.UserID] = append(f.byUser[n.UserID], *n)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID string) ([]domain.Notification, error) {
	return f.byUser[userID], nil
}

func (f *fakeNotificationRepo) UnreadCount(_ context.Context, userID string) (int, error) {
	count := 0
	for _, n := range f.byUser[userID] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, userID, id string) error {
	feed := f.byUser[userID]
	for i := range feed {
		if feed[i].ID == id {
			feed[i].Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	feed := f.byUser[userID]
	for i := range feed {
		feed[i].Read = true
	}
	return nil
}

func seedFeed() *fakeNotificationRepo {
	return &fakeNotificationRepo{byUser: map[string][]domain.Notification{
		"u1": {
			{ID: "n1", UserID: "u1", Read: false},
			{ID: "n2", UserID: "u1", Read: false},
			{ID: "n3", UserID: "u1", Read: true},
		},
	}}
}

func TestListComputesUnreadCount(t *testing.T) {
	svc := NewNotificationService(seedFeed(), nil, nil)
	items, unread, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 || unread != 2 {
		t.Fatalf("expected 3 items / 2 unread, got %d / %d", len(items), unread)
	}
}

func TestMarkReadReturnsRemainingCount(t *testing.T) {
	svc := NewNotificationService(seedFeed(), nil, nil)
	count, err := svc.MarkRead(context.Background(), "u1", "n1")
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 remaining unread, got %d", count)
	}

	// Idempotent: marking again succeeds with an unchanged count.
	count, err = svc.MarkRead(context.Background(), "u1", "n1")
	if err != nil {
		t.Fatalf("second mark read: %v", err)
	}
	if count != 1 {
		t.Fatalf("idempotent re-mark changed the count to %d", count)
	}
}

func TestMarkReadUnknownIDIsNotFound(t *testing.T) {
	svc := NewNotificationService(seedFeed(), nil, nil)
	_, err := svc.MarkRead(context.Background(), "u1", "missing")
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}

func TestMarkAllReadClearsEverything(t *testing.T) {
	repo := seedFeed()
	svc := NewNotificationService(repo, nil, nil)
	if err := svc.MarkAllRead(context.Background(), "u1"); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	count, err := svc.UnreadCount(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}
}

func TestNotifySkipsEmptyRecipient(t *testing.T) {
	repo := seedFeed()
	svc := NewNotificationService(repo, nil, nil)
	if err := svc.Notify(context.Background(), &domain.Notification{Title: "orphan"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(repo.byUser[""]) != 0 {
		t.Fatal("notification without a recipient must not be stored")
	}
}
