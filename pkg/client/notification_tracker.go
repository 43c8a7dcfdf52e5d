package client

import (
	"context"
	"strings"
	"sync"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// PageSizeOptions are the sizes the feed UI offers.
var PageSizeOptions = []int{5, 10, 20, 50}

// ReadFilter narrows the feed view by read state.
type ReadFilter string

const (
	ReadFilterAll    ReadFilter = "all"
	ReadFilterUnread ReadFilter = "unread"
	ReadFilterRead   ReadFilter = "read"
)

// NotificationTracker mirrors the user's notification feed: the list, the
// unread badge, and the pagination state driving the feed view.
type NotificationTracker struct {
	api *Client

	mu            sync.RWMutex
	notifications []domain.Notification
	unreadCount   int
	op            OpState

	page       int
	pageSize   int
	query      string
	readFilter ReadFilter
}

// NewNotificationTracker builds an empty tracker.
func NewNotificationTracker(api *Client) *NotificationTracker {
	return &NotificationTracker{
		api:        api,
		page:       1,
		pageSize:   PageSizeOptions[1],
		readFilter: ReadFilterAll,
	}
}

// State returns the tracker's operation slot.
func (t *NotificationTracker) State() OpState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.op
}

// UnreadCount returns the badge value.
func (t *NotificationTracker) UnreadCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.unreadCount
}

// Snapshot returns a copy of the full feed.
func (t *NotificationTracker) Snapshot() []domain.Notification {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Notification, len(t.notifications))
	copy(out, t.notifications)
	return out
}

// Fetch replaces the feed and badge with the server's state.
func (t *NotificationTracker) Fetch(ctx context.Context) error {
	t.mu.Lock()
	t.op = OpState{Loading: true}
	t.mu.Unlock()

	items, unread, err := t.api.FetchNotifications(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.op = OpState{Err: err}
	if err != nil {
		return err
	}
	t.notifications = items
	t.unreadCount = unread
	return nil
}

// RefreshUnread updates only the badge; the 30-second poller calls this.
func (t *NotificationTracker) RefreshUnread(ctx context.Context) error {
	count, err := t.api.FetchUnreadCount(ctx)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.unreadCount = count
	t.mu.Unlock()
	return nil
}

// MarkRead marks one entry read. The badge takes the server's count rather
// than decrementing locally, so a stale feed cannot drive it negative.
func (t *NotificationTracker) MarkRead(ctx context.Context, id string) error {
	count, err := t.api.MarkNotificationRead(ctx, id)
	if err != nil {
		t.mu.Lock()
		t.op = OpState{Err: err}
		t.mu.Unlock()
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.notifications {
		if t.notifications[i].ID == id {
			t.notifications[i].Read = true
			break
		}
	}
	t.unreadCount = count
	t.op = OpState{}
	return nil
}

// MarkAllRead flips the whole feed read and zeroes the badge optimistically,
// then tells the server. A failed request leaves the optimistic state in
// place; the next fetch or poll re-syncs it.
func (t *NotificationTracker) MarkAllRead(ctx context.Context) error {
	t.mu.Lock()
	for i := range t.notifications {
		t.notifications[i].Read = true
	}
	t.unreadCount = 0
	t.mu.Unlock()

	err := t.api.MarkAllNotificationsRead(ctx)
	t.mu.Lock()
	t.op = OpState{Err: err}
	t.mu.Unlock()
	return err
}

// SetQuery filters the feed view and resets to the first page.
func (t *NotificationTracker) SetQuery(query string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.query = query
	t.page = 1
}

// SetReadFilter narrows the view to all, unread, or read entries and resets
// to the first page. Unknown values select everything.
func (t *NotificationTracker) SetReadFilter(f ReadFilter) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readFilter = f
	t.page = 1
}

// SetPageSize switches the page size and resets to the first page. Sizes
// outside PageSizeOptions are ignored.
func (t *NotificationTracker) SetPageSize(size int) {
	valid := false
	for _, opt := range PageSizeOptions {
		if opt == size {
			valid = true
			break
		}
	}
	if !valid {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pageSize = size
	t.page = 1
}

// SetPage clamps into [1, TotalPages].
func (t *NotificationTracker) SetPage(page int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := t.totalPagesLocked()
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	t.page = page
}

// Page returns the current view slice and the 1-based page number.
func (t *NotificationTracker) Page() ([]domain.Notification, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	matched := t.matchedLocked()
	start := (t.page - 1) * t.pageSize
	if start >= len(matched) {
		return nil, t.page
	}
	end := start + t.pageSize
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]domain.Notification, end-start)
	copy(out, matched[start:end])
	return out, t.page
}

// TotalPages reports how many pages the current query spans; at least 1.
func (t *NotificationTracker) TotalPages() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalPagesLocked()
}

func (t *NotificationTracker) totalPagesLocked() int {
	matched := len(t.matchedLocked())
	if matched == 0 {
		return 1
	}
	return (matched + t.pageSize - 1) / t.pageSize
}

func (t *NotificationTracker) matchedLocked() []domain.Notification {
	needle := strings.ToLower(t.query)
	var out []domain.Notification
	for _, n := range t.notifications {
		switch t.readFilter {
		case ReadFilterUnread:
			if n.Read {
				continue
			}
		case ReadFilterRead:
			if !n.Read {
				continue
			}
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(n.Title), needle) &&
			!strings.Contains(strings.ToLower(n.Message), needle) {
			continue
		}
		out = append(out, n)
	}
	return out
}
