package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/events"
	"github.com/helpdesk-kit/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util/errorutil"
)

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket

	statusWrites  int
	assignWrites  int
	hiddenWrites  int
	replies       []domain.Reply
	staleTickets  []domain.Ticket
	lastAutomated bool
}

func newFakeTicketRepo(tickets ...*domain.Ticket) *fakeTicketRepo {
	repo := &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
	for _, t := range tickets {
		repo.tickets[t.ID] = t
	}
	return repo
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = "generated"
	}
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	f.tickets[ticket.ID] = ticket
	return nil
}

func (f *fakeTicketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus, automated bool, _ string) error {
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	f.statusWrites++
	f.lastAutomated = automated
	return nil
}

func (f *fakeTicketRepo) Assign(_ context.Context, id string, assigneeID *string) error {
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if assigneeID == nil {
		ticket.AssignedTo = nil
	} else {
		ticket.AssignedTo = &domain.UserRef{ID: *assigneeID}
	}
	f.assignWrites++
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) List(_ context.Context, scope repository.TicketScope) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range f.tickets {
		if scope.RaisedBy != nil && (t.RaisedBy == nil || t.RaisedBy.ID != *scope.RaisedBy) {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTicketRepo) ListOpenAssignedBefore(_ context.Context, _ time.Time) ([]domain.Ticket, error) {
	return f.staleTickets, nil
}

func (f *fakeTicketRepo) SetCommentHidden(_ context.Context, ticketID, commentID string, hidden bool, reason string) error {
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	for i := range ticket.Comments {
		if ticket.Comments[i].ID == commentID {
			ticket.Comments[i].Hidden = hidden
			ticket.Comments[i].HiddenReason = reason
			f.hiddenWrites++
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeTicketRepo) FirstCommentID(_ context.Context, ticketID string) (string, error) {
	ticket, ok := f.tickets[ticketID]
	if !ok || len(ticket.Comments) == 0 {
		return "", pgx.ErrNoRows
	}
	return ticket.Comments[0].ID, nil
}

func (f *fakeTicketRepo) AddReply(_ context.Context, reply *domain.Reply) error {
	reply.ID = "reply-1"
	f.replies = append(f.replies, *reply)
	return nil
}

func (f *fakeTicketRepo) AddAttachment(_ context.Context, att *domain.Attachment) error {
	att.ID = "att-1"
	return nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = "u-" + user.Username
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, _ *domain.User) error { return nil }

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.Role == role && u.Status == domain.UserStatusActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeHistoryRepo struct {
	entries []domain.TicketHistory
}

func (f *fakeHistoryRepo) Create(_ context.Context, entry *domain.TicketHistory) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) ListByTicket(_ context.Context, _ string, _, _ int) ([]domain.TicketHistory, error) {
	return f.entries, nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}

func manager() *domain.User {
	return &domain.User{ID: "u-mgr", Role: domain.RoleManager, Status: domain.UserStatusActive}
}

func openTicket(id, raisedBy string) *domain.Ticket {
	return &domain.Ticket{
		ID:       id,
		Status:   domain.TicketStatusOpen,
		RaisedBy: &domain.UserRef{ID: raisedBy},
	}
}

func newService(tickets *fakeTicketRepo, users *fakeUserRepo, history *fakeHistoryRepo, dispatcher *recordingDispatcher) *TicketService {
	if users == nil {
		users = &fakeUserRepo{users: map[string]*domain.User{}}
	}
	return NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		UserRepo:    users,
		HistoryRepo: history,
		Dispatcher:  dispatcher,
	})
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var derr *apperrors.DomainError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return derr.Code
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	tickets := newFakeTicketRepo(openTicket("t1", "u-client"))
	history := &fakeHistoryRepo{}
	dispatcher := &recordingDispatcher{}
	svc := newService(tickets, nil, history, dispatcher)

	got, err := svc.UpdateStatus(context.Background(), manager(), "t1", domain.TicketStatusOpen)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != domain.TicketStatusOpen {
		t.Fatalf("status changed: %q", got.Status)
	}
	if tickets.statusWrites != 0 {
		t.Fatalf("same-status update must not write, got %d writes", tickets.statusWrites)
	}
	if len(history.entries) != 0 {
		t.Fatalf("same-status update must not record history, got %d", len(history.entries))
	}
	if len(dispatcher.published) != 0 {
		t.Fatalf("same-status update must not publish events, got %d", len(dispatcher.published))
	}
}

func TestUpdateStatusWritesHistoryAndEvent(t *testing.T) {
	tickets := newFakeTicketRepo(openTicket("t1", "u-client"))
	history := &fakeHistoryRepo{}
	dispatcher := &recordingDispatcher{}
	svc := newService(tickets, nil, history, dispatcher)

	got, err := svc.UpdateStatus(context.Background(), manager(), "t1", domain.TicketStatusResolved)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != domain.TicketStatusResolved {
		t.Fatalf("expected Resolved, got %q", got.Status)
	}
	if tickets.statusWrites != 1 {
		t.Fatalf("expected one write, got %d", tickets.statusWrites)
	}
	if len(history.entries) != 1 || history.entries[0].ChangeType != domain.ChangeTypeStatus {
		t.Fatalf("history not recorded: %+v", history.entries)
	}
	if len(dispatcher.published) != 1 {
		t.Fatalf("expected one event, got %d", len(dispatcher.published))
	}
	payload, ok := dispatcher.published[0].Payload.(events.TicketStatusChangedPayload)
	if !ok || payload.RaisedByID != "u-client" || payload.NewStatus != domain.TicketStatusResolved {
		t.Fatalf("bad payload: %+v", dispatcher.published[0].Payload)
	}
}

func TestUpdateStatusRoleGating(t *testing.T) {
	assignedTicket := openTicket("t1", "u-client")
	assignedTicket.AssignedTo = &domain.UserRef{ID: "u-it"}

	cases := []struct {
		name    string
		user    *domain.User
		wantErr bool
	}{
		{"client cannot transition", &domain.User{ID: "u-client", Role: domain.RoleClient}, true},
		{"service desk can", &domain.User{ID: "u-sd", Role: domain.RoleServiceDesk}, false},
		{"reviewer can", &domain.User{ID: "u-rev", Role: domain.RoleReviewer}, false},
		{"manager can", &domain.User{ID: "u-mgr", Role: domain.RoleManager}, false},
		{"assigned it support can", &domain.User{ID: "u-it", Role: domain.RoleITSupport}, false},
		{"unassigned it support cannot", &domain.User{ID: "u-other", Role: domain.RoleITSupport}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fresh := *assignedTicket
			tickets := newFakeTicketRepo(&fresh)
			svc := newService(tickets, nil, &fakeHistoryRepo{}, &recordingDispatcher{})

			_, err := svc.UpdateStatus(context.Background(), tc.user, "t1", domain.TicketStatusInProgress)
			if tc.wantErr {
				if code := domainCode(t, err); code != "FORBIDDEN" {
					t.Fatalf("expected FORBIDDEN, got %s", code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateTicketValidatesDraft(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newService(tickets, nil, &fakeHistoryRepo{}, &recordingDispatcher{})

	draft := domain.TicketDraft{Subject: "just a subject"}
	_, err := svc.CreateTicket(context.Background(), &domain.User{ID: "u1", Role: domain.RoleClient}, draft, nil)
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", code)
	}
	if len(tickets.tickets) != 0 {
		t.Fatal("invalid draft must not persist a ticket")
	}
}

func TestCreateTicketSetsRaiserAndDefaults(t *testing.T) {
	tickets := newFakeTicketRepo()
	dispatcher := &recordingDispatcher{}
	svc := newService(tickets, nil, &fakeHistoryRepo{}, dispatcher)

	draft := domain.TicketDraft{
		Location:    "Floor 3",
		IssueType:   domain.IssueTypeNetwork,
		Subject:     "wifi drops",
		Description: "drops every few minutes near the east wing",
		Urgency:     domain.UrgencyMedium,
	}
	user := &domain.User{ID: "u1", Username: "mina", Role: domain.RoleClient}
	ticket, err := svc.CreateTicket(context.Background(), user, draft, []AttachmentInput{{Filename: "trace.pcap", Size: 1024, MimeType: "application/octet-stream"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("new ticket must start Open, got %q", ticket.Status)
	}
	if ticket.RaisedBy == nil || ticket.RaisedBy.ID != "u1" {
		t.Fatalf("raisedBy not set: %+v", ticket.RaisedBy)
	}
	if len(ticket.Attachments) != 1 || ticket.Attachments[0].Filename != "trace.pcap" {
		t.Fatalf("attachment not recorded: %+v", ticket.Attachments)
	}
	if len(dispatcher.published) != 1 || dispatcher.published[0].Type != events.EventTicketCreated {
		t.Fatalf("create event missing: %+v", dispatcher.published)
	}
}

func TestListTicketsScopesClientsToOwn(t *testing.T) {
	tickets := newFakeTicketRepo(
		openTicket("t1", "u1"),
		openTicket("t2", "u2"),
	)
	svc := newService(tickets, nil, &fakeHistoryRepo{}, &recordingDispatcher{})

	own, err := svc.ListTickets(context.Background(), &domain.User{ID: "u1", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(own) != 1 || own[0].ID != "t1" {
		t.Fatalf("client should only see own tickets, got %+v", own)
	}

	all, err := svc.ListTickets(context.Background(), &domain.User{ID: "u-sd", Role: domain.RoleServiceDesk})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("staff should see everything, got %d", len(all))
	}
}

func TestGetTicketEnforcesClientOwnership(t *testing.T) {
	tickets := newFakeTicketRepo(openTicket("t1", "u1"))
	svc := newService(tickets, nil, &fakeHistoryRepo{}, &recordingDispatcher{})

	_, err := svc.GetTicket(context.Background(), &domain.User{ID: "u2", Role: domain.RoleClient}, "t1")
	if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN, got %s", code)
	}

	if _, err := svc.GetTicket(context.Background(), &domain.User{ID: "u1", Role: domain.RoleClient}, "t1"); err != nil {
		t.Fatalf("owner read: %v", err)
	}
}

func TestHideCommentRequiresReason(t *testing.T) {
	ticket := openTicket("t1", "u1")
	ticket.Comments = []domain.Comment{{ID: "c1", Content: "rude"}}
	tickets := newFakeTicketRepo(ticket)
	svc := newService(tickets, nil, &fakeHistoryRepo{}, &recordingDispatcher{})
	reviewer := &domain.User{ID: "u-rev", Role: domain.RoleReviewer}

	_, err := svc.HideComment(context.Background(), reviewer, "t1", "c1", "  ")
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", code)
	}
	if tickets.hiddenWrites != 0 {
		t.Fatal("hide without reason must not write")
	}

	got, err := svc.HideComment(context.Background(), reviewer, "t1", "c1", "abusive language")
	if err != nil {
		t.Fatalf("hide: %v", err)
	}
	if !got.Comments[0].Hidden || got.Comments[0].HiddenReason != "abusive language" {
		t.Fatalf("comment not hidden with reason: %+v", got.Comments[0])
	}
}

func TestModerationRoleGate(t *testing.T) {
	ticket := openTicket("t1", "u1")
	ticket.Comments = []domain.Comment{{ID: "c1"}}
	svc := newService(newFakeTicketRepo(ticket), nil, &fakeHistoryRepo{}, &recordingDispatcher{})

	for _, role := range []domain.Role{domain.RoleClient, domain.RoleServiceDesk, domain.RoleITSupport} {
		_, err := svc.HideComment(context.Background(), &domain.User{ID: "x", Role: role}, "t1", "c1", "spam")
		if code := domainCode(t, err); code != "FORBIDDEN" {
			t.Fatalf("role %s: expected FORBIDDEN, got %s", role, code)
		}
	}
}

func TestAssignTicketValidatesAssignee(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"u-it":       {ID: "u-it", Role: domain.RoleITSupport, Status: domain.UserStatusActive},
		"u-inactive": {ID: "u-inactive", Role: domain.RoleITSupport, Status: domain.UserStatusPending},
		"u-client":   {ID: "u-client", Role: domain.RoleClient, Status: domain.UserStatusActive},
	}}
	tickets := newFakeTicketRepo(openTicket("t1", "u1"))
	svc := newService(tickets, users, &fakeHistoryRepo{}, &recordingDispatcher{})
	actor := &domain.User{ID: "u-sd", Role: domain.RoleServiceDesk}

	id := "u-client"
	_, err := svc.AssignTicket(context.Background(), actor, "t1", &id)
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("non-IT assignee: expected VALIDATION_FAILED, got %s", code)
	}

	id = "u-inactive"
	_, err = svc.AssignTicket(context.Background(), actor, "t1", &id)
	if code := domainCode(t, err); code != "CONFLICT" {
		t.Fatalf("inactive assignee: expected CONFLICT, got %s", code)
	}

	id = "u-it"
	got, err := svc.AssignTicket(context.Background(), actor, "t1", &id)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got.AssignedTo == nil || got.AssignedTo.ID != "u-it" {
		t.Fatalf("assignment not applied: %+v", got.AssignedTo)
	}
}

func TestInterveneRepliesOnFirstComment(t *testing.T) {
	ticket := openTicket("t1", "u1")
	ticket.Comments = []domain.Comment{{ID: "c-first"}, {ID: "c-second"}}
	tickets := newFakeTicketRepo(ticket)
	dispatcher := &recordingDispatcher{}
	svc := newService(tickets, nil, &fakeHistoryRepo{}, dispatcher)

	if _, err := svc.Intervene(context.Background(), manager(), "t1", "escalating this now"); err != nil {
		t.Fatalf("intervene: %v", err)
	}
	if len(tickets.replies) != 1 || tickets.replies[0].CommentID != "c-first" {
		t.Fatalf("reply should land on the first comment, got %+v", tickets.replies)
	}

	_, err := svc.Intervene(context.Background(), &domain.User{ID: "u-rev", Role: domain.RoleReviewer}, "t1", "me too")
	if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Fatalf("only managers intervene, got %s", code)
	}
}

func TestAutoProgressAdvancesStaleTickets(t *testing.T) {
	stale := openTicket("t1", "u1")
	stale.AssignedTo = &domain.UserRef{ID: "u-it"}
	tickets := newFakeTicketRepo(stale)
	tickets.staleTickets = []domain.Ticket{*stale}
	history := &fakeHistoryRepo{}
	dispatcher := &recordingDispatcher{}
	svc := newService(tickets, nil, history, dispatcher)

	advanced, err := svc.AutoProgressOpenTickets(context.Background(), 5*time.Minute)
	if err != nil {
		t.Fatalf("auto progress: %v", err)
	}
	if advanced != 1 {
		t.Fatalf("expected 1 advanced, got %d", advanced)
	}
	if !tickets.lastAutomated {
		t.Fatal("auto transition must be flagged automated")
	}
	if tickets.tickets["t1"].Status != domain.TicketStatusInProgress {
		t.Fatalf("ticket not moved, got %q", tickets.tickets["t1"].Status)
	}
	payload, ok := dispatcher.published[0].Payload.(events.TicketStatusChangedPayload)
	if !ok || !payload.Automated {
		t.Fatalf("event should carry the automated flag: %+v", dispatcher.published[0].Payload)
	}
}
