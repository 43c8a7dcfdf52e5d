package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/helpdesk-kit/helpdesk-service/internal/api/dto"
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

func wireTicket(id string, status domain.TicketStatus) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          id,
		Location:    "Building A",
		IssueType:   domain.IssueTypeSoftware,
		Subject:     "subject " + id,
		Description: "description " + id,
		Urgency:     domain.UrgencyHigh,
		Status:      status,
		CreatedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestCreateIncompleteDraftSkipsNetwork(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewTicketStore(New(srv.URL), nil)
	draft := domain.TicketDraft{
		IssueType:   domain.IssueTypeSoftware,
		Subject:     "screen flickers",
		Description: "external monitor flickers on dock",
		Urgency:     domain.UrgencyLow,
	}

	_, err := store.Create(context.Background(), draft)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0] != "location" {
		t.Fatalf("expected missing [location], got %v", verr.Fields)
	}
	if n := calls.Load(); n != 0 {
		t.Fatalf("expected no requests for invalid draft, server saw %d", n)
	}
	if state := store.State(OpCreate); state.Err == nil || state.Loading {
		t.Fatalf("create slot should hold the validation error, got %+v", state)
	}
}

func TestUpdateReconcilesLocalList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/ticket/get-ticket":
			writeJSON(t, w, dto.TicketListResponse{Tickets: []dto.TicketResponse{
				wireTicket("t1", domain.TicketStatusOpen),
				wireTicket("t2", domain.TicketStatusInProgress),
			}})
		case r.Method == http.MethodPut && r.URL.Path == "/ticket/update-ticket/t2":
			writeJSON(t, w, dto.TicketEnvelope{Ticket: wireTicket("t2", domain.TicketStatusResolved)})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	store := NewTicketStore(New(srv.URL), nil)
	ctx := context.Background()
	if err := store.FetchAll(ctx); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	status := domain.TicketStatusResolved
	if _, err := store.Update(ctx, "t2", dto.UpdateTicketRequest{Status: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}

	snapshot := store.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 tickets after reconcile, got %d", len(snapshot))
	}
	got, ok := store.Get("t2")
	if !ok || got.Status != domain.TicketStatusResolved {
		t.Fatalf("t2 not reconciled: ok=%v status=%q", ok, got.Status)
	}
	if other, _ := store.Get("t1"); other.Status != domain.TicketStatusOpen {
		t.Fatalf("t1 should be untouched, got %q", other.Status)
	}
}

func TestSameStatusChangeSkipsNetwork(t *testing.T) {
	var puts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			puts.Add(1)
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, dto.TicketListResponse{Tickets: []dto.TicketResponse{wireTicket("t1", domain.TicketStatusOpen)}})
		case http.MethodPut:
			writeJSON(t, w, dto.TicketEnvelope{Ticket: wireTicket("t1", domain.TicketStatusInProgress)})
		}
	}))
	defer srv.Close()

	store := NewTicketStore(New(srv.URL), nil)
	ctx := context.Background()
	if err := store.FetchAll(ctx); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	got, err := store.ChangeStatus(ctx, "t1", domain.TicketStatusOpen)
	if err != nil {
		t.Fatalf("same-status change: %v", err)
	}
	if got.Status != domain.TicketStatusOpen {
		t.Fatalf("ticket changed: %q", got.Status)
	}
	if n := puts.Load(); n != 0 {
		t.Fatalf("same-status change must not reach the network, server saw %d PUT(s)", n)
	}
	if state := store.State(OpUpdate); state.Err != nil || state.Loading {
		t.Fatalf("update slot should be settled and clean, got %+v", state)
	}

	// The same path through Update short-circuits too.
	status := domain.TicketStatusOpen
	if _, err := store.Update(ctx, "t1", dto.UpdateTicketRequest{Status: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if n := puts.Load(); n != 0 {
		t.Fatalf("status-only update to the held status must not reach the network, server saw %d PUT(s)", n)
	}

	// A real transition still goes through.
	if _, err := store.ChangeStatus(ctx, "t1", domain.TicketStatusInProgress); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if n := puts.Load(); n != 1 {
		t.Fatalf("expected exactly one PUT for the real transition, got %d", n)
	}
	if held, _ := store.Get("t1"); held.Status != domain.TicketStatusInProgress {
		t.Fatalf("transition not reconciled, got %q", held.Status)
	}
}

func TestUpdateUnknownTicketAppendsInsteadOfDropping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, dto.TicketEnvelope{Ticket: wireTicket("ghost", domain.TicketStatusClosed)})
	}))
	defer srv.Close()

	store := NewTicketStore(New(srv.URL), nil)
	status := domain.TicketStatusClosed
	if _, err := store.Update(context.Background(), "ghost", dto.UpdateTicketRequest{Status: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, ok := store.Get("ghost"); !ok {
		t.Fatal("confirmed ticket absent from the list was dropped")
	}
}

func TestOperationErrorsAreIsolated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(t, w, dto.TicketListResponse{Tickets: []dto.TicketResponse{wireTicket("t1", domain.TicketStatusOpen)}})
			return
		}
		w.WriteHeader(http.StatusForbidden)
		writeJSON(t, w, map[string]any{"error": map[string]string{
			"code":    "FORBIDDEN",
			"message": "role not allowed to change ticket status",
		}})
	}))
	defer srv.Close()

	store := NewTicketStore(New(srv.URL), nil)
	ctx := context.Background()
	if err := store.FetchAll(ctx); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	status := domain.TicketStatusClosed
	_, err := store.Update(ctx, "t1", dto.UpdateTicketRequest{Status: &status})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN APIError, got %v", err)
	}

	if state := store.State(OpFetch); state.Err != nil {
		t.Fatalf("fetch slot polluted by update failure: %v", state.Err)
	}
	if state := store.State(OpUpdate); !errors.As(state.Err, &apiErr) {
		t.Fatalf("update slot should hold the failure, got %+v", state)
	}
	if got, _ := store.Get("t1"); got.Status != domain.TicketStatusOpen {
		t.Fatalf("failed update must not mutate local state, got %q", got.Status)
	}
}

func TestHideCommentRequiresReason(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	store := NewTicketStore(New(srv.URL), nil)
	err := store.HideComment(context.Background(), "t1", "c1", "   ")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatal("hide without reason must not reach the server")
	}
}

func TestModerationBusyPerComment(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(t, w, dto.TicketEnvelope{Ticket: wireTicket("t1", domain.TicketStatusOpen)})
	}))
	defer srv.Close()

	store := NewTicketStore(New(srv.URL), nil)
	done := make(chan error, 1)
	go func() {
		done <- store.HideComment(context.Background(), "t1", "c1", "off topic")
	}()

	waitFor(t, func() bool { return store.Moderating("c1") })
	if store.Moderating("c2") {
		t.Fatal("busy token must be scoped to the comment in flight")
	}
	if err := store.HideComment(context.Background(), "t1", "c1", "dup"); err == nil {
		t.Fatal("second hide on a busy comment should be rejected")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("hide: %v", err)
	}
	if store.Moderating("c1") {
		t.Fatal("busy token should clear once the request finishes")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
