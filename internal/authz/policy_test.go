package authz

import (
	"testing"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		role domain.Role
		want bool
	}{
		{domain.RoleManager, true},
		{domain.RoleReviewer, true},
		{domain.RoleServiceDesk, true},
		{domain.RoleClient, false},
		{domain.RoleITSupport, false},
		{domain.Role("Janitor"), false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.role); got != tc.want {
			t.Errorf("CanTransition(%q) = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestCanUpdateStatusITSupportScope(t *testing.T) {
	assigned := &domain.Ticket{AssignedTo: &domain.UserRef{ID: "u1"}}
	unassigned := &domain.Ticket{}

	if !CanUpdateStatus(domain.RoleITSupport, "u1", assigned) {
		t.Error("IT Support should update a ticket assigned to them")
	}
	if CanUpdateStatus(domain.RoleITSupport, "u2", assigned) {
		t.Error("IT Support must not update a ticket assigned to someone else")
	}
	if CanUpdateStatus(domain.RoleITSupport, "u1", unassigned) {
		t.Error("IT Support must not update an unassigned ticket")
	}
	if CanUpdateStatus(domain.RoleClient, "u1", assigned) {
		t.Error("Client has no status-write capability")
	}
	if !CanUpdateStatus(domain.RoleManager, "anyone", unassigned) {
		t.Error("Manager may update any ticket")
	}
}

func TestModerationAndIntervention(t *testing.T) {
	if !CanModerate(domain.RoleReviewer) || !CanModerate(domain.RoleManager) {
		t.Error("Reviewer and Manager should moderate comments")
	}
	if CanModerate(domain.RoleServiceDesk) || CanModerate(domain.RoleClient) {
		t.Error("moderation is reviewer/manager only")
	}
	if !CanIntervene(domain.RoleManager) {
		t.Error("Manager should intervene")
	}
	if CanIntervene(domain.RoleReviewer) {
		t.Error("intervention is manager only")
	}
}
