package service

import (
	"context"
	"testing"

	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
	"github.com/louisbranch/flagfall.space/internal/room"
)

func TestCreateTeamAdminPath(t *testing.T) {
	svc, store := newTestService(t)
	seedOpenRoom(store, "room-1", map[string]room.Role{
		"admin":  room.RoleAdmin,
		"player": room.RolePlayer,
	})

	created, err := svc.CreateTeam(context.Background(), "room-1", "admin", "alpha")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if created.RoomID != "room-1" || created.Name != "alpha" {
		t.Errorf("team = %+v", created)
	}

	_, err = svc.CreateTeam(context.Background(), "room-1", "admin", "alpha")
	wantCode(t, err, apperrors.CodeTeamNameTaken)

	_, err = svc.CreateTeam(context.Background(), "room-1", "player", "beta")
	wantCode(t, err, apperrors.CodeTeamNotAdmin)

	_, err = svc.CreateTeam(context.Background(), "room-1", "mallory", "gamma")
	wantCode(t, err, apperrors.CodeRoomNotFound)
}

func TestPlayAsSolo(t *testing.T) {
	svc, store := newTestService(t)
	r := seedOpenRoom(store, "room-1", map[string]room.Role{
		"admin":  room.RoleAdmin,
		"player": room.RolePlayer,
	})
	r.AllowPlayerCreatedTeams = true
	store.rooms["room-1"] = r

	created, err := svc.PlayAsSolo(context.Background(), "room-1", "player", "lone wolf")
	if err != nil {
		t.Fatalf("play as solo: %v", err)
	}

	m, err := store.GetTeamMembership(context.Background(), "room-1", "player")
	if err != nil {
		t.Fatalf("get team membership: %v", err)
	}
	if m.TeamID != created.ID {
		t.Errorf("membership team = %q, want %q", m.TeamID, created.ID)
	}

	// One team per user per room.
	_, err = svc.PlayAsSolo(context.Background(), "room-1", "player", "second")
	wantCode(t, err, apperrors.CodeTeamAlreadyHasTeam)

	// Staff cannot play solo.
	_, err = svc.PlayAsSolo(context.Background(), "room-1", "admin", "staff team")
	wantCode(t, err, apperrors.CodeTeamCandidateNotPlayer)
}

func TestPlayAsSoloDisallowedByRoom(t *testing.T) {
	svc, store := newTestService(t)
	seedOpenRoom(store, "room-1", map[string]room.Role{"player": room.RolePlayer})

	_, err := svc.PlayAsSolo(context.Background(), "room-1", "player", "lone wolf")
	wantCode(t, err, apperrors.CodeRoomPlayerTeamsNotAllowed)
}

func TestAddTeamMemberRules(t *testing.T) {
	svc, store := newTestService(t)
	seedOpenRoom(store, "room-1", map[string]room.Role{
		"admin":    room.RoleAdmin,
		"editor":   room.RoleEditor,
		"player-1": room.RolePlayer,
		"player-2": room.RolePlayer,
	})
	tm, err := svc.CreateTeam(context.Background(), "room-1", "admin", "alpha")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	if err := svc.AddTeamMember(context.Background(), tm.ID, "admin", "player-1"); err != nil {
		t.Fatalf("add member: %v", err)
	}

	// Candidate must be a room member.
	err = svc.AddTeamMember(context.Background(), tm.ID, "admin", "ghost")
	wantCode(t, err, apperrors.CodeTeamCandidateNotMember)

	// Candidate must be exactly a player.
	err = svc.AddTeamMember(context.Background(), tm.ID, "admin", "editor")
	wantCode(t, err, apperrors.CodeTeamCandidateNotPlayer)

	// One team per user, regardless of target team.
	other, err := svc.CreateTeam(context.Background(), "room-1", "admin", "beta")
	if err != nil {
		t.Fatalf("create second team: %v", err)
	}
	err = svc.AddTeamMember(context.Background(), other.ID, "admin", "player-1")
	wantCode(t, err, apperrors.CodeTeamAlreadyHasTeam)

	// Adder must hold admin; non-members get the hidden variant.
	err = svc.AddTeamMember(context.Background(), tm.ID, "player-2", "player-2")
	wantCode(t, err, apperrors.CodeTeamNotAdmin)
	err = svc.AddTeamMember(context.Background(), tm.ID, "mallory", "player-2")
	wantCode(t, err, apperrors.CodeTeamNotFound)

	// Missing team.
	err = svc.AddTeamMember(context.Background(), "ghost-team", "admin", "player-2")
	wantCode(t, err, apperrors.CodeTeamNotFound)
}

func TestRemoveTeamMemberCascade(t *testing.T) {
	svc, store := newTestService(t)
	seedOpenRoom(store, "room-1", map[string]room.Role{
		"admin":    room.RoleAdmin,
		"player-1": room.RolePlayer,
		"player-2": room.RolePlayer,
	})
	tm, err := svc.CreateTeam(context.Background(), "room-1", "admin", "alpha")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	for _, p := range []string{"player-1", "player-2"} {
		if err := svc.AddTeamMember(context.Background(), tm.ID, "admin", p); err != nil {
			t.Fatalf("add %s: %v", p, err)
		}
	}

	_, err = svc.RemoveTeamMember(context.Background(), tm.ID, "admin", "admin")
	wantCode(t, err, apperrors.CodeMemberRemoveSelf)

	deleted, err := svc.RemoveTeamMember(context.Background(), tm.ID, "admin", "player-1")
	if err != nil {
		t.Fatalf("remove player-1: %v", err)
	}
	if deleted {
		t.Fatal("team deleted with a member remaining")
	}

	deleted, err = svc.RemoveTeamMember(context.Background(), tm.ID, "admin", "player-2")
	if err != nil {
		t.Fatalf("remove player-2: %v", err)
	}
	if !deleted {
		t.Fatal("expected emptied team to be deleted")
	}

	_, err = svc.RemoveTeamMember(context.Background(), tm.ID, "admin", "player-2")
	wantCode(t, err, apperrors.CodeTeamNotFound)
}

func TestRemoveTeamMemberNotInTeam(t *testing.T) {
	svc, store := newTestService(t)
	seedOpenRoom(store, "room-1", map[string]room.Role{
		"admin":  room.RoleAdmin,
		"player": room.RolePlayer,
	})
	tm, err := svc.CreateTeam(context.Background(), "room-1", "admin", "alpha")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	_, err = svc.RemoveTeamMember(context.Background(), tm.ID, "admin", "player")
	wantCode(t, err, apperrors.CodeTeamUserNotInTeam)
}

func TestDeleteTeam(t *testing.T) {
	svc, store := newTestService(t)
	seedOpenRoom(store, "room-1", map[string]room.Role{
		"admin":  room.RoleAdmin,
		"player": room.RolePlayer,
	})
	tm, err := svc.CreateTeam(context.Background(), "room-1", "admin", "alpha")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if err := svc.AddTeamMember(context.Background(), tm.ID, "admin", "player"); err != nil {
		t.Fatalf("add member: %v", err)
	}

	err = svc.DeleteTeam(context.Background(), tm.ID, "player")
	wantCode(t, err, apperrors.CodeTeamNotAdmin)

	if err := svc.DeleteTeam(context.Background(), tm.ID, "admin"); err != nil {
		t.Fatalf("delete team: %v", err)
	}

	// Memberships cascade.
	if _, err := store.GetTeamMembership(context.Background(), "room-1", "player"); err == nil {
		t.Error("expected team membership to cascade on delete")
	}

	err = svc.DeleteTeam(context.Background(), tm.ID, "admin")
	wantCode(t, err, apperrors.CodeTeamNotFound)
}

func TestListTeamsAndMembers(t *testing.T) {
	svc, store := newTestService(t)
	seedOpenRoom(store, "room-1", map[string]room.Role{
		"admin":  room.RoleAdmin,
		"player": room.RolePlayer,
	})
	tm, err := svc.CreateTeam(context.Background(), "room-1", "admin", "alpha")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if err := svc.AddTeamMember(context.Background(), tm.ID, "admin", "player"); err != nil {
		t.Fatalf("add member: %v", err)
	}

	teams, err := svc.ListTeams(context.Background(), "room-1", "player", 0, "")
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(teams.Teams) != 1 || teams.Teams[0].ID != tm.ID {
		t.Fatalf("teams = %+v", teams.Teams)
	}

	members, err := svc.ListTeamMembers(context.Background(), tm.ID, "player", 0, "")
	if err != nil {
		t.Fatalf("list team members: %v", err)
	}
	if len(members.Members) != 1 || members.Members[0].UserID != "player" {
		t.Fatalf("team members = %+v", members.Members)
	}

	_, err = svc.ListTeams(context.Background(), "room-1", "mallory", 0, "")
	wantCode(t, err, apperrors.CodeRoomNotFound)
	_, err = svc.ListTeamMembers(context.Background(), tm.ID, "mallory", 0, "")
	wantCode(t, err, apperrors.CodeTeamNotFound)
}
