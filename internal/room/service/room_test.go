package service

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
	"github.com/louisbranch/flagfall.space/internal/room"
)

func TestCreateRoomMakesCreatorOwner(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(store, "alice")

	r, err := svc.CreateRoom(context.Background(), room.CreateRoomInput{
		Name:            "  Spring CTF ",
		CreatorID:       "alice",
		SubmissionStart: fixedTime,
		SubmissionEnd:   fixedTime.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if r.Name != "Spring CTF" {
		t.Errorf("room name = %q, want trimmed", r.Name)
	}

	role, err := svc.GetRole(context.Background(), r.ID, "alice")
	if err != nil {
		t.Fatalf("get creator role: %v", err)
	}
	if role != room.RoleOwner {
		t.Errorf("creator role = %v, want RoleOwner", role)
	}
}

func TestCreateRoomUnknownCreator(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateRoom(context.Background(), room.CreateRoomInput{
		Name:      "Spring CTF",
		CreatorID: "ghost",
	})
	wantCode(t, err, apperrors.CodeUserNotFound)
}

func TestCreateRoomDuplicateName(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(store, "alice")

	input := room.CreateRoomInput{Name: "Spring CTF", CreatorID: "alice"}
	if _, err := svc.CreateRoom(context.Background(), input); err != nil {
		t.Fatalf("create room: %v", err)
	}
	_, err := svc.CreateRoom(context.Background(), input)
	wantCode(t, err, apperrors.CodeRoomNameTaken)
}

func TestCreateRoomInvalidWindow(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(store, "alice")

	_, err := svc.CreateRoom(context.Background(), room.CreateRoomInput{
		Name:            "Spring CTF",
		CreatorID:       "alice",
		SubmissionStart: fixedTime,
		SubmissionEnd:   fixedTime.Add(-time.Hour),
	})
	wantCode(t, err, apperrors.CodeRoomInvalidWindow)
}

func TestGetRoomHiddenFromNonMembers(t *testing.T) {
	svc, store := newTestService(t)
	seedOpenRoom(store, "room-1", map[string]room.Role{"alice": room.RoleOwner})

	if _, err := svc.GetRoom(context.Background(), "room-1", "alice"); err != nil {
		t.Fatalf("member get room: %v", err)
	}

	_, err := svc.GetRoom(context.Background(), "room-1", "mallory")
	wantCode(t, err, apperrors.CodeRoomNotFound)
}

func TestListRooms(t *testing.T) {
	svc, store := newTestService(t)
	seedOpenRoom(store, "room-1", nil)
	seedOpenRoom(store, "room-2", nil)

	page, err := svc.ListRooms(context.Background(), 0, "")
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(page.Rooms) != 2 {
		t.Errorf("room count = %d, want 2", len(page.Rooms))
	}
}
