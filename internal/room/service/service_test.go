package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/flagfall.space/internal/challenge"
	"github.com/louisbranch/flagfall.space/internal/challenge/filter"
	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
	"github.com/louisbranch/flagfall.space/internal/room"
	"github.com/louisbranch/flagfall.space/internal/storage"
	"github.com/louisbranch/flagfall.space/internal/team"
)

var fixedTime = time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)

// fakeStore is an in-memory storage.Store honoring the same uniqueness
// and transactional semantics as the SQLite implementation.
type fakeStore struct {
	users       map[string]storage.User
	rooms       map[string]room.Room
	members     map[string]room.Member     // roomID/userID
	invitations map[string]room.Invitation // roomID/inviteeID
	teams       map[string]team.Team
	teamMembers map[string]team.Member // roomID/userID
	challenges  map[string]challenge.Challenge
	solves      map[string]storage.Solve // challengeID/teamID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[string]storage.User{},
		rooms:       map[string]room.Room{},
		members:     map[string]room.Member{},
		invitations: map[string]room.Invitation{},
		teams:       map[string]team.Team{},
		teamMembers: map[string]team.Member{},
		challenges:  map[string]challenge.Challenge{},
		solves:      map[string]storage.Solve{},
	}
}

func key(parts ...string) string { return strings.Join(parts, "/") }

func (f *fakeStore) CreateRoom(ctx context.Context, r room.Room, owner room.Member) error {
	for _, existing := range f.rooms {
		if existing.CreatorID == r.CreatorID && existing.Name == r.Name {
			return storage.ErrAlreadyExists
		}
	}
	f.rooms[r.ID] = r
	f.members[key(owner.RoomID, owner.UserID)] = owner
	return nil
}

func (f *fakeStore) GetRoom(ctx context.Context, id string) (room.Room, error) {
	r, ok := f.rooms[id]
	if !ok {
		return room.Room{}, storage.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) ListRooms(ctx context.Context, pageSize int, pageToken string) (storage.RoomPage, error) {
	page := storage.RoomPage{}
	for _, r := range f.rooms {
		page.Rooms = append(page.Rooms, r)
	}
	sort.Slice(page.Rooms, func(i, j int) bool { return page.Rooms[i].ID < page.Rooms[j].ID })
	return page, nil
}

func (f *fakeStore) GetMember(ctx context.Context, roomID, userID string) (room.Member, error) {
	m, ok := f.members[key(roomID, userID)]
	if !ok {
		return room.Member{}, storage.ErrNotFound
	}
	return m, nil
}

func (f *fakeStore) DeleteMember(ctx context.Context, roomID, userID string) error {
	k := key(roomID, userID)
	if _, ok := f.members[k]; !ok {
		return storage.ErrNotFound
	}
	delete(f.members, k)
	return nil
}

func (f *fakeStore) ListMembers(ctx context.Context, roomID string, pageSize int, pageToken string) (storage.MemberPage, error) {
	page := storage.MemberPage{}
	for _, m := range f.members {
		if m.RoomID == roomID {
			page.Members = append(page.Members, m)
		}
	}
	sort.Slice(page.Members, func(i, j int) bool { return page.Members[i].UserID < page.Members[j].UserID })
	return page, nil
}

func (f *fakeStore) CreateInvitation(ctx context.Context, inv room.Invitation) error {
	k := key(inv.RoomID, inv.InviteeID)
	if _, ok := f.invitations[k]; ok {
		return storage.ErrAlreadyExists
	}
	f.invitations[k] = inv
	return nil
}

func (f *fakeStore) GetInvitation(ctx context.Context, roomID, inviteeID string) (room.Invitation, error) {
	inv, ok := f.invitations[key(roomID, inviteeID)]
	if !ok {
		return room.Invitation{}, storage.ErrNotFound
	}
	return inv, nil
}

func (f *fakeStore) DeleteInvitation(ctx context.Context, roomID, inviteeID string) error {
	k := key(roomID, inviteeID)
	if _, ok := f.invitations[k]; !ok {
		return storage.ErrNotFound
	}
	delete(f.invitations, k)
	return nil
}

func (f *fakeStore) AcceptInvitation(ctx context.Context, m room.Member) error {
	invKey := key(m.RoomID, m.UserID)
	if _, ok := f.invitations[invKey]; !ok {
		return storage.ErrNotFound
	}
	if _, ok := f.members[invKey]; ok {
		return storage.ErrAlreadyExists
	}
	delete(f.invitations, invKey)
	f.members[invKey] = m
	return nil
}

func (f *fakeStore) ListReceivedInvitations(ctx context.Context, inviteeID string, pageSize int, pageToken string) (storage.InvitationPage, error) {
	page := storage.InvitationPage{}
	for _, inv := range f.invitations {
		if inv.InviteeID == inviteeID {
			page.Invitations = append(page.Invitations, inv)
		}
	}
	sort.Slice(page.Invitations, func(i, j int) bool { return page.Invitations[i].RoomID < page.Invitations[j].RoomID })
	return page, nil
}

func (f *fakeStore) CreateTeam(ctx context.Context, t team.Team, firstMember *team.Member) error {
	for _, existing := range f.teams {
		if existing.RoomID == t.RoomID && existing.Name == t.Name {
			return storage.ErrAlreadyExists
		}
	}
	if firstMember != nil {
		if _, ok := f.teamMembers[key(firstMember.RoomID, firstMember.UserID)]; ok {
			return storage.ErrAlreadyExists
		}
	}
	f.teams[t.ID] = t
	if firstMember != nil {
		f.teamMembers[key(firstMember.RoomID, firstMember.UserID)] = *firstMember
	}
	return nil
}

func (f *fakeStore) GetTeam(ctx context.Context, id string) (team.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return team.Team{}, storage.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) DeleteTeam(ctx context.Context, id string) error {
	if _, ok := f.teams[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.teams, id)
	for k, m := range f.teamMembers {
		if m.TeamID == id {
			delete(f.teamMembers, k)
		}
	}
	for k, s := range f.solves {
		if s.TeamID == id {
			delete(f.solves, k)
		}
	}
	return nil
}

func (f *fakeStore) ListTeams(ctx context.Context, roomID string, pageSize int, pageToken string) (storage.TeamPage, error) {
	page := storage.TeamPage{}
	for _, t := range f.teams {
		if t.RoomID == roomID {
			page.Teams = append(page.Teams, t)
		}
	}
	sort.Slice(page.Teams, func(i, j int) bool { return page.Teams[i].ID < page.Teams[j].ID })
	return page, nil
}

func (f *fakeStore) AddTeamMember(ctx context.Context, m team.Member) error {
	k := key(m.RoomID, m.UserID)
	if _, ok := f.teamMembers[k]; ok {
		return storage.ErrAlreadyExists
	}
	f.teamMembers[k] = m
	return nil
}

func (f *fakeStore) RemoveTeamMember(ctx context.Context, teamID, userID string) (bool, error) {
	var memberKey string
	for k, m := range f.teamMembers {
		if m.TeamID == teamID && m.UserID == userID {
			memberKey = k
			break
		}
	}
	if memberKey == "" {
		return false, storage.ErrNotFound
	}
	delete(f.teamMembers, memberKey)
	for _, m := range f.teamMembers {
		if m.TeamID == teamID {
			return false, nil
		}
	}
	delete(f.teams, teamID)
	return true, nil
}

func (f *fakeStore) GetTeamMembership(ctx context.Context, roomID, userID string) (team.Member, error) {
	m, ok := f.teamMembers[key(roomID, userID)]
	if !ok {
		return team.Member{}, storage.ErrNotFound
	}
	return m, nil
}

func (f *fakeStore) ListTeamMembers(ctx context.Context, teamID string, pageSize int, pageToken string) (storage.TeamMemberPage, error) {
	page := storage.TeamMemberPage{}
	for _, m := range f.teamMembers {
		if m.TeamID == teamID {
			page.Members = append(page.Members, m)
		}
	}
	sort.Slice(page.Members, func(i, j int) bool { return page.Members[i].UserID < page.Members[j].UserID })
	return page, nil
}

func (f *fakeStore) CreateChallenge(ctx context.Context, c challenge.Challenge) error {
	for _, existing := range f.challenges {
		if existing.RoomID == c.RoomID && existing.Name == c.Name {
			return storage.ErrAlreadyExists
		}
	}
	f.challenges[c.ID] = c
	return nil
}

func (f *fakeStore) GetChallenge(ctx context.Context, id string) (challenge.Challenge, error) {
	c, ok := f.challenges[id]
	if !ok {
		return challenge.Challenge{}, storage.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) UpdateChallenge(ctx context.Context, c challenge.Challenge) error {
	if _, ok := f.challenges[c.ID]; !ok {
		return storage.ErrNotFound
	}
	for _, existing := range f.challenges {
		if existing.ID != c.ID && existing.RoomID == c.RoomID && existing.Name == c.Name {
			return storage.ErrAlreadyExists
		}
	}
	f.challenges[c.ID] = c
	return nil
}

func (f *fakeStore) DeleteChallenge(ctx context.Context, id string) error {
	if _, ok := f.challenges[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.challenges, id)
	return nil
}

func (f *fakeStore) ListChallenges(ctx context.Context, roomID string, cond filter.SQLCondition, pageSize int, pageToken string) (storage.ChallengePage, error) {
	page := storage.ChallengePage{Challenges: []challenge.Challenge{}}
	for _, c := range f.challenges {
		if c.RoomID == roomID {
			page.Challenges = append(page.Challenges, c)
		}
	}
	sort.Slice(page.Challenges, func(i, j int) bool { return page.Challenges[i].ID < page.Challenges[j].ID })
	return page, nil
}

func (f *fakeStore) CreateSolve(ctx context.Context, s storage.Solve) error {
	k := key(s.ChallengeID, s.TeamID)
	if _, ok := f.solves[k]; ok {
		return storage.ErrAlreadyExists
	}
	f.solves[k] = s
	return nil
}

func (f *fakeStore) SolveExists(ctx context.Context, challengeID, teamID string) (bool, error) {
	_, ok := f.solves[key(challengeID, teamID)]
	return ok, nil
}

func (f *fakeStore) ListTeamSolves(ctx context.Context, teamID string, pageSize int, pageToken string) (storage.SolvePage, error) {
	page := storage.SolvePage{}
	for _, s := range f.solves {
		if s.TeamID == teamID {
			page.Solves = append(page.Solves, s)
		}
	}
	sort.Slice(page.Solves, func(i, j int) bool { return page.Solves[i].ChallengeID < page.Solves[j].ChallengeID })
	return page, nil
}

func (f *fakeStore) PutUser(ctx context.Context, u storage.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeStore) UserExists(ctx context.Context, id string) (bool, error) {
	_, ok := f.users[id]
	return ok, nil
}

var _ storage.Store = (*fakeStore)(nil)

// newTestService returns a Service over a fresh fake store with a fixed
// clock and sequential ids, plus the store for direct seeding.
func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	nextID := 0
	svc := &Service{
		store: store,
		clock: func() time.Time { return fixedTime },
		idGenerator: func() (string, error) {
			nextID++
			return fmt.Sprintf("id-%04d", nextID), nil
		},
	}
	return svc, store
}

func seedUser(store *fakeStore, userID string) {
	store.users[userID] = storage.User{ID: userID, Username: userID, CreatedAt: fixedTime}
}

// seedOpenRoom creates a room with an open submission window and one
// membership per entry in roles.
func seedOpenRoom(store *fakeStore, roomID string, roles map[string]room.Role) room.Room {
	r := room.Room{
		ID:              roomID,
		Name:            "room " + roomID,
		CreatorID:       "creator",
		SubmissionStart: fixedTime.Add(-time.Hour),
		SubmissionEnd:   fixedTime.Add(time.Hour),
		CreatedAt:       fixedTime,
		UpdatedAt:       fixedTime,
	}
	store.rooms[roomID] = r
	for userID, role := range roles {
		store.members[key(roomID, userID)] = room.Member{
			RoomID:   roomID,
			UserID:   userID,
			Role:     role,
			JoinedAt: fixedTime,
		}
	}
	return r
}

func wantCode(t *testing.T, err error, code apperrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	if got := apperrors.GetCode(err); got != code {
		t.Fatalf("error code = %s, want %s (err: %v)", got, code, err)
	}
}
