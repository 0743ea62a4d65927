// Package storage defines persistence contracts for room competition state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/flagfall.space/internal/challenge"
	"github.com/louisbranch/flagfall.space/internal/challenge/filter"
	"github.com/louisbranch/flagfall.space/internal/room"
	"github.com/louisbranch/flagfall.space/internal/team"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates an insert hit a uniqueness constraint.
var ErrAlreadyExists = errors.New("record already exists")

// User stores one registered account. It carries only the fields the
// room engine needs; account lifecycle lives elsewhere.
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// Solve stores the immutable fact that a team solved a challenge.
type Solve struct {
	ChallengeID string
	TeamID      string
	RoomID      string
	SolvedBy    string
	SolvedAt    time.Time
}

// RoomPage stores a page of rooms.
type RoomPage struct {
	Rooms         []room.Room
	NextPageToken string
}

// MemberPage stores a page of room memberships.
type MemberPage struct {
	Members       []room.Member
	NextPageToken string
}

// InvitationPage stores a page of pending invitations.
type InvitationPage struct {
	Invitations   []room.Invitation
	NextPageToken string
}

// TeamPage stores a page of teams.
type TeamPage struct {
	Teams         []team.Team
	NextPageToken string
}

// TeamMemberPage stores a page of team memberships.
type TeamMemberPage struct {
	Members       []team.Member
	NextPageToken string
}

// ChallengePage stores a page of challenges.
type ChallengePage struct {
	Challenges    []challenge.Challenge
	NextPageToken string
}

// SolvePage stores a page of solves.
type SolvePage struct {
	Solves        []Solve
	NextPageToken string
}

// RoomStore persists rooms and their memberships.
type RoomStore interface {
	// CreateRoom inserts the room and its owner membership atomically.
	// Returns ErrAlreadyExists when the creator already has a room with
	// the same name.
	CreateRoom(ctx context.Context, r room.Room, owner room.Member) error
	GetRoom(ctx context.Context, id string) (room.Room, error)
	ListRooms(ctx context.Context, pageSize int, pageToken string) (RoomPage, error)

	GetMember(ctx context.Context, roomID, userID string) (room.Member, error)
	DeleteMember(ctx context.Context, roomID, userID string) error
	ListMembers(ctx context.Context, roomID string, pageSize int, pageToken string) (MemberPage, error)
}

// InvitationStore persists pending room invitations keyed by (room, invitee).
type InvitationStore interface {
	// CreateInvitation returns ErrAlreadyExists when an invitation for
	// the same (room, invitee) pair is already pending.
	CreateInvitation(ctx context.Context, inv room.Invitation) error
	GetInvitation(ctx context.Context, roomID, inviteeID string) (room.Invitation, error)
	DeleteInvitation(ctx context.Context, roomID, inviteeID string) error
	// AcceptInvitation atomically deletes the pending invitation for
	// (m.RoomID, m.UserID) and inserts the membership. Returns
	// ErrNotFound when no invitation was pending and ErrAlreadyExists
	// when the user is already a member.
	AcceptInvitation(ctx context.Context, m room.Member) error
	ListReceivedInvitations(ctx context.Context, inviteeID string, pageSize int, pageToken string) (InvitationPage, error)
}

// TeamStore persists teams and team memberships.
type TeamStore interface {
	// CreateTeam inserts the team and, when firstMember is non-nil, its
	// first membership in the same transaction. Returns ErrAlreadyExists
	// when the room already has a team with the same name or the first
	// member already holds a team in the room.
	CreateTeam(ctx context.Context, t team.Team, firstMember *team.Member) error
	GetTeam(ctx context.Context, id string) (team.Team, error)
	// DeleteTeam removes the team; memberships and solves cascade.
	DeleteTeam(ctx context.Context, id string) error
	ListTeams(ctx context.Context, roomID string, pageSize int, pageToken string) (TeamPage, error)

	// AddTeamMember returns ErrAlreadyExists when the user already holds
	// a team in the room.
	AddTeamMember(ctx context.Context, m team.Member) error
	// RemoveTeamMember deletes the membership and, when the team is left
	// empty, deletes the team in the same transaction. Reports whether
	// the team was deleted.
	RemoveTeamMember(ctx context.Context, teamID, userID string) (teamDeleted bool, err error)
	// GetTeamMembership resolves the team a user holds in a room.
	GetTeamMembership(ctx context.Context, roomID, userID string) (team.Member, error)
	ListTeamMembers(ctx context.Context, teamID string, pageSize int, pageToken string) (TeamMemberPage, error)
}

// ChallengeStore persists challenges with their flags and tags.
type ChallengeStore interface {
	// CreateChallenge returns ErrAlreadyExists when the room already has
	// a challenge with the same name.
	CreateChallenge(ctx context.Context, c challenge.Challenge) error
	GetChallenge(ctx context.Context, id string) (challenge.Challenge, error)
	UpdateChallenge(ctx context.Context, c challenge.Challenge) error
	DeleteChallenge(ctx context.Context, id string) error
	ListChallenges(ctx context.Context, roomID string, cond filter.SQLCondition, pageSize int, pageToken string) (ChallengePage, error)
}

// SolveStore persists the solve ledger keyed by (challenge, team).
type SolveStore interface {
	// CreateSolve returns ErrAlreadyExists when the team already solved
	// the challenge.
	CreateSolve(ctx context.Context, s Solve) error
	SolveExists(ctx context.Context, challengeID, teamID string) (bool, error)
	ListTeamSolves(ctx context.Context, teamID string, pageSize int, pageToken string) (SolvePage, error)
}

// UserStore persists registered accounts. Accounts are written by the
// identity sync path and only checked for existence by room operations.
type UserStore interface {
	PutUser(ctx context.Context, u User) error
	UserExists(ctx context.Context, id string) (bool, error)
}

// Store aggregates every persistence contract the rooms service needs.
type Store interface {
	RoomStore
	InvitationStore
	TeamStore
	ChallengeStore
	SolveStore
	UserStore
}
