// Package room provides the room domain model: the room record itself,
// the ordered role hierarchy, memberships, invitations, and the pure
// policies that gate challenge visibility and flag submission.
package room

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
	"github.com/louisbranch/flagfall.space/internal/id"
)

const (
	// NameMaxLength bounds room names.
	NameMaxLength = 64
	// DescriptionMaxLength bounds room descriptions.
	DescriptionMaxLength = 2000
)

var (
	// ErrEmptyName indicates a missing room name.
	ErrEmptyName = apperrors.New(apperrors.CodeRoomNameEmpty, "room name is required")
	// ErrNameTooLong indicates a room name over the limit.
	ErrNameTooLong = apperrors.New(apperrors.CodeRoomNameTooLong, "room name exceeds the maximum length")
	// ErrDescriptionTooLong indicates a room description over the limit.
	ErrDescriptionTooLong = apperrors.New(apperrors.CodeRoomDescriptionTooLong, "room description exceeds the maximum length")
	// ErrInvalidWindow indicates a submission window that ends before it starts.
	ErrInvalidWindow = apperrors.New(apperrors.CodeRoomInvalidWindow, "submission window end precedes start")
)

// Room represents a competition instance containing challenges, teams,
// and members.
type Room struct {
	ID                                string
	Name                              string
	Description                       string
	CreatorID                         string
	AreChallengesHidden               bool
	IsSubmissionsForceDisabled        bool
	AllowPlayerCreatedTeams           bool
	AllowPlayersToViewOtherTeamSolves bool
	SubmissionStart                   time.Time
	SubmissionEnd                     time.Time
	CreatedAt                         time.Time
	UpdatedAt                         time.Time
}

// Member records one user's role inside one room. Exactly one record
// exists per (room, user).
type Member struct {
	RoomID   string
	UserID   string
	Role     Role
	JoinedAt time.Time
}

// SolveRequirements is the subset of room configuration consulted by the
// submission decision ladder.
type SolveRequirements struct {
	AreChallengesHidden        bool
	IsSubmissionsForceDisabled bool
	SubmissionStart            time.Time
	SubmissionEnd              time.Time
}

// CreateRoomInput describes the metadata needed to create a room.
type CreateRoomInput struct {
	Name                              string
	Description                       string
	CreatorID                         string
	AreChallengesHidden               bool
	IsSubmissionsForceDisabled        bool
	AllowPlayerCreatedTeams           bool
	AllowPlayersToViewOtherTeamSolves bool
	SubmissionStart                   time.Time
	SubmissionEnd                     time.Time
}

// CreateRoom creates a new room with a generated ID and timestamps. The
// caller is expected to persist the creator as the room's Owner in the
// same transaction.
func CreateRoom(input CreateRoomInput, now func() time.Time, idGenerator func() (string, error)) (Room, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateRoomInput(input)
	if err != nil {
		return Room{}, err
	}

	roomID, err := idGenerator()
	if err != nil {
		return Room{}, fmt.Errorf("generate room id: %w", err)
	}

	createdAt := now().UTC()
	return Room{
		ID:                                roomID,
		Name:                              normalized.Name,
		Description:                       normalized.Description,
		CreatorID:                         normalized.CreatorID,
		AreChallengesHidden:               normalized.AreChallengesHidden,
		IsSubmissionsForceDisabled:        normalized.IsSubmissionsForceDisabled,
		AllowPlayerCreatedTeams:           normalized.AllowPlayerCreatedTeams,
		AllowPlayersToViewOtherTeamSolves: normalized.AllowPlayersToViewOtherTeamSolves,
		SubmissionStart:                   normalized.SubmissionStart.UTC(),
		SubmissionEnd:                     normalized.SubmissionEnd.UTC(),
		CreatedAt:                         createdAt,
		UpdatedAt:                         createdAt,
	}, nil
}

// NormalizeCreateRoomInput trims and validates room input metadata.
func NormalizeCreateRoomInput(input CreateRoomInput) (CreateRoomInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateRoomInput{}, ErrEmptyName
	}
	if len(input.Name) > NameMaxLength {
		return CreateRoomInput{}, ErrNameTooLong
	}
	input.Description = strings.TrimSpace(input.Description)
	if len(input.Description) > DescriptionMaxLength {
		return CreateRoomInput{}, ErrDescriptionTooLong
	}
	if input.SubmissionEnd.Before(input.SubmissionStart) {
		return CreateRoomInput{}, ErrInvalidWindow
	}
	input.CreatorID = strings.TrimSpace(input.CreatorID)
	return input, nil
}

// SolveRequirements projects the configuration consulted by the
// submission ladder.
func (r Room) SolveRequirements() SolveRequirements {
	return SolveRequirements{
		AreChallengesHidden:        r.AreChallengesHidden,
		IsSubmissionsForceDisabled: r.IsSubmissionsForceDisabled,
		SubmissionStart:            r.SubmissionStart,
		SubmissionEnd:              r.SubmissionEnd,
	}
}
