// Package team provides the team domain model. Teams are room-scoped
// groups of players that share solve credit.
package team

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
	"github.com/louisbranch/flagfall.space/internal/id"
)

// NameMaxLength bounds team names.
const NameMaxLength = 64

var (
	// ErrEmptyName indicates a missing team name.
	ErrEmptyName = apperrors.New(apperrors.CodeTeamNameEmpty, "team name is required")
	// ErrNameTooLong indicates a team name over the limit.
	ErrNameTooLong = apperrors.New(apperrors.CodeTeamNameTooLong, "team name exceeds the maximum length")
)

// Team represents a room-scoped team. Names are unique within a room.
type Team struct {
	ID        string
	RoomID    string
	Name      string
	CreatedAt time.Time
}

// Member records one user's team membership. A user holds at most one
// team membership per room.
type Member struct {
	TeamID   string
	UserID   string
	RoomID   string
	JoinedAt time.Time
}

// CreateTeamInput describes the metadata needed to create a team.
type CreateTeamInput struct {
	RoomID string
	Name   string
}

// CreateTeam creates a new team with a generated ID and timestamp.
func CreateTeam(input CreateTeamInput, now func() time.Time, idGenerator func() (string, error)) (Team, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateTeamInput(input)
	if err != nil {
		return Team{}, err
	}

	teamID, err := idGenerator()
	if err != nil {
		return Team{}, fmt.Errorf("generate team id: %w", err)
	}

	return Team{
		ID:        teamID,
		RoomID:    normalized.RoomID,
		Name:      normalized.Name,
		CreatedAt: now().UTC(),
	}, nil
}

// NormalizeCreateTeamInput trims and validates team input metadata.
func NormalizeCreateTeamInput(input CreateTeamInput) (CreateTeamInput, error) {
	input.RoomID = strings.TrimSpace(input.RoomID)
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateTeamInput{}, ErrEmptyName
	}
	if len(input.Name) > NameMaxLength {
		return CreateTeamInput{}, ErrNameTooLong
	}
	return input, nil
}
