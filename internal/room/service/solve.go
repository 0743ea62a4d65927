package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/flagfall.space/internal/challenge"
	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
	"github.com/louisbranch/flagfall.space/internal/room"
	"github.com/louisbranch/flagfall.space/internal/storage"
)

// ChallengeStatus is the read-only projection of the submission ladder.
type ChallengeStatus string

const (
	// StatusNotSolved means the caller's team may still submit.
	StatusNotSolved ChallengeStatus = "NOT_SOLVED"
	// StatusAlreadySolved means the caller's team already solved the challenge.
	StatusAlreadySolved ChallengeStatus = "ALREADY_SOLVED"
	// StatusNotAPlayer means the caller holds a staff role and cannot submit.
	StatusNotAPlayer ChallengeStatus = "NOT_A_PLAYER"
	// StatusDisabled means the submission window is closed or force-disabled.
	StatusDisabled ChallengeStatus = "DISABLED"
	// StatusNoTeam means the caller holds no team in the room.
	StatusNoTeam ChallengeStatus = "NO_TEAM"
)

// SubmitResult is the outcome of a flag submission.
type SubmitResult string

const (
	// ResultCorrect means the flag matched and a solve was recorded.
	ResultCorrect SubmitResult = "CORRECT"
	// ResultIncorrect means the flag did not match. Not an error.
	ResultIncorrect SubmitResult = "INCORRECT"
)

// submissionContext is the state the decision ladder resolves before the
// terminal step of either operation.
type submissionContext struct {
	challenge challenge.Challenge
	teamID    string
	status    ChallengeStatus
}

// resolveSubmission walks the shared decision ladder up to the solve
// check. The first failing condition wins; reordering the steps changes
// user-visible behavior. A non-empty status short-circuits the ladder.
func (s *Service) resolveSubmission(ctx context.Context, challengeID, userID string) (submissionContext, error) {
	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return submissionContext{}, errChallengeNotFound()
		}
		return submissionContext{}, fmt.Errorf("get challenge: %w", err)
	}

	r, err := s.store.GetRoom(ctx, c.RoomID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return submissionContext{}, errChallengeNotFound()
		}
		return submissionContext{}, fmt.Errorf("get room: %w", err)
	}
	req := r.SolveRequirements()
	if !room.ChallengesVisible(req) {
		return submissionContext{}, errChallengeNotFound()
	}

	m, err := s.memberOrHidden(ctx, c.RoomID, userID, errChallengeNotFound())
	if err != nil {
		return submissionContext{}, err
	}

	if m.Role != room.RolePlayer {
		return submissionContext{challenge: c, status: StatusNotAPlayer}, nil
	}

	if !room.SubmissionsOpen(req, s.clock().UTC()) {
		return submissionContext{challenge: c, status: StatusDisabled}, nil
	}

	tm, err := s.store.GetTeamMembership(ctx, c.RoomID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return submissionContext{challenge: c, status: StatusNoTeam}, nil
		}
		return submissionContext{}, fmt.Errorf("resolve team: %w", err)
	}

	solved, err := s.store.SolveExists(ctx, c.ID, tm.TeamID)
	if err != nil {
		return submissionContext{}, fmt.Errorf("check solve: %w", err)
	}
	if solved {
		return submissionContext{challenge: c, teamID: tm.TeamID, status: StatusAlreadySolved}, nil
	}

	return submissionContext{challenge: c, teamID: tm.TeamID}, nil
}

// GetChallengeStatus reports where the caller stands in the submission
// ladder without side effects.
func (s *Service) GetChallengeStatus(ctx context.Context, challengeID, userID string) (ChallengeStatus, error) {
	sub, err := s.resolveSubmission(ctx, challengeID, userID)
	if err != nil {
		return "", err
	}
	if sub.status != "" {
		return sub.status, nil
	}
	return StatusNotSolved, nil
}

// SubmitFlag evaluates a flag submission through the decision ladder and
// records the solve on a match. An incorrect flag is a normal outcome,
// not an error.
func (s *Service) SubmitFlag(ctx context.Context, challengeID, userID, flag string) (SubmitResult, error) {
	if flag == "" {
		return "", apperrors.New(apperrors.CodeSolveFlagEmpty, "flag is required")
	}
	if len(flag) > challenge.FlagMaxLength {
		return "", apperrors.New(apperrors.CodeSolveFlagTooLong, "flag is too long")
	}

	sub, err := s.resolveSubmission(ctx, challengeID, userID)
	if err != nil {
		return "", err
	}
	switch sub.status {
	case StatusNotAPlayer:
		return "", apperrors.New(apperrors.CodeSolveNotAPlayer, "staff roles cannot submit flags")
	case StatusDisabled:
		return "", apperrors.New(apperrors.CodeSolveSubmissionsDisabled, "submissions are disabled")
	case StatusNoTeam:
		return "", apperrors.New(apperrors.CodeSolveNoTeam, "join a team before submitting")
	case StatusAlreadySolved:
		return "", apperrors.New(apperrors.CodeSolveAlreadySolved, "challenge already solved")
	}

	if !sub.challenge.HasFlag(flag) {
		return ResultIncorrect, nil
	}

	solve := storage.Solve{
		ChallengeID: sub.challenge.ID,
		TeamID:      sub.teamID,
		RoomID:      sub.challenge.RoomID,
		SolvedBy:    userID,
		SolvedAt:    s.clock().UTC(),
	}
	if err := s.store.CreateSolve(ctx, solve); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			// A concurrent submission won the race.
			return "", apperrors.New(apperrors.CodeSolveAlreadySolved, "challenge already solved")
		}
		return "", fmt.Errorf("record solve: %w", err)
	}
	return ResultCorrect, nil
}

// ListMyTeamSolves returns one page of the caller's own team's solves.
func (s *Service) ListMyTeamSolves(ctx context.Context, roomID, userID string, pageSize int, pageToken string) (storage.SolvePage, error) {
	if _, err := s.memberOrHidden(ctx, roomID, userID, errRoomNotFound()); err != nil {
		return storage.SolvePage{}, err
	}

	tm, err := s.store.GetTeamMembership(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.SolvePage{}, apperrors.New(apperrors.CodeTeamNoTeam, "not holding a team in this room")
		}
		return storage.SolvePage{}, fmt.Errorf("resolve team: %w", err)
	}

	page, err := s.store.ListTeamSolves(ctx, tm.TeamID, clampPageSize(pageSize), pageToken)
	if err != nil {
		return storage.SolvePage{}, fmt.Errorf("list team solves: %w", err)
	}
	return page, nil
}

// ListTeamSolves returns one page of another team's solves. Players are
// gated by the room's view flag; staff roles are always permitted.
func (s *Service) ListTeamSolves(ctx context.Context, roomID, viewerID, teamID string, pageSize int, pageToken string) (storage.SolvePage, error) {
	viewer, err := s.memberOrHidden(ctx, roomID, viewerID, errRoomNotFound())
	if err != nil {
		return storage.SolvePage{}, err
	}

	t, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.SolvePage{}, errTeamNotFound()
		}
		return storage.SolvePage{}, fmt.Errorf("get team: %w", err)
	}
	if t.RoomID != roomID {
		return storage.SolvePage{}, errTeamNotFound()
	}

	if viewer.Role == room.RolePlayer {
		r, err := s.store.GetRoom(ctx, roomID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return storage.SolvePage{}, errRoomNotFound()
			}
			return storage.SolvePage{}, fmt.Errorf("get room: %w", err)
		}
		if !r.AllowPlayersToViewOtherTeamSolves {
			return storage.SolvePage{}, apperrors.New(apperrors.CodeSolveOtherTeamsNotViewable,
				"this room does not expose other teams' solves to players")
		}
	}

	page, err := s.store.ListTeamSolves(ctx, teamID, clampPageSize(pageSize), pageToken)
	if err != nil {
		return storage.SolvePage{}, fmt.Errorf("list team solves: %w", err)
	}
	return page, nil
}
