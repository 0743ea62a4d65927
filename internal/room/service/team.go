package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
	"github.com/louisbranch/flagfall.space/internal/room"
	"github.com/louisbranch/flagfall.space/internal/storage"
	"github.com/louisbranch/flagfall.space/internal/team"
)

// CreateTeam creates an empty team. The creator must hold at least Admin.
func (s *Service) CreateTeam(ctx context.Context, roomID, creatorID, name string) (team.Team, error) {
	creator, err := s.memberOrHidden(ctx, roomID, creatorID, errRoomNotFound())
	if err != nil {
		return team.Team{}, err
	}
	if err := room.RequireAtLeast(creator.Role, room.RoleAdmin,
		apperrors.New(apperrors.CodeTeamNotAdmin, "creating teams requires admin")); err != nil {
		return team.Team{}, err
	}

	t, err := team.CreateTeam(team.CreateTeamInput{RoomID: roomID, Name: name}, s.clock, s.idGenerator)
	if err != nil {
		return team.Team{}, err
	}
	if err := s.store.CreateTeam(ctx, t, nil); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return team.Team{}, apperrors.WithMetadata(apperrors.CodeTeamNameTaken,
				"team name already in use", map[string]string{"name": t.Name})
		}
		return team.Team{}, fmt.Errorf("persist team: %w", err)
	}
	return t, nil
}

// PlayAsSolo lets a Player create a team with themself as first member.
// The room must allow player-created teams.
func (s *Service) PlayAsSolo(ctx context.Context, roomID, userID, name string) (team.Team, error) {
	m, err := s.memberOrHidden(ctx, roomID, userID, errRoomNotFound())
	if err != nil {
		return team.Team{}, err
	}
	if err := room.RequireExactly(m.Role, room.RolePlayer,
		apperrors.New(apperrors.CodeTeamCandidateNotPlayer, "only players can play solo")); err != nil {
		return team.Team{}, err
	}

	r, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return team.Team{}, errRoomNotFound()
		}
		return team.Team{}, fmt.Errorf("get room: %w", err)
	}
	if !r.AllowPlayerCreatedTeams {
		return team.Team{}, apperrors.New(apperrors.CodeRoomPlayerTeamsNotAllowed,
			"this room does not allow player-created teams")
	}

	if _, err := s.store.GetTeamMembership(ctx, roomID, userID); err == nil {
		return team.Team{}, apperrors.New(apperrors.CodeTeamAlreadyHasTeam, "already holding a team in this room")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return team.Team{}, fmt.Errorf("check team membership: %w", err)
	}

	t, err := team.CreateTeam(team.CreateTeamInput{RoomID: roomID, Name: name}, s.clock, s.idGenerator)
	if err != nil {
		return team.Team{}, err
	}
	first := team.Member{
		TeamID:   t.ID,
		UserID:   userID,
		RoomID:   roomID,
		JoinedAt: t.CreatedAt,
	}
	if err := s.store.CreateTeam(ctx, t, &first); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			// The constraint does not say which invariant fired; recheck
			// the caller's membership to pick the right conflict.
			if _, memberErr := s.store.GetTeamMembership(ctx, roomID, userID); memberErr == nil {
				return team.Team{}, apperrors.New(apperrors.CodeTeamAlreadyHasTeam, "already holding a team in this room")
			}
			return team.Team{}, apperrors.WithMetadata(apperrors.CodeTeamNameTaken,
				"team name already in use", map[string]string{"name": t.Name})
		}
		return team.Team{}, fmt.Errorf("persist solo team: %w", err)
	}
	return t, nil
}

// AddTeamMember adds a Player to a team. The adder must hold at least
// Admin in the team's room; the candidate must be a Player without a team.
func (s *Service) AddTeamMember(ctx context.Context, teamID, adderID, candidateID string) error {
	t, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errTeamNotFound()
		}
		return fmt.Errorf("get team: %w", err)
	}

	adder, err := s.memberOrHidden(ctx, t.RoomID, adderID, errTeamNotFound())
	if err != nil {
		return err
	}
	if err := room.RequireAtLeast(adder.Role, room.RoleAdmin,
		apperrors.New(apperrors.CodeTeamNotAdmin, "managing team members requires admin")); err != nil {
		return err
	}

	candidate, err := s.store.GetMember(ctx, t.RoomID, candidateID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.New(apperrors.CodeTeamCandidateNotMember, "candidate is not a room member")
		}
		return fmt.Errorf("resolve candidate membership: %w", err)
	}
	if err := room.RequireExactly(candidate.Role, room.RolePlayer,
		apperrors.New(apperrors.CodeTeamCandidateNotPlayer, "only players can join teams")); err != nil {
		return err
	}

	if _, err := s.store.GetTeamMembership(ctx, t.RoomID, candidateID); err == nil {
		return apperrors.New(apperrors.CodeTeamAlreadyHasTeam, "candidate already holds a team in this room")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("check candidate team: %w", err)
	}

	m := team.Member{
		TeamID:   teamID,
		UserID:   candidateID,
		RoomID:   t.RoomID,
		JoinedAt: s.clock().UTC(),
	}
	if err := s.store.AddTeamMember(ctx, m); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return apperrors.New(apperrors.CodeTeamAlreadyHasTeam, "candidate already holds a team in this room")
		}
		return fmt.Errorf("add team member: %w", err)
	}
	return nil
}

// RemoveTeamMember removes a member from a team. When the team is left
// empty it is deleted in the same transaction. Reports whether the team
// was deleted.
func (s *Service) RemoveTeamMember(ctx context.Context, teamID, removerID, targetID string) (bool, error) {
	if removerID == targetID {
		return false, apperrors.New(apperrors.CodeMemberRemoveSelf, "cannot remove yourself from the team")
	}

	t, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, errTeamNotFound()
		}
		return false, fmt.Errorf("get team: %w", err)
	}

	remover, err := s.memberOrHidden(ctx, t.RoomID, removerID, errTeamNotFound())
	if err != nil {
		return false, err
	}
	if err := room.RequireAtLeast(remover.Role, room.RoleAdmin,
		apperrors.New(apperrors.CodeTeamNotAdmin, "managing team members requires admin")); err != nil {
		return false, err
	}

	deleted, err := s.store.RemoveTeamMember(ctx, teamID, targetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, apperrors.New(apperrors.CodeTeamUserNotInTeam, "user is not in the team")
		}
		return false, fmt.Errorf("remove team member: %w", err)
	}
	return deleted, nil
}

// DeleteTeam removes a team. Memberships and solves cascade.
func (s *Service) DeleteTeam(ctx context.Context, teamID, userID string) error {
	t, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errTeamNotFound()
		}
		return fmt.Errorf("get team: %w", err)
	}

	caller, err := s.memberOrHidden(ctx, t.RoomID, userID, errTeamNotFound())
	if err != nil {
		return err
	}
	if err := room.RequireAtLeast(caller.Role, room.RoleAdmin,
		apperrors.New(apperrors.CodeTeamNotAdmin, "deleting teams requires admin")); err != nil {
		return err
	}

	if err := s.store.DeleteTeam(ctx, teamID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errTeamNotFound()
		}
		return fmt.Errorf("delete team: %w", err)
	}
	return nil
}

// ListTeams returns one page of a room's teams to one of its members.
func (s *Service) ListTeams(ctx context.Context, roomID, viewerID string, pageSize int, pageToken string) (storage.TeamPage, error) {
	if _, err := s.memberOrHidden(ctx, roomID, viewerID, errRoomNotFound()); err != nil {
		return storage.TeamPage{}, err
	}
	page, err := s.store.ListTeams(ctx, roomID, clampPageSize(pageSize), pageToken)
	if err != nil {
		return storage.TeamPage{}, fmt.Errorf("list teams: %w", err)
	}
	return page, nil
}

// ListTeamMembers returns one page of a team's members to a member of the
// team's room.
func (s *Service) ListTeamMembers(ctx context.Context, teamID, viewerID string, pageSize int, pageToken string) (storage.TeamMemberPage, error) {
	t, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.TeamMemberPage{}, errTeamNotFound()
		}
		return storage.TeamMemberPage{}, fmt.Errorf("get team: %w", err)
	}
	if _, err := s.memberOrHidden(ctx, t.RoomID, viewerID, errTeamNotFound()); err != nil {
		return storage.TeamMemberPage{}, err
	}
	page, err := s.store.ListTeamMembers(ctx, teamID, clampPageSize(pageSize), pageToken)
	if err != nil {
		return storage.TeamMemberPage{}, fmt.Errorf("list team members: %w", err)
	}
	return page, nil
}
