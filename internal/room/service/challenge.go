package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/flagfall.space/internal/challenge"
	"github.com/louisbranch/flagfall.space/internal/challenge/filter"
	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
	"github.com/louisbranch/flagfall.space/internal/room"
	"github.com/louisbranch/flagfall.space/internal/storage"
)

func errNotEditor() *apperrors.Error {
	return apperrors.New(apperrors.CodeChallengeNotEditor, "managing challenges requires editor")
}

// CreateChallenge creates a challenge. The creator must hold at least
// Editor in the room.
func (s *Service) CreateChallenge(ctx context.Context, input challenge.CreateChallengeInput) (challenge.Challenge, error) {
	creator, err := s.memberOrHidden(ctx, input.RoomID, input.CreatorID, errRoomNotFound())
	if err != nil {
		return challenge.Challenge{}, err
	}
	if err := room.RequireAtLeast(creator.Role, room.RoleEditor, errNotEditor()); err != nil {
		return challenge.Challenge{}, err
	}

	c, err := challenge.CreateChallenge(input, s.clock, s.idGenerator)
	if err != nil {
		return challenge.Challenge{}, err
	}
	c.UpdaterID = c.CreatorID

	if err := s.store.CreateChallenge(ctx, c); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return challenge.Challenge{}, apperrors.WithMetadata(apperrors.CodeChallengeNameTaken,
				"challenge name already in use", map[string]string{"name": c.Name})
		}
		return challenge.Challenge{}, fmt.Errorf("persist challenge: %w", err)
	}
	return c, nil
}

// GetChallenge returns one challenge to a member of its room. When the
// room hides challenges, callers below Editor get "not found". Flags are
// stripped for callers below Editor.
func (s *Service) GetChallenge(ctx context.Context, challengeID, viewerID string) (challenge.Challenge, error) {
	c, r, viewer, err := s.resolveChallenge(ctx, challengeID, viewerID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	if viewer.Role.Below(room.RoleEditor) {
		if r.AreChallengesHidden {
			return challenge.Challenge{}, errChallengeNotFound()
		}
		c.Flags = nil
	}
	return c, nil
}

// UpdateChallengeInput describes a challenge update. All content fields
// are replaced.
type UpdateChallengeInput struct {
	ChallengeID string
	UpdaterID   string
	Name        string
	Description string
	MaxAttempts int
	Flags       []string
	Tags        []string
}

// UpdateChallenge replaces a challenge's content. The updater must hold
// at least Editor in the room.
func (s *Service) UpdateChallenge(ctx context.Context, input UpdateChallengeInput) (challenge.Challenge, error) {
	c, _, updater, err := s.resolveChallenge(ctx, input.ChallengeID, input.UpdaterID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	if err := room.RequireAtLeast(updater.Role, room.RoleEditor, errNotEditor()); err != nil {
		return challenge.Challenge{}, err
	}

	normalized, err := challenge.NormalizeCreateChallengeInput(challenge.CreateChallengeInput{
		RoomID:      c.RoomID,
		CreatorID:   c.CreatorID,
		Name:        input.Name,
		Description: input.Description,
		MaxAttempts: input.MaxAttempts,
		Flags:       input.Flags,
		Tags:        input.Tags,
	})
	if err != nil {
		return challenge.Challenge{}, err
	}

	c.Name = normalized.Name
	c.Description = normalized.Description
	c.MaxAttempts = normalized.MaxAttempts
	c.Flags = normalized.Flags
	c.Tags = normalized.Tags
	c.UpdaterID = input.UpdaterID
	c.UpdatedAt = s.clock().UTC()

	if err := s.store.UpdateChallenge(ctx, c); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return challenge.Challenge{}, errChallengeNotFound()
		case errors.Is(err, storage.ErrAlreadyExists):
			return challenge.Challenge{}, apperrors.WithMetadata(apperrors.CodeChallengeNameTaken,
				"challenge name already in use", map[string]string{"name": c.Name})
		default:
			return challenge.Challenge{}, fmt.Errorf("update challenge: %w", err)
		}
	}
	return c, nil
}

// DeleteChallenge removes a challenge. The caller must hold at least
// Editor in the room.
func (s *Service) DeleteChallenge(ctx context.Context, challengeID, userID string) error {
	_, _, caller, err := s.resolveChallenge(ctx, challengeID, userID)
	if err != nil {
		return err
	}
	if err := room.RequireAtLeast(caller.Role, room.RoleEditor, errNotEditor()); err != nil {
		return err
	}
	if err := s.store.DeleteChallenge(ctx, challengeID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errChallengeNotFound()
		}
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}

// ListChallenges returns one page of a room's challenges, optionally
// narrowed by an AIP-160 filter expression over name, tag, and
// max_attempts. When the room hides challenges, callers below Editor get
// an empty page.
func (s *Service) ListChallenges(ctx context.Context, roomID, viewerID, filterStr string, pageSize int, pageToken string) (storage.ChallengePage, error) {
	viewer, err := s.memberOrHidden(ctx, roomID, viewerID, errRoomNotFound())
	if err != nil {
		return storage.ChallengePage{}, err
	}

	r, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ChallengePage{}, errRoomNotFound()
		}
		return storage.ChallengePage{}, fmt.Errorf("get room: %w", err)
	}
	if r.AreChallengesHidden && viewer.Role.Below(room.RoleEditor) {
		return storage.ChallengePage{Challenges: []challenge.Challenge{}}, nil
	}

	cond, err := filter.ParseChallengeFilter(filterStr)
	if err != nil {
		return storage.ChallengePage{}, apperrors.Wrap(apperrors.CodeChallengeFilterInvalid,
			"invalid challenge filter", err)
	}

	page, err := s.store.ListChallenges(ctx, roomID, cond, clampPageSize(pageSize), pageToken)
	if err != nil {
		return storage.ChallengePage{}, fmt.Errorf("list challenges: %w", err)
	}
	return page, nil
}

// resolveChallenge loads a challenge, its room, and the caller's
// membership, hiding all three behind "challenge not found" for
// non-members.
func (s *Service) resolveChallenge(ctx context.Context, challengeID, userID string) (challenge.Challenge, room.Room, room.Member, error) {
	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return challenge.Challenge{}, room.Room{}, room.Member{}, errChallengeNotFound()
		}
		return challenge.Challenge{}, room.Room{}, room.Member{}, fmt.Errorf("get challenge: %w", err)
	}

	r, err := s.store.GetRoom(ctx, c.RoomID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return challenge.Challenge{}, room.Room{}, room.Member{}, errChallengeNotFound()
		}
		return challenge.Challenge{}, room.Room{}, room.Member{}, fmt.Errorf("get room: %w", err)
	}

	m, err := s.memberOrHidden(ctx, c.RoomID, userID, errChallengeNotFound())
	if err != nil {
		return challenge.Challenge{}, room.Room{}, room.Member{}, err
	}
	return c, r, m, nil
}
