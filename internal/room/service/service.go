// Package service implements the room competition operations: membership,
// invitations, team formation, challenge management, and flag submission.
//
// Every operation resolves the caller's room membership before acting.
// Non-members receive "not found" rather than "forbidden" for room-scoped
// resources so room existence never leaks to outsiders.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
	"github.com/louisbranch/flagfall.space/internal/id"
	"github.com/louisbranch/flagfall.space/internal/platform/grpc/pagination"
	"github.com/louisbranch/flagfall.space/internal/room"
	"github.com/louisbranch/flagfall.space/internal/storage"
)

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service coordinates room competition state over the storage contracts.
type Service struct {
	store       storage.Store
	clock       func() time.Time
	idGenerator func() (string, error)
}

// New creates a Service with default clock and id generation.
func New(store storage.Store) *Service {
	return &Service{
		store:       store,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// memberOrHidden resolves the caller's membership in a room. Non-members
// get the provided hidden error instead of a permission error.
func (s *Service) memberOrHidden(ctx context.Context, roomID, userID string, hidden *apperrors.Error) (room.Member, error) {
	m, err := s.store.GetMember(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return room.Member{}, hidden
		}
		return room.Member{}, fmt.Errorf("resolve membership: %w", err)
	}
	return m, nil
}

func errRoomNotFound() *apperrors.Error {
	return apperrors.New(apperrors.CodeRoomNotFound, "room not found")
}

func errTeamNotFound() *apperrors.Error {
	return apperrors.New(apperrors.CodeTeamNotFound, "team not found")
}

func errChallengeNotFound() *apperrors.Error {
	return apperrors.New(apperrors.CodeChallengeNotFound, "challenge not found")
}

func clampPageSize(pageSize int) int {
	return pagination.ClampPageSize(pageSize, pagination.PageSizeConfig{
		Default: defaultListPageSize,
		Max:     maxListPageSize,
	})
}
