package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
	"github.com/louisbranch/flagfall.space/internal/room"
	"github.com/louisbranch/flagfall.space/internal/storage"
)

// CreateRoom creates a room and makes its creator the Owner in the same
// transaction.
func (s *Service) CreateRoom(ctx context.Context, input room.CreateRoomInput) (room.Room, error) {
	exists, err := s.store.UserExists(ctx, input.CreatorID)
	if err != nil {
		return room.Room{}, fmt.Errorf("check creator: %w", err)
	}
	if !exists {
		return room.Room{}, apperrors.New(apperrors.CodeUserNotFound, "creator not found")
	}

	r, err := room.CreateRoom(input, s.clock, s.idGenerator)
	if err != nil {
		return room.Room{}, err
	}

	owner := room.Member{
		RoomID:   r.ID,
		UserID:   r.CreatorID,
		Role:     room.RoleOwner,
		JoinedAt: r.CreatedAt,
	}
	if err := s.store.CreateRoom(ctx, r, owner); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return room.Room{}, apperrors.WithMetadata(apperrors.CodeRoomNameTaken,
				"room name already in use", map[string]string{"name": r.Name})
		}
		return room.Room{}, fmt.Errorf("persist room: %w", err)
	}
	return r, nil
}

// GetRoom returns a room to one of its members.
func (s *Service) GetRoom(ctx context.Context, roomID, userID string) (room.Room, error) {
	if _, err := s.memberOrHidden(ctx, roomID, userID, errRoomNotFound()); err != nil {
		return room.Room{}, err
	}
	r, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return room.Room{}, errRoomNotFound()
		}
		return room.Room{}, fmt.Errorf("get room: %w", err)
	}
	return r, nil
}

// ListRooms returns one page of rooms.
func (s *Service) ListRooms(ctx context.Context, pageSize int, pageToken string) (storage.RoomPage, error) {
	page, err := s.store.ListRooms(ctx, clampPageSize(pageSize), pageToken)
	if err != nil {
		return storage.RoomPage{}, fmt.Errorf("list rooms: %w", err)
	}
	return page, nil
}
