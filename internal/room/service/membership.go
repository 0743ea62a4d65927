package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
	"github.com/louisbranch/flagfall.space/internal/room"
	"github.com/louisbranch/flagfall.space/internal/storage"
)

// GetRole resolves the caller's role in a room. Non-members get
// CodeRoomNotFound.
func (s *Service) GetRole(ctx context.Context, roomID, userID string) (room.Role, error) {
	m, err := s.memberOrHidden(ctx, roomID, userID, errRoomNotFound())
	if err != nil {
		return 0, err
	}
	return m.Role, nil
}

// LeaveRoom removes the caller's own membership. The Owner can never leave.
func (s *Service) LeaveRoom(ctx context.Context, roomID, userID string) error {
	m, err := s.memberOrHidden(ctx, roomID, userID, errRoomNotFound())
	if err != nil {
		return err
	}
	if m.Role == room.RoleOwner {
		return apperrors.New(apperrors.CodeMemberOwnerCannotLeave, "the room owner cannot leave")
	}
	if err := s.store.DeleteMember(ctx, roomID, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.New(apperrors.CodeMemberNotFound, "membership not found")
		}
		return fmt.Errorf("leave room: %w", err)
	}
	return nil
}

// RemoveMember removes another member. The remover must hold at least
// Admin and a strictly higher role than the target; the Owner can never
// be removed. Self-removal goes through LeaveRoom.
func (s *Service) RemoveMember(ctx context.Context, roomID, removerID, targetID string) error {
	if removerID == targetID {
		return apperrors.New(apperrors.CodeMemberRemoveSelf, "use leave to remove yourself")
	}

	remover, err := s.memberOrHidden(ctx, roomID, removerID, errRoomNotFound())
	if err != nil {
		return err
	}
	if err := room.RequireAtLeast(remover.Role, room.RoleAdmin,
		apperrors.New(apperrors.CodeMemberRemoveNotAdmin, "removing members requires admin")); err != nil {
		return err
	}

	target, err := s.store.GetMember(ctx, roomID, targetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.New(apperrors.CodeMemberNotFound, "membership not found")
		}
		return fmt.Errorf("resolve target membership: %w", err)
	}
	if target.Role == room.RoleOwner {
		return apperrors.New(apperrors.CodeMemberOwnerCannotLeave, "the room owner cannot be removed")
	}
	if err := room.RequireStrictlyAbove(remover.Role, target.Role,
		apperrors.New(apperrors.CodeMemberRemoveLowerOnly, "only lower roles can be removed")); err != nil {
		return err
	}

	if err := s.store.DeleteMember(ctx, roomID, targetID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.New(apperrors.CodeMemberNotFound, "membership not found")
		}
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

// ListMembers returns one page of a room's members to one of its members.
func (s *Service) ListMembers(ctx context.Context, roomID, viewerID string, pageSize int, pageToken string) (storage.MemberPage, error) {
	if _, err := s.memberOrHidden(ctx, roomID, viewerID, errRoomNotFound()); err != nil {
		return storage.MemberPage{}, err
	}
	page, err := s.store.ListMembers(ctx, roomID, clampPageSize(pageSize), pageToken)
	if err != nil {
		return storage.MemberPage{}, fmt.Errorf("list members: %w", err)
	}
	return page, nil
}
