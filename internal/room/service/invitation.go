package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
	"github.com/louisbranch/flagfall.space/internal/room"
	"github.com/louisbranch/flagfall.space/internal/storage"
)

// Invite offers room membership at a role strictly lower than the
// inviter's own. The inviter must hold at least Admin.
func (s *Service) Invite(ctx context.Context, input room.CreateInvitationInput) (room.Invitation, error) {
	inviter, err := s.memberOrHidden(ctx, input.RoomID, input.InviterID, errRoomNotFound())
	if err != nil {
		return room.Invitation{}, err
	}

	inv, err := room.CreateInvitation(input, s.clock)
	if err != nil {
		return room.Invitation{}, err
	}

	if err := room.RequireAtLeast(inviter.Role, room.RoleAdmin,
		apperrors.New(apperrors.CodeInviteNotAllowed, "inviting requires admin")); err != nil {
		return room.Invitation{}, err
	}
	if err := room.RequireStrictlyAbove(inviter.Role, inv.Role,
		apperrors.New(apperrors.CodeInviteLowerRolesOnly, "only lower roles can be offered")); err != nil {
		return room.Invitation{}, err
	}

	exists, err := s.store.UserExists(ctx, inv.InviteeID)
	if err != nil {
		return room.Invitation{}, fmt.Errorf("check invitee: %w", err)
	}
	if !exists {
		return room.Invitation{}, apperrors.New(apperrors.CodeInviteeNotFound, "invitee not found")
	}

	if _, err := s.store.GetInvitation(ctx, inv.RoomID, inv.InviteeID); err == nil {
		return room.Invitation{}, apperrors.New(apperrors.CodeInviteAlreadyInvited, "invitee already has a pending invitation")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return room.Invitation{}, fmt.Errorf("check pending invitation: %w", err)
	}

	if _, err := s.store.GetMember(ctx, inv.RoomID, inv.InviteeID); err == nil {
		return room.Invitation{}, apperrors.New(apperrors.CodeMemberAlreadyJoined, "invitee is already a member")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return room.Invitation{}, fmt.Errorf("check invitee membership: %w", err)
	}

	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return room.Invitation{}, apperrors.New(apperrors.CodeInviteAlreadyInvited, "invitee already has a pending invitation")
		}
		return room.Invitation{}, fmt.Errorf("persist invitation: %w", err)
	}
	return inv, nil
}

// AcceptInvite consumes the pending invitation and joins the invitee at
// the offered role. Exactly one of two concurrent accepts succeeds.
func (s *Service) AcceptInvite(ctx context.Context, roomID, inviteeID string) (room.Member, error) {
	if _, err := s.store.GetMember(ctx, roomID, inviteeID); err == nil {
		// Self-heal a stray invitation left behind for an existing member.
		if err := s.store.DeleteInvitation(ctx, roomID, inviteeID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return room.Member{}, fmt.Errorf("delete stray invitation: %w", err)
		}
		return room.Member{}, apperrors.New(apperrors.CodeMemberAlreadyJoined, "already a member of this room")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return room.Member{}, fmt.Errorf("check membership: %w", err)
	}

	inv, err := s.store.GetInvitation(ctx, roomID, inviteeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return room.Member{}, apperrors.New(apperrors.CodeInviteNotFound, "invitation not found")
		}
		return room.Member{}, fmt.Errorf("get invitation: %w", err)
	}

	m := room.Member{
		RoomID:   roomID,
		UserID:   inviteeID,
		Role:     inv.Role,
		JoinedAt: s.clock().UTC(),
	}
	if err := s.store.AcceptInvitation(ctx, m); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return room.Member{}, apperrors.New(apperrors.CodeInviteNotFound, "invitation not found")
		case errors.Is(err, storage.ErrAlreadyExists):
			return room.Member{}, apperrors.New(apperrors.CodeMemberAlreadyJoined, "already a member of this room")
		default:
			return room.Member{}, fmt.Errorf("accept invitation: %w", err)
		}
	}
	return m, nil
}

// RejectInvite discards the pending invitation.
func (s *Service) RejectInvite(ctx context.Context, roomID, inviteeID string) error {
	if err := s.store.DeleteInvitation(ctx, roomID, inviteeID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.New(apperrors.CodeInviteNotFound, "invitation not found")
		}
		return fmt.Errorf("reject invitation: %w", err)
	}
	return nil
}

// ListReceivedInvites returns one page of invitations addressed to a user.
func (s *Service) ListReceivedInvites(ctx context.Context, inviteeID string, pageSize int, pageToken string) (storage.InvitationPage, error) {
	page, err := s.store.ListReceivedInvitations(ctx, inviteeID, clampPageSize(pageSize), pageToken)
	if err != nil {
		return storage.InvitationPage{}, fmt.Errorf("list received invitations: %w", err)
	}
	return page, nil
}
