package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/flagfall.space/internal/room"
	"github.com/louisbranch/flagfall.space/internal/storage"
)

// CreateInvitation inserts one pending invitation.
func (s *Store) CreateInvitation(ctx context.Context, inv room.Invitation) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO room_invitations (room_id, invitee_id, inviter_id, role, invited_at)
		 VALUES (?, ?, ?, ?, ?)`,
		inv.RoomID,
		inv.InviteeID,
		inv.InviterID,
		int(inv.Role),
		toMillis(inv.InvitedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

// GetInvitation returns one pending invitation.
func (s *Store) GetInvitation(ctx context.Context, roomID, inviteeID string) (room.Invitation, error) {
	if err := s.ready(ctx); err != nil {
		return room.Invitation{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT room_id, invitee_id, inviter_id, role, invited_at
		 FROM room_invitations
		 WHERE room_id = ? AND invitee_id = ?`,
		roomID,
		inviteeID,
	)
	inv, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return room.Invitation{}, storage.ErrNotFound
		}
		return room.Invitation{}, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

// DeleteInvitation removes one pending invitation.
func (s *Store) DeleteInvitation(ctx context.Context, roomID, inviteeID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM room_invitations WHERE room_id = ? AND invitee_id = ?`,
		roomID,
		inviteeID,
	)
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AcceptInvitation atomically consumes the pending invitation for
// (m.RoomID, m.UserID) and inserts the membership. Exactly one of two
// concurrent accepts can observe the invitation row; the other gets
// ErrNotFound.
func (s *Store) AcceptInvitation(ctx context.Context, m room.Member) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin accept invitation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(
		ctx,
		`DELETE FROM room_invitations WHERE room_id = ? AND invitee_id = ?`,
		m.RoomID,
		m.UserID,
	)
	if err != nil {
		return fmt.Errorf("consume invitation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("consume invitation: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO room_members (room_id, user_id, role, joined_at)
		 VALUES (?, ?, ?, ?)`,
		m.RoomID,
		m.UserID,
		int(m.Role),
		toMillis(m.JoinedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit accept invitation: %w", err)
	}
	return nil
}

// ListReceivedInvitations returns one page of invitations addressed to a
// user, ordered by room id.
func (s *Store) ListReceivedInvitations(ctx context.Context, inviteeID string, pageSize int, pageToken string) (storage.InvitationPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.InvitationPage{}, err
	}
	if pageSize <= 0 {
		return storage.InvitationPage{}, fmt.Errorf("page size must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT room_id, invitee_id, inviter_id, role, invited_at
		 FROM room_invitations
		 WHERE invitee_id = ? AND room_id > ?
		 ORDER BY room_id ASC
		 LIMIT ?`,
		inviteeID,
		strings.TrimSpace(pageToken),
		pageSize+1,
	)
	if err != nil {
		return storage.InvitationPage{}, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	page := storage.InvitationPage{Invitations: make([]room.Invitation, 0, pageSize)}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return storage.InvitationPage{}, fmt.Errorf("list invitations: %w", err)
		}
		page.Invitations = append(page.Invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return storage.InvitationPage{}, fmt.Errorf("list invitations: %w", err)
	}
	if len(page.Invitations) > pageSize {
		page.NextPageToken = page.Invitations[pageSize-1].RoomID
		page.Invitations = page.Invitations[:pageSize]
	}
	return page, nil
}

func scanInvitation(row rowScanner) (room.Invitation, error) {
	var inv room.Invitation
	var role int
	var invitedAt int64
	if err := row.Scan(&inv.RoomID, &inv.InviteeID, &inv.InviterID, &role, &invitedAt); err != nil {
		return room.Invitation{}, err
	}
	inv.Role = room.Role(role)
	inv.InvitedAt = fromMillis(invitedAt)
	return inv, nil
}
