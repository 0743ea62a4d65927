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

const roomColumns = `id, name, description, creator_id,
	are_challenges_hidden, is_submissions_force_disabled,
	allow_player_created_teams, allow_players_to_view_other_team_solves,
	submission_start, submission_end, created_at, updated_at`

// CreateRoom inserts the room and its owner membership in one transaction.
func (s *Store) CreateRoom(ctx context.Context, r room.Room, owner room.Member) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("room id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create room: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO rooms (`+roomColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.Name,
		r.Description,
		r.CreatorID,
		boolToInt(r.AreChallengesHidden),
		boolToInt(r.IsSubmissionsForceDisabled),
		boolToInt(r.AllowPlayerCreatedTeams),
		boolToInt(r.AllowPlayersToViewOtherTeamSolves),
		toMillis(r.SubmissionStart),
		toMillis(r.SubmissionEnd),
		toMillis(r.CreatedAt),
		toMillis(r.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert room: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO room_members (room_id, user_id, role, joined_at)
		 VALUES (?, ?, ?, ?)`,
		owner.RoomID,
		owner.UserID,
		int(owner.Role),
		toMillis(owner.JoinedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create room: %w", err)
	}
	return nil
}

// GetRoom returns one room by id.
func (s *Store) GetRoom(ctx context.Context, id string) (room.Room, error) {
	if err := s.ready(ctx); err != nil {
		return room.Room{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ?`,
		id,
	)
	r, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return room.Room{}, storage.ErrNotFound
		}
		return room.Room{}, fmt.Errorf("get room: %w", err)
	}
	return r, nil
}

// ListRooms returns one page of rooms ordered by id.
func (s *Store) ListRooms(ctx context.Context, pageSize int, pageToken string) (storage.RoomPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.RoomPage{}, err
	}
	if pageSize <= 0 {
		return storage.RoomPage{}, fmt.Errorf("page size must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+roomColumns+`
		 FROM rooms
		 WHERE id > ?
		 ORDER BY id ASC
		 LIMIT ?`,
		strings.TrimSpace(pageToken),
		pageSize+1,
	)
	if err != nil {
		return storage.RoomPage{}, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	page := storage.RoomPage{Rooms: make([]room.Room, 0, pageSize)}
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return storage.RoomPage{}, fmt.Errorf("list rooms: %w", err)
		}
		page.Rooms = append(page.Rooms, r)
	}
	if err := rows.Err(); err != nil {
		return storage.RoomPage{}, fmt.Errorf("list rooms: %w", err)
	}
	if len(page.Rooms) > pageSize {
		page.NextPageToken = page.Rooms[pageSize-1].ID
		page.Rooms = page.Rooms[:pageSize]
	}
	return page, nil
}

// GetMember returns one room membership.
func (s *Store) GetMember(ctx context.Context, roomID, userID string) (room.Member, error) {
	if err := s.ready(ctx); err != nil {
		return room.Member{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT room_id, user_id, role, joined_at
		 FROM room_members
		 WHERE room_id = ? AND user_id = ?`,
		roomID,
		userID,
	)
	var m room.Member
	var role int
	var joinedAt int64
	if err := row.Scan(&m.RoomID, &m.UserID, &role, &joinedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return room.Member{}, storage.ErrNotFound
		}
		return room.Member{}, fmt.Errorf("get member: %w", err)
	}
	m.Role = room.Role(role)
	m.JoinedAt = fromMillis(joinedAt)
	return m, nil
}

// DeleteMember removes one room membership.
func (s *Store) DeleteMember(ctx context.Context, roomID, userID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM room_members WHERE room_id = ? AND user_id = ?`,
		roomID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListMembers returns one page of room memberships ordered by user id.
func (s *Store) ListMembers(ctx context.Context, roomID string, pageSize int, pageToken string) (storage.MemberPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.MemberPage{}, err
	}
	if pageSize <= 0 {
		return storage.MemberPage{}, fmt.Errorf("page size must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT room_id, user_id, role, joined_at
		 FROM room_members
		 WHERE room_id = ? AND user_id > ?
		 ORDER BY user_id ASC
		 LIMIT ?`,
		roomID,
		strings.TrimSpace(pageToken),
		pageSize+1,
	)
	if err != nil {
		return storage.MemberPage{}, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	page := storage.MemberPage{Members: make([]room.Member, 0, pageSize)}
	for rows.Next() {
		var m room.Member
		var role int
		var joinedAt int64
		if err := rows.Scan(&m.RoomID, &m.UserID, &role, &joinedAt); err != nil {
			return storage.MemberPage{}, fmt.Errorf("list members: %w", err)
		}
		m.Role = room.Role(role)
		m.JoinedAt = fromMillis(joinedAt)
		page.Members = append(page.Members, m)
	}
	if err := rows.Err(); err != nil {
		return storage.MemberPage{}, fmt.Errorf("list members: %w", err)
	}
	if len(page.Members) > pageSize {
		page.NextPageToken = page.Members[pageSize-1].UserID
		page.Members = page.Members[:pageSize]
	}
	return page, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (room.Room, error) {
	var r room.Room
	var hidden, disabled, playerTeams, viewSolves int
	var start, end, createdAt, updatedAt int64
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Description,
		&r.CreatorID,
		&hidden,
		&disabled,
		&playerTeams,
		&viewSolves,
		&start,
		&end,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return room.Room{}, err
	}
	r.AreChallengesHidden = hidden != 0
	r.IsSubmissionsForceDisabled = disabled != 0
	r.AllowPlayerCreatedTeams = playerTeams != 0
	r.AllowPlayersToViewOtherTeamSolves = viewSolves != 0
	r.SubmissionStart = fromMillis(start)
	r.SubmissionEnd = fromMillis(end)
	r.CreatedAt = fromMillis(createdAt)
	r.UpdatedAt = fromMillis(updatedAt)
	return r, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
