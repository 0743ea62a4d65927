package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/flagfall.space/internal/storage"
	"github.com/louisbranch/flagfall.space/internal/team"
)

// CreateTeam inserts the team and, when firstMember is non-nil, its first
// membership in one transaction.
func (s *Store) CreateTeam(ctx context.Context, t team.Team, firstMember *team.Member) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("team id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create team: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO teams (id, room_id, name, created_at)
		 VALUES (?, ?, ?, ?)`,
		t.ID,
		t.RoomID,
		t.Name,
		toMillis(t.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert team: %w", err)
	}

	if firstMember != nil {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO team_members (team_id, user_id, room_id, joined_at)
			 VALUES (?, ?, ?, ?)`,
			firstMember.TeamID,
			firstMember.UserID,
			firstMember.RoomID,
			toMillis(firstMember.JoinedAt),
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("insert first member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create team: %w", err)
	}
	return nil
}

// GetTeam returns one team by id.
func (s *Store) GetTeam(ctx context.Context, id string) (team.Team, error) {
	if err := s.ready(ctx); err != nil {
		return team.Team{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, room_id, name, created_at FROM teams WHERE id = ?`,
		id,
	)
	var t team.Team
	var createdAt int64
	if err := row.Scan(&t.ID, &t.RoomID, &t.Name, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return team.Team{}, storage.ErrNotFound
		}
		return team.Team{}, fmt.Errorf("get team: %w", err)
	}
	t.CreatedAt = fromMillis(createdAt)
	return t, nil
}

// DeleteTeam removes one team. Memberships and solves cascade through
// foreign keys.
func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListTeams returns one page of a room's teams ordered by id.
func (s *Store) ListTeams(ctx context.Context, roomID string, pageSize int, pageToken string) (storage.TeamPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.TeamPage{}, err
	}
	if pageSize <= 0 {
		return storage.TeamPage{}, fmt.Errorf("page size must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, room_id, name, created_at
		 FROM teams
		 WHERE room_id = ? AND id > ?
		 ORDER BY id ASC
		 LIMIT ?`,
		roomID,
		strings.TrimSpace(pageToken),
		pageSize+1,
	)
	if err != nil {
		return storage.TeamPage{}, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	page := storage.TeamPage{Teams: make([]team.Team, 0, pageSize)}
	for rows.Next() {
		var t team.Team
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.RoomID, &t.Name, &createdAt); err != nil {
			return storage.TeamPage{}, fmt.Errorf("list teams: %w", err)
		}
		t.CreatedAt = fromMillis(createdAt)
		page.Teams = append(page.Teams, t)
	}
	if err := rows.Err(); err != nil {
		return storage.TeamPage{}, fmt.Errorf("list teams: %w", err)
	}
	if len(page.Teams) > pageSize {
		page.NextPageToken = page.Teams[pageSize-1].ID
		page.Teams = page.Teams[:pageSize]
	}
	return page, nil
}

// AddTeamMember inserts one team membership.
func (s *Store) AddTeamMember(ctx context.Context, m team.Member) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO team_members (team_id, user_id, room_id, joined_at)
		 VALUES (?, ?, ?, ?)`,
		m.TeamID,
		m.UserID,
		m.RoomID,
		toMillis(m.JoinedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("add team member: %w", err)
	}
	return nil
}

// RemoveTeamMember deletes the membership and, when the team is left
// empty, deletes the team in the same transaction.
func (s *Store) RemoveTeamMember(ctx context.Context, teamID, userID string) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin remove team member: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(
		ctx,
		`DELETE FROM team_members WHERE team_id = ? AND user_id = ?`,
		teamID,
		userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete team member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete team member: %w", err)
	}
	if affected == 0 {
		return false, storage.ErrNotFound
	}

	var remaining int
	err = tx.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM team_members WHERE team_id = ?`,
		teamID,
	).Scan(&remaining)
	if err != nil {
		return false, fmt.Errorf("count team members: %w", err)
	}

	teamDeleted := false
	if remaining == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, teamID); err != nil {
			return false, fmt.Errorf("delete empty team: %w", err)
		}
		teamDeleted = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit remove team member: %w", err)
	}
	return teamDeleted, nil
}

// GetTeamMembership resolves the team a user holds in a room.
func (s *Store) GetTeamMembership(ctx context.Context, roomID, userID string) (team.Member, error) {
	if err := s.ready(ctx); err != nil {
		return team.Member{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT team_id, user_id, room_id, joined_at
		 FROM team_members
		 WHERE room_id = ? AND user_id = ?`,
		roomID,
		userID,
	)
	m, err := scanTeamMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return team.Member{}, storage.ErrNotFound
		}
		return team.Member{}, fmt.Errorf("get team membership: %w", err)
	}
	return m, nil
}

// ListTeamMembers returns one page of team memberships ordered by user id.
func (s *Store) ListTeamMembers(ctx context.Context, teamID string, pageSize int, pageToken string) (storage.TeamMemberPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.TeamMemberPage{}, err
	}
	if pageSize <= 0 {
		return storage.TeamMemberPage{}, fmt.Errorf("page size must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT team_id, user_id, room_id, joined_at
		 FROM team_members
		 WHERE team_id = ? AND user_id > ?
		 ORDER BY user_id ASC
		 LIMIT ?`,
		teamID,
		strings.TrimSpace(pageToken),
		pageSize+1,
	)
	if err != nil {
		return storage.TeamMemberPage{}, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	page := storage.TeamMemberPage{Members: make([]team.Member, 0, pageSize)}
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return storage.TeamMemberPage{}, fmt.Errorf("list team members: %w", err)
		}
		page.Members = append(page.Members, m)
	}
	if err := rows.Err(); err != nil {
		return storage.TeamMemberPage{}, fmt.Errorf("list team members: %w", err)
	}
	if len(page.Members) > pageSize {
		page.NextPageToken = page.Members[pageSize-1].UserID
		page.Members = page.Members[:pageSize]
	}
	return page, nil
}

func scanTeamMember(row rowScanner) (team.Member, error) {
	var m team.Member
	var joinedAt int64
	if err := row.Scan(&m.TeamID, &m.UserID, &m.RoomID, &joinedAt); err != nil {
		return team.Member{}, err
	}
	m.JoinedAt = fromMillis(joinedAt)
	return m, nil
}
