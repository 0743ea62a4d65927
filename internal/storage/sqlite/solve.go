package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/flagfall.space/internal/storage"
)

// CreateSolve inserts one solve. The (challenge, team) primary key is the
// authoritative guard against a concurrent duplicate submission.
func (s *Store) CreateSolve(ctx context.Context, solve storage.Solve) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO solves (challenge_id, team_id, room_id, solved_by, solved_at)
		 VALUES (?, ?, ?, ?, ?)`,
		solve.ChallengeID,
		solve.TeamID,
		solve.RoomID,
		solve.SolvedBy,
		toMillis(solve.SolvedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create solve: %w", err)
	}
	return nil
}

// SolveExists reports whether the team already solved the challenge.
func (s *Store) SolveExists(ctx context.Context, challengeID, teamID string) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	var found int
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT 1 FROM solves WHERE challenge_id = ? AND team_id = ?`,
		challengeID,
		teamID,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("solve exists: %w", err)
	}
	return true, nil
}

// ListTeamSolves returns one page of a team's solves ordered by challenge id.
func (s *Store) ListTeamSolves(ctx context.Context, teamID string, pageSize int, pageToken string) (storage.SolvePage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.SolvePage{}, err
	}
	if pageSize <= 0 {
		return storage.SolvePage{}, fmt.Errorf("page size must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT challenge_id, team_id, room_id, solved_by, solved_at
		 FROM solves
		 WHERE team_id = ? AND challenge_id > ?
		 ORDER BY challenge_id ASC
		 LIMIT ?`,
		teamID,
		strings.TrimSpace(pageToken),
		pageSize+1,
	)
	if err != nil {
		return storage.SolvePage{}, fmt.Errorf("list team solves: %w", err)
	}
	defer rows.Close()

	page := storage.SolvePage{Solves: make([]storage.Solve, 0, pageSize)}
	for rows.Next() {
		var solve storage.Solve
		var solvedAt int64
		if err := rows.Scan(&solve.ChallengeID, &solve.TeamID, &solve.RoomID, &solve.SolvedBy, &solvedAt); err != nil {
			return storage.SolvePage{}, fmt.Errorf("list team solves: %w", err)
		}
		solve.SolvedAt = fromMillis(solvedAt)
		page.Solves = append(page.Solves, solve)
	}
	if err := rows.Err(); err != nil {
		return storage.SolvePage{}, fmt.Errorf("list team solves: %w", err)
	}
	if len(page.Solves) > pageSize {
		page.NextPageToken = page.Solves[pageSize-1].ChallengeID
		page.Solves = page.Solves[:pageSize]
	}
	return page, nil
}
