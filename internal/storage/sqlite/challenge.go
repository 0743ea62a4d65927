package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/flagfall.space/internal/challenge"
	"github.com/louisbranch/flagfall.space/internal/challenge/filter"
	"github.com/louisbranch/flagfall.space/internal/storage"
)

// CreateChallenge inserts the challenge with its flags and tags in one
// transaction.
func (s *Store) CreateChallenge(ctx context.Context, c challenge.Challenge) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("challenge id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create challenge: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO challenges (id, room_id, name, description, max_attempts,
		   creator_id, updater_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.RoomID,
		c.Name,
		c.Description,
		c.MaxAttempts,
		c.CreatorID,
		c.UpdaterID,
		toMillis(c.CreatedAt),
		toMillis(c.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert challenge: %w", err)
	}

	if err := insertChallengeValues(ctx, tx, "challenge_flags", "flag", c.ID, c.Flags); err != nil {
		return err
	}
	if err := insertChallengeValues(ctx, tx, "challenge_tags", "tag", c.ID, c.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create challenge: %w", err)
	}
	return nil
}

// GetChallenge returns one challenge with its flags and tags.
func (s *Store) GetChallenge(ctx context.Context, id string) (challenge.Challenge, error) {
	if err := s.ready(ctx); err != nil {
		return challenge.Challenge{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, room_id, name, description, max_attempts,
		   creator_id, updater_id, created_at, updated_at
		 FROM challenges WHERE id = ?`,
		id,
	)
	c, err := scanChallenge(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return challenge.Challenge{}, storage.ErrNotFound
		}
		return challenge.Challenge{}, fmt.Errorf("get challenge: %w", err)
	}

	c.Flags, err = s.challengeValues(ctx, "challenge_flags", "flag", c.ID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	c.Tags, err = s.challengeValues(ctx, "challenge_tags", "tag", c.ID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	return c, nil
}

// UpdateChallenge replaces the challenge row and its flags and tags.
func (s *Store) UpdateChallenge(ctx context.Context, c challenge.Challenge) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update challenge: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(
		ctx,
		`UPDATE challenges
		 SET name = ?, description = ?, max_attempts = ?, updater_id = ?, updated_at = ?
		 WHERE id = ?`,
		c.Name,
		c.Description,
		c.MaxAttempts,
		c.UpdaterID,
		toMillis(c.UpdatedAt),
		c.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("update challenge: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update challenge: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	for _, table := range []string{"challenge_flags", "challenge_tags"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE challenge_id = ?`, c.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := insertChallengeValues(ctx, tx, "challenge_flags", "flag", c.ID, c.Flags); err != nil {
		return err
	}
	if err := insertChallengeValues(ctx, tx, "challenge_tags", "tag", c.ID, c.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update challenge: %w", err)
	}
	return nil
}

// DeleteChallenge removes one challenge. Flags, tags, and solves cascade.
func (s *Store) DeleteChallenge(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM challenges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListChallenges returns one page of a room's challenges ordered by id,
// optionally narrowed by a translated filter condition. The page carries
// challenge metadata only; flags and tags are loaded per challenge.
func (s *Store) ListChallenges(ctx context.Context, roomID string, cond filter.SQLCondition, pageSize int, pageToken string) (storage.ChallengePage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ChallengePage{}, err
	}
	if pageSize <= 0 {
		return storage.ChallengePage{}, fmt.Errorf("page size must be greater than zero")
	}

	query := `SELECT c.id, c.room_id, c.name, c.description, c.max_attempts,
	   c.creator_id, c.updater_id, c.created_at, c.updated_at
	 FROM challenges c
	 WHERE c.room_id = ? AND c.id > ?`
	params := []any{roomID, strings.TrimSpace(pageToken)}
	if cond.Clause != "" {
		query += " AND " + cond.Clause
		params = append(params, cond.Params...)
	}
	query += " ORDER BY c.id ASC LIMIT ?"
	params = append(params, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return storage.ChallengePage{}, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	page := storage.ChallengePage{Challenges: make([]challenge.Challenge, 0, pageSize)}
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return storage.ChallengePage{}, fmt.Errorf("list challenges: %w", err)
		}
		page.Challenges = append(page.Challenges, c)
	}
	if err := rows.Err(); err != nil {
		return storage.ChallengePage{}, fmt.Errorf("list challenges: %w", err)
	}
	if len(page.Challenges) > pageSize {
		page.NextPageToken = page.Challenges[pageSize-1].ID
		page.Challenges = page.Challenges[:pageSize]
	}

	for i := range page.Challenges {
		tags, err := s.challengeValues(ctx, "challenge_tags", "tag", page.Challenges[i].ID)
		if err != nil {
			return storage.ChallengePage{}, err
		}
		page.Challenges[i].Tags = tags
	}
	return page, nil
}

func insertChallengeValues(ctx context.Context, tx *sql.Tx, table, column, challengeID string, values []string) error {
	for _, value := range values {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO `+table+` (challenge_id, `+column+`) VALUES (?, ?)`,
			challengeID,
			value,
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				continue
			}
			return fmt.Errorf("insert %s: %w", column, err)
		}
	}
	return nil
}

func (s *Store) challengeValues(ctx context.Context, table, column, challengeID string) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+column+` FROM `+table+` WHERE challenge_id = ? ORDER BY `+column+` ASC`,
		challengeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("list %s: %w", column, err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", column, err)
	}
	return values, nil
}

func scanChallenge(row rowScanner) (challenge.Challenge, error) {
	var c challenge.Challenge
	var createdAt, updatedAt int64
	err := row.Scan(
		&c.ID,
		&c.RoomID,
		&c.Name,
		&c.Description,
		&c.MaxAttempts,
		&c.CreatorID,
		&c.UpdaterID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return challenge.Challenge{}, err
	}
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}
