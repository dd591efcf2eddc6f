package repository

import (
	"context"
	"database/sql"
	"fmt"
	"hapyland/internal/domain/model"
)

type ChallengeRepository interface {
	List(ctx context.Context, tx *sql.Tx, limit int) ([]model.Challenge, error)
	// Upsert is only used by the seeder; the API never writes challenges.
	Upsert(ctx context.Context, tx *sql.Tx, c *model.Challenge) error
}

type pgChallengeRepository struct {
	db *sql.DB
}

func NewPgChallengeRepository(db *sql.DB) ChallengeRepository {
	return &pgChallengeRepository{db: db}
}

// List returns challenges in store order.
func (r *pgChallengeRepository) List(ctx context.Context, tx *sql.Tx, limit int) ([]model.Challenge, error) {
	query := `SELECT id, title, slug, description, difficulty, starter_code, created_at
	          FROM challenges LIMIT $1`
	rows, err := pick(r.db, tx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.List query: %w", err)
	}
	defer rows.Close()

	challenges := []model.Challenge{}
	for rows.Next() {
		var c model.Challenge
		if err := rows.Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.Difficulty, &c.StarterCode, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgChallengeRepository.List scan: %w", err)
		}
		challenges = append(challenges, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.List rows.Err: %w", err)
	}
	return challenges, nil
}

func (r *pgChallengeRepository) Upsert(ctx context.Context, tx *sql.Tx, c *model.Challenge) error {
	query := `INSERT INTO challenges (id, title, slug, description, difficulty, starter_code, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (slug) DO UPDATE SET
	              title = EXCLUDED.title,
	              description = EXCLUDED.description,
	              difficulty = EXCLUDED.difficulty,
	              starter_code = EXCLUDED.starter_code`
	_, err := pick(r.db, tx).ExecContext(ctx, query, c.ID, c.Title, c.Slug, c.Description, c.Difficulty, c.StarterCode, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Upsert %s: %w", c.Slug, err)
	}
	return nil
}
