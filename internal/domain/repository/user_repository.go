package repository

import (
	"context"
	"database/sql"
	"fmt"
	"hapyland/internal/common"
	"hapyland/internal/domain/model"
)

type UserRepository interface {
	CountByUsername(ctx context.Context, tx *sql.Tx, username string) (int, error)
	Create(ctx context.Context, tx *sql.Tx, user *model.User) error
	// FindByUsername returns at most limit rows so callers can detect duplicates.
	FindByUsername(ctx context.Context, tx *sql.Tx, username string, limit int) ([]model.User, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) CountByUsername(ctx context.Context, tx *sql.Tx, username string) (int, error) {
	var count int
	err := pick(r.db, tx).QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = $1`, username).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgUserRepository.CountByUsername: %w", err)
	}
	return count, nil
}

func (r *pgUserRepository) Create(ctx context.Context, tx *sql.Tx, user *model.User) error {
	query := `INSERT INTO users (id, username, email, password, created_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := pick(r.db, tx).ExecContext(ctx, query, user.ID, user.Username, user.Email, user.Password, user.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("user with given username already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, tx *sql.Tx, username string, limit int) ([]model.User, error) {
	query := `SELECT id, username, email, password, created_at
	          FROM users WHERE username = $1 LIMIT $2`
	rows, err := pick(r.db, tx).QueryContext(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.FindByUsername query: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgUserRepository.FindByUsername scan: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.FindByUsername rows.Err: %w", err)
	}
	return users, nil
}
