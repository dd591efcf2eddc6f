package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"hapyland/internal/common"
	"hapyland/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestPgUserRepository_CountByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE username = \$1`).
		WithArgs("ada").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := repo.CountByUsername(context.Background(), nil, "ada")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_CreateInsideTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("id-1", "ada", "ada@example.com", "secret", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = repo.Create(context.Background(), tx, &model.User{
		ID: "id-1", Username: "ada", Email: "ada@example.com", Password: "secret", CreatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_CreateUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: common.PgUniqueViolation})

	err := repo.Create(context.Background(), nil, &model.User{ID: "id-1", Username: "ada"})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestPgUserRepository_FindByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, username, email, password, created_at\s+FROM users WHERE username = \$1 LIMIT \$2`).
		WithArgs("ada", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password", "created_at"}).
			AddRow("id-1", "ada", "ada@example.com", "secret", now))

	users, err := repo.FindByUsername(context.Background(), nil, "ada", 2)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ada", users[0].Username)
	assert.Equal(t, "secret", users[0].Password)
	assert.NoError(t, mock.ExpectationsWereMet())
}
