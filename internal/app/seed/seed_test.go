package seed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hapyland/internal/domain/model"
	"hapyland/internal/domain/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sample = `
[[challenge]]
title = "Hello, Hapy!"
description = "Print a greeting."
difficulty = "easy"
starter_code = "show 'hello'"

[[challenge]]
title = "FizzBuzz"
slug = "fizz-buzz"
description = "The classic."
difficulty = "Medium"
`

func TestParse(t *testing.T) {
	got, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "hello-hapy", got[0].Slug)
	assert.Equal(t, model.DifficultyEasy, got[0].Difficulty)
	require.NotNil(t, got[0].StarterCode)
	assert.Equal(t, "show 'hello'", *got[0].StarterCode)
	assert.NotEmpty(t, got[0].ID)

	assert.Equal(t, "fizz-buzz", got[1].Slug)
	assert.Equal(t, model.DifficultyMedium, got[1].Difficulty)
	assert.Nil(t, got[1].StarterCode)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"missing title":      "[[challenge]]\ndifficulty = \"easy\"\n",
		"unknown difficulty": "[[challenge]]\ntitle = \"x\"\ndifficulty = \"brutal\"\n",
		"duplicate slug":     "[[challenge]]\ntitle = \"A\"\ndifficulty = \"easy\"\n[[challenge]]\ntitle = \"a\"\ndifficulty = \"easy\"\n",
		"unknown field":      "[[challenge]]\ntitle = \"A\"\ndifficulty = \"easy\"\npoints = 3\n",
		"not toml":           "[[challenge",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestLoad_UpsertsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	challenges, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO challenges .* ON CONFLICT \(slug\) DO UPDATE`).
		WithArgs(sqlmock.AnyArg(), "Hello, Hapy!", "hello-hapy", sqlmock.AnyArg(), "Easy", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO challenges`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = Load(context.Background(), db, repository.NewPgChallengeRepository(db), challenges, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	challenges, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO challenges`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO challenges`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = Load(context.Background(), db, repository.NewPgChallengeRepository(db), challenges, zap.NewNop())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
