package service

import (
	"context"
	"database/sql"
	"fmt"

	"hapyland/internal/domain/model"
	"hapyland/internal/domain/repository"
	"hapyland/internal/platform/database"
)

const DefaultChallengeLimit = 10

type ChallengeService struct {
	challengeRepo repository.ChallengeRepository
	db            *sql.DB
}

func NewChallengeService(challengeRepo repository.ChallengeRepository, db *sql.DB) *ChallengeService {
	return &ChallengeService{challengeRepo: challengeRepo, db: db}
}

// List returns up to limit challenges. A non-positive limit yields an empty list without
// touching the store.
func (s *ChallengeService) List(ctx context.Context, limit int) ([]model.Challenge, error) {
	if limit <= 0 {
		return []model.Challenge{}, nil
	}

	var challenges []model.Challenge
	err := database.WithTx(ctx, s.db, database.ReadOnly, func(tx *sql.Tx) error {
		var err error
		challenges, err = s.challengeRepo.List(ctx, tx, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}
