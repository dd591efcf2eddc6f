// Package seed loads coding challenges from a TOML file into the store. The API only
// reads challenges; this is how they get there.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"hapyland/internal/domain/model"
	"hapyland/internal/domain/repository"
	"hapyland/internal/platform/database"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

type entry struct {
	Title       string  `toml:"title"`
	Slug        string  `toml:"slug"`
	Description string  `toml:"description"`
	Difficulty  string  `toml:"difficulty"`
	StarterCode *string `toml:"starter_code"`
}

type file struct {
	Challenges []entry `toml:"challenge"`
}

var difficulties = map[string]model.ChallengeDifficulty{
	"easy":   model.DifficultyEasy,
	"medium": model.DifficultyMedium,
	"hard":   model.DifficultyHard,
}

// Parse reads [[challenge]] tables. A missing slug is derived from the title; slugs must
// be unique within the file.
func Parse(r io.Reader) ([]model.Challenge, error) {
	var f file
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding seed file: %w", err)
	}

	now := time.Now()
	seen := make(map[string]bool, len(f.Challenges))
	challenges := make([]model.Challenge, 0, len(f.Challenges))
	for i, e := range f.Challenges {
		if strings.TrimSpace(e.Title) == "" {
			return nil, fmt.Errorf("challenge #%d: title is required", i+1)
		}
		difficulty, ok := difficulties[strings.ToLower(e.Difficulty)]
		if !ok {
			return nil, fmt.Errorf("challenge %q: unknown difficulty %q", e.Title, e.Difficulty)
		}

		s := e.Slug
		if s == "" {
			s = slug.Make(e.Title)
		}
		if seen[s] {
			return nil, fmt.Errorf("challenge %q: duplicate slug %q", e.Title, s)
		}
		seen[s] = true

		challenges = append(challenges, model.Challenge{
			ID:          uuid.NewString(),
			Title:       e.Title,
			Slug:        s,
			Description: e.Description,
			Difficulty:  difficulty,
			StarterCode: e.StarterCode,
			CreatedAt:   now,
		})
	}
	return challenges, nil
}

// Load upserts every challenge in one transaction; re-running it updates in place.
func Load(ctx context.Context, db *sql.DB, repo repository.ChallengeRepository, challenges []model.Challenge, logger *zap.Logger) error {
	return database.WithTx(ctx, db, nil, func(tx *sql.Tx) error {
		for i := range challenges {
			if err := repo.Upsert(ctx, tx, &challenges[i]); err != nil {
				return err
			}
			logger.Info("seeded challenge", zap.String("slug", challenges[i].Slug))
		}
		return nil
	})
}
