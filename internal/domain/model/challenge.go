package model

import (
	"time"
)

type ChallengeDifficulty string

const (
	DifficultyEasy   ChallengeDifficulty = "Easy"
	DifficultyMedium ChallengeDifficulty = "Medium"
	DifficultyHard   ChallengeDifficulty = "Hard"
)

// Challenge is listed as stored; this service never writes it outside the seeder.
type Challenge struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Slug        string              `json:"slug"`
	Description string              `json:"description"`
	Difficulty  ChallengeDifficulty `json:"difficulty"`
	StarterCode *string             `json:"starter_code,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}
