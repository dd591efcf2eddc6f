package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"hapyland/internal/app/seed"
	"hapyland/internal/domain/repository"
	"hapyland/internal/platform/config"
	"hapyland/internal/platform/database"
	"hapyland/internal/platform/logger"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	cmd := &cli.Command{
		Name:  "seed",
		Usage: "load coding challenges from a TOML file into the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Value:   "seeds/challenges.toml",
				Usage:   "path to the challenge file",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "parse and validate the file without touching the database",
			},
		},
		Action: runSeed,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func runSeed(ctx context.Context, cmd *cli.Command) error {
	config.Load()

	zl, err := logger.New(config.AppConfig.IsDevelopment())
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer zl.Sync()

	path := cmd.String("file")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()

	challenges, err := seed.Parse(f)
	if err != nil {
		return err
	}
	zl.Info("parsed seed file", zap.String("file", path), zap.Int("challenges", len(challenges)))

	if cmd.Bool("dry-run") {
		for _, c := range challenges {
			fmt.Printf("%-30s %-8s %s\n", c.Slug, c.Difficulty, c.Title)
		}
		return nil
	}

	if err := database.Connect(zl); err != nil {
		return err
	}
	defer database.Close(zl)

	return seed.Load(ctx, database.DB, repository.NewPgChallengeRepository(database.DB), challenges, zl)
}
