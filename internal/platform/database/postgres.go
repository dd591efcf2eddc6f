package database

import (
	"context"
	"database/sql"
	"fmt"
	"hapyland/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"go.uber.org/zap"
)

var DB *sql.DB

func Connect(logger *zap.Logger) error {
	db, err := Open(config.AppConfig)
	if err != nil {
		return err
	}
	DB = db
	logger.Info("connected to PostgreSQL", zap.String("host", config.AppConfig.DBHost), zap.String("db", config.AppConfig.DBName))
	return nil
}

// Open returns a pooled handle. Requests never share a connection directly: each one
// borrows from the pool through WithTx.
func Open(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DBConnStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnLifetime)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db, nil
}

func Close(logger *zap.Logger) {
	if DB != nil {
		if err := DB.Close(); err != nil {
			logger.Warn("closing database", zap.Error(err))
			return
		}
		logger.Info("database connection closed")
	}
}

// WithTx runs fn inside a transaction. The transaction is committed when fn returns nil
// and rolled back on error or panic, so the connection always goes back to the pool.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ReadOnly is the option set used by listing and lookup requests.
var ReadOnly = &sql.TxOptions{ReadOnly: true}
