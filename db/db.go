// Package db stores the optional command log in Postgres.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx postgres driver registered as 'pgx'

	"github.com/onnwee/bunt/bot"
)

// ErrNoDSN is returned by Connect when no DSN is configured.
var ErrNoDSN = errors.New("db: no DSN configured")

// Connect opens a Postgres pool for dsn and verifies it answers within 5s.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, ErrNoDSN
	}
	database, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	database.SetMaxOpenConns(4)
	database.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return database, nil
}

// Migrate applies idempotent schema changes for the command log.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS command_log (
			id BIGSERIAL PRIMARY KEY,
			correlation_id TEXT NOT NULL,
			channel TEXT NOT NULL DEFAULT '',
			username TEXT NOT NULL DEFAULT '',
			verb TEXT NOT NULL,
			outcome TEXT NOT NULL,
			duration_ms BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_command_log_created_at ON command_log(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_command_log_verb ON command_log(verb, created_at DESC)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// CommandLog writes handled commands. It implements bot.CommandLog.
type CommandLog struct {
	DB *sql.DB
}

// RecordCommand inserts one row.
func (l *CommandLog) RecordCommand(ctx context.Context, rec bot.CommandRecord) error {
	at := rec.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := l.DB.ExecContext(ctx,
		`INSERT INTO command_log (correlation_id, channel, username, verb, outcome, duration_ms, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rec.CorrelationID, rec.Channel, rec.User, rec.Verb, rec.Outcome, rec.Duration.Milliseconds(), at)
	if err != nil {
		return fmt.Errorf("insert command_log: %w", err)
	}
	return nil
}

// Recent returns up to limit rows, newest first.
func (l *CommandLog) Recent(ctx context.Context, limit int) ([]bot.CommandRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.DB.QueryContext(ctx,
		`SELECT correlation_id, channel, username, verb, outcome, duration_ms, created_at FROM command_log ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query command_log: %w", err)
	}
	defer rows.Close()

	var out []bot.CommandRecord
	for rows.Next() {
		var (
			rec bot.CommandRecord
			ms  int64
		)
		if err := rows.Scan(&rec.CorrelationID, &rec.Channel, &rec.User, &rec.Verb, &rec.Outcome, &ms, &rec.At); err != nil {
			return nil, fmt.Errorf("scan command_log: %w", err)
		}
		rec.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}
