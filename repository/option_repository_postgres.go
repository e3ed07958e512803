package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"loan-workout/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS workout_options (
	resolution_id TEXT    NOT NULL,
	option_id     INTEGER NOT NULL,
	data          JSONB   NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (resolution_id, option_id)
);
CREATE TABLE IF NOT EXISTS workout_persisting (
	resolution_id TEXT  PRIMARY KEY,
	data          JSONB NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// OptionRepositoryPostgres stores options as JSONB rows keyed by resolution
// and option id.
type OptionRepositoryPostgres struct {
	db *sql.DB
}

// OpenPostgres connects and verifies the connection.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func NewOptionRepositoryPostgres(db *sql.DB) *OptionRepositoryPostgres {
	return &OptionRepositoryPostgres{db: db}
}

// EnsureSchema creates the option tables when they are missing.
func (r *OptionRepositoryPostgres) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create option schema: %w", err)
	}
	return nil
}

func (r *OptionRepositoryPostgres) List(ctx context.Context, resolutionID string) ([]domain.Option, error) {
	query := `
		SELECT data
		FROM workout_options
		WHERE resolution_id = $1
		ORDER BY option_id`
	rows, err := r.db.QueryContext(ctx, query, resolutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	defer rows.Close()

	var options []domain.Option
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		var opt domain.Option
		if err := json.Unmarshal(raw, &opt); err != nil {
			return nil, fmt.Errorf("failed to decode option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	return options, nil
}

const upsertOption = `
	INSERT INTO workout_options (resolution_id, option_id, data, updated_at)
	VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
	ON CONFLICT (resolution_id, option_id)
	DO UPDATE SET data = EXCLUDED.data, updated_at = CURRENT_TIMESTAMP`

func (r *OptionRepositoryPostgres) Save(ctx context.Context, resolutionID string, option domain.Option) error {
	raw, err := json.Marshal(option)
	if err != nil {
		return fmt.Errorf("failed to encode option: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, upsertOption, resolutionID, option.ID, raw); err != nil {
		return fmt.Errorf("failed to save option: %w", err)
	}
	return nil
}

func (r *OptionRepositoryPostgres) Replace(ctx context.Context, resolutionID string, options []domain.Option) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM workout_options WHERE resolution_id = $1`, resolutionID); err != nil {
		return fmt.Errorf("failed to clear options: %w", err)
	}
	for _, opt := range options {
		raw, err := json.Marshal(opt)
		if err != nil {
			return fmt.Errorf("failed to encode option: %w", err)
		}
		if _, err := tx.ExecContext(ctx, upsertOption, resolutionID, opt.ID, raw); err != nil {
			return fmt.Errorf("failed to save option: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit options: %w", err)
	}
	return nil
}

func (r *OptionRepositoryPostgres) SavePersistingData(ctx context.Context, resolutionID string, data domain.PersistingData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode persisting data: %w", err)
	}
	query := `
		INSERT INTO workout_persisting (resolution_id, data, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (resolution_id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, query, resolutionID, raw); err != nil {
		return fmt.Errorf("failed to save persisting data: %w", err)
	}
	return nil
}

func (r *OptionRepositoryPostgres) PersistingData(ctx context.Context, resolutionID string) (domain.PersistingData, error) {
	var data domain.PersistingData
	var raw []byte
	query := `SELECT data FROM workout_persisting WHERE resolution_id = $1`
	err := r.db.QueryRowContext(ctx, query, resolutionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return data, ErrNotFound
	}
	if err != nil {
		return data, fmt.Errorf("failed to load persisting data: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("failed to decode persisting data: %w", err)
	}
	return data, nil
}
