package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"meetme/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS meetings (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL DEFAULT '',
	comments      JSONB NOT NULL DEFAULT '[]',
	date_range    JSONB NOT NULL,
	time_range    JSONB NOT NULL,
	free_time     JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps meetings in a Postgres table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres connects to databaseURL and makes sure the meetings table exists.
func OpenPostgres(ctx context.Context, logger *slog.Logger, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required for the postgres store")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create meetings table: %w", err)
	}
	logger.Debug("Connected to postgres store")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Create(ctx context.Context, rec *models.MeetingRecord) (string, error) {
	cols, err := encodeColumns(rec)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO meetings (id, name, password_hash, comments, date_range, time_range, free_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id, rec.Name, rec.PasswordHash, cols.comments, cols.dateRange, cols.timeRange, cols.freeTime, createdAt)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.MeetingRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, password_hash, comments, date_range, time_range, free_time, created_at
		FROM meetings
		WHERE id = $1
	`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.MeetingRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, password_hash, comments, date_range, time_range, free_time, created_at
		FROM meetings
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.MeetingRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, rec *models.MeetingRecord) error {
	cols, err := encodeColumns(rec)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE meetings
		SET name = $2,
			password_hash = $3,
			comments = $4,
			date_range = $5,
			time_range = $6,
			free_time = $7
		WHERE id = $1
	`, rec.ID, rec.Name, rec.PasswordHash, cols.comments, cols.dateRange, cols.timeRange, cols.freeTime)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

type jsonColumns struct {
	comments, dateRange, timeRange, freeTime []byte
}

func encodeColumns(rec *models.MeetingRecord) (jsonColumns, error) {
	var cols jsonColumns
	var err error
	comments := rec.Comments
	if comments == nil {
		comments = []string{}
	}
	if cols.comments, err = json.Marshal(comments); err != nil {
		return cols, err
	}
	if cols.dateRange, err = json.Marshal(rec.DateRange); err != nil {
		return cols, err
	}
	if cols.timeRange, err = json.Marshal(rec.TimeRange); err != nil {
		return cols, err
	}
	if cols.freeTime, err = json.Marshal(rec.FreeTime); err != nil {
		return cols, err
	}
	return cols, nil
}

func scanRecord(row pgx.Row) (*models.MeetingRecord, error) {
	var rec models.MeetingRecord
	var cols jsonColumns
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.PasswordHash,
		&cols.comments,
		&cols.dateRange,
		&cols.timeRange,
		&cols.freeTime,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cols.comments, &rec.Comments); err != nil {
		return nil, fmt.Errorf("bad comments column: %w", err)
	}
	if err := json.Unmarshal(cols.dateRange, &rec.DateRange); err != nil {
		return nil, fmt.Errorf("bad date_range column: %w", err)
	}
	if err := json.Unmarshal(cols.timeRange, &rec.TimeRange); err != nil {
		return nil, fmt.Errorf("bad time_range column: %w", err)
	}
	if err := json.Unmarshal(cols.freeTime, &rec.FreeTime); err != nil {
		return nil, fmt.Errorf("bad free_time column: %w", err)
	}
	return &rec, nil
}
