package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the pgx pool used for the prediction log.
type DB struct {
	Pool *pgxpool.Pool
}

// Connect opens a pool for url and verifies it with a ping.
func Connect(ctx context.Context, url string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &DB{Pool: pool}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Entry is one logged prediction.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	RequestID string    `json:"requestId"`
	Symptoms  []string  `json:"symptoms"`
	Disease   string    `json:"disease"`
	Advice    string    `json:"advice"`
	Fallback  bool      `json:"fallback"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewEntry stamps a prediction with a fresh ID and the current time.
func NewEntry(requestID string, symptoms []string, disease, advice string, fallback bool) Entry {
	s := make([]string, len(symptoms))
	copy(s, symptoms)
	return Entry{
		ID:        uuid.New(),
		RequestID: requestID,
		Symptoms:  s,
		Disease:   disease,
		Advice:    advice,
		Fallback:  fallback,
		CreatedAt: time.Now().UTC(),
	}
}

// PredictionLog stores predictions in triage.predictions.
type PredictionLog struct {
	pool *pgxpool.Pool
}

func NewPredictionLog(db *DB) *PredictionLog {
	return &PredictionLog{pool: db.Pool}
}

// Record inserts e.
func (l *PredictionLog) Record(ctx context.Context, e Entry) error {
	query := `
		INSERT INTO triage.predictions (id, request_id, symptoms, disease, advice, fallback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := l.pool.Exec(ctx, query,
		e.ID, e.RequestID, e.Symptoms, e.Disease, e.Advice, e.Fallback, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// Recent returns up to limit predictions, newest first.
func (l *PredictionLog) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := `
		SELECT id, request_id, symptoms, disease, advice, fallback, created_at
		FROM triage.predictions
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := l.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Symptoms, &e.Disease, &e.Advice, &e.Fallback, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read predictions: %w", err)
	}
	return entries, nil
}
