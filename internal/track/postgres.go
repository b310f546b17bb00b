package track

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/XXcipherX/tiny11-automated/internal/release"
)

// pgxPool is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore keeps tracking state in two tables:
//
//	CREATE TABLE tracked_builds (
//	    build_id TEXT PRIMARY KEY,
//	    record   JSONB NOT NULL
//	);
//	CREATE TABLE tracking_meta (
//	    id          INT PRIMARY KEY CHECK (id = 1),
//	    last_check  TIMESTAMPTZ,
//	    check_count BIGINT NOT NULL
//	);
type PostgresStore struct {
	pool pgxPool
	log  *zap.Logger
}

// PostgresConfig controls the tracking connection pool.
type PostgresConfig struct {
	DSN      string
	MaxConns int32
}

// NewPostgresStore connects a pool and returns the store.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig, log *zap.Logger) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewPostgresStoreWithPool(pool, log), nil
}

// NewPostgresStoreWithPool constructs a store from an existing pool,
// primarily for testing.
func NewPostgresStoreWithPool(pool pgxPool, log *zap.Logger) *PostgresStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostgresStore{pool: pool, log: log}
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Load reads the full tracking state. An empty database yields the default
// state.
func (s *PostgresStore) Load(ctx context.Context) (State, error) {
	state := NewState()

	rows, err := s.pool.Query(ctx, `SELECT build_id, record FROM tracked_builds`)
	if err != nil {
		return State{}, fmt.Errorf("query tracked builds: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return State{}, fmt.Errorf("scan tracked build: %w", err)
		}
		var rec release.Release
		if err := json.Unmarshal(raw, &rec); err != nil {
			s.log.Warn("Skipping undecodable tracked build", zap.String("build_id", id), zap.Error(err))
			continue
		}
		state.Builds[id] = rec
	}
	if err := rows.Err(); err != nil {
		return State{}, fmt.Errorf("iterate tracked builds: %w", err)
	}

	var (
		lastCheck  *time.Time
		checkCount int
	)
	err = s.pool.QueryRow(ctx, `SELECT last_check, check_count FROM tracking_meta WHERE id = 1`).
		Scan(&lastCheck, &checkCount)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return State{}, fmt.Errorf("query tracking meta: %w", err)
	default:
		state.LastCheck = lastCheck
		state.CheckCount = checkCount
	}
	return state, nil
}

// Save upserts every tracked build and the cycle counters.
func (s *PostgresStore) Save(ctx context.Context, state State) error {
	for id, rec := range state.Builds {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal build %s: %w", id, err)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO tracked_builds (build_id, record) VALUES ($1, $2)
			 ON CONFLICT (build_id) DO UPDATE SET record = EXCLUDED.record`,
			id, raw)
		if err != nil {
			return fmt.Errorf("upsert build %s: %w", id, err)
		}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tracking_meta (id, last_check, check_count) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET last_check = EXCLUDED.last_check, check_count = EXCLUDED.check_count`,
		state.LastCheck, state.CheckCount)
	if err != nil {
		return fmt.Errorf("upsert tracking meta: %w", err)
	}
	return nil
}
