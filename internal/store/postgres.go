package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/forecast-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it,
// which keeps the Postgres tests off a live database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL,
	count      INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS opportunities (
	snapshot_id  TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	id           TEXT NOT NULL,
	name         TEXT NOT NULL,
	amount       DOUBLE PRECISION NOT NULL,
	stage        TEXT NOT NULL,
	status       TEXT NOT NULL,
	owner        TEXT NOT NULL,
	created_date DATE NOT NULL,
	close_date   DATE,
	last_stage   TEXT,
	PRIMARY KEY (snapshot_id, id)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);
CREATE INDEX IF NOT EXISTS idx_opportunities_owner ON opportunities(snapshot_id, owner);
CREATE INDEX IF NOT EXISTS idx_opportunities_status ON opportunities(snapshot_id, status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, name string, opps []model.Opportunity) (*Snapshot, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO snapshots (id, name, count, created_at) VALUES ($1, $2, $3, $4)`,
		id, name, len(opps), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert snapshot")
	}

	for _, o := range opps {
		_, err := tx.Exec(ctx,
			`INSERT INTO opportunities
			 (snapshot_id, id, name, amount, stage, status, owner, created_date, close_date, last_stage)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			id, o.ID, o.Name, o.Amount, string(o.Stage), string(o.Status), o.Owner,
			o.CreatedDate, pgDate(o.CloseDate), pgStage(o.LastStage),
		)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: insert opportunity %s", o.ID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit snapshot")
	}

	return &Snapshot{ID: id, Name: name, Count: len(opps), CreatedAt: now}, nil
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, count, created_at FROM snapshots WHERE id = $1`, id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("snapshot not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get snapshot")
	}
	return snap, nil
}

func (s *PostgresStore) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, count, created_at FROM snapshots ORDER BY created_at DESC, id DESC LIMIT 1`)
	snap, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest snapshot")
	}
	return snap, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, count, created_at FROM snapshots ORDER BY created_at DESC, id DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list snapshots")
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan snapshot")
		}
		snaps = append(snaps, *snap)
	}
	return snaps, eris.Wrap(rows.Err(), "postgres: list snapshots iterate")
}

func (s *PostgresStore) LoadOpportunities(ctx context.Context, snapshotID string, f model.Filter) ([]model.Opportunity, error) {
	query := `SELECT id, name, amount, stage, status, owner, created_date, close_date, last_stage
	          FROM opportunities WHERE snapshot_id = $1`
	args := []any{snapshotID}

	if f.Owner != "" {
		args = append(args, f.Owner)
		query += ` AND owner = $` + strconv.Itoa(len(args))
	}
	if f.Stage != "" {
		args = append(args, string(f.Stage))
		query += ` AND stage = $` + strconv.Itoa(len(args))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load opportunities")
	}
	defer rows.Close()

	var opps []model.Opportunity
	for rows.Next() {
		var o model.Opportunity
		var stage, status string
		var closed sql.NullTime
		var lastStage sql.NullString
		err := rows.Scan(&o.ID, &o.Name, &o.Amount, &stage, &status, &o.Owner,
			&o.CreatedDate, &closed, &lastStage)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan opportunity")
		}
		o.Stage = model.Stage(stage)
		o.Status = model.Status(status)
		if closed.Valid {
			o.CloseDate = closed.Time
		}
		if lastStage.Valid {
			o.LastStage = model.Stage(lastStage.String)
		}
		opps = append(opps, o)
	}
	return opps, eris.Wrap(rows.Err(), "postgres: load opportunities iterate")
}

func pgDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func pgStage(st model.Stage) any {
	if st == "" {
		return nil
	}
	return string(st)
}

