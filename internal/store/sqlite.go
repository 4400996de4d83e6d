package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/forecast-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	count      INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS opportunities (
	snapshot_id  TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	id           TEXT NOT NULL,
	name         TEXT NOT NULL,
	amount       REAL NOT NULL,
	stage        TEXT NOT NULL,
	status       TEXT NOT NULL,
	owner        TEXT NOT NULL,
	created_date TEXT NOT NULL,
	close_date   TEXT,
	last_stage   TEXT,
	PRIMARY KEY (snapshot_id, id)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);
CREATE INDEX IF NOT EXISTS idx_opportunities_owner ON opportunities(snapshot_id, owner);
CREATE INDEX IF NOT EXISTS idx_opportunities_status ON opportunities(snapshot_id, status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, name string, opps []model.Opportunity) (*Snapshot, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, name, count, created_at) VALUES (?, ?, ?, ?)`,
		id, name, len(opps), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert snapshot")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO opportunities
		 (snapshot_id, id, name, amount, stage, status, owner, created_date, close_date, last_stage)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for _, o := range opps {
		_, err := stmt.ExecContext(ctx,
			id, o.ID, o.Name, o.Amount, string(o.Stage), string(o.Status), o.Owner,
			o.CreatedDate.Format(time.DateOnly), nullDate(o.CloseDate), nullStage(o.LastStage),
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert opportunity %s", o.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit snapshot")
	}

	return &Snapshot{ID: id, Name: name, Count: len(opps), CreatedAt: now}, nil
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, count, created_at FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("snapshot not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get snapshot")
	}
	return snap, nil
}

func (s *SQLiteStore) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, count, created_at FROM snapshots ORDER BY created_at DESC, id DESC LIMIT 1`)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest snapshot")
	}
	return snap, nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, count, created_at FROM snapshots ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		snaps = append(snaps, *snap)
	}
	return snaps, eris.Wrap(rows.Err(), "sqlite: list snapshots iterate")
}

func (s *SQLiteStore) LoadOpportunities(ctx context.Context, snapshotID string, f model.Filter) ([]model.Opportunity, error) {
	query := `SELECT id, name, amount, stage, status, owner, created_date, close_date, last_stage
	          FROM opportunities WHERE snapshot_id = ?`
	args := []any{snapshotID}

	if f.Owner != "" {
		query += ` AND owner = ?`
		args = append(args, f.Owner)
	}
	if f.Stage != "" {
		query += ` AND stage = ?`
		args = append(args, string(f.Stage))
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load opportunities")
	}
	defer rows.Close()

	var opps []model.Opportunity
	for rows.Next() {
		var o model.Opportunity
		var created string
		var closed, lastStage sql.NullString
		err := rows.Scan(&o.ID, &o.Name, &o.Amount, &o.Stage, &o.Status, &o.Owner,
			&created, &closed, &lastStage)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan opportunity")
		}
		if o.CreatedDate, err = time.Parse(time.DateOnly, created); err != nil {
			return nil, eris.Wrapf(err, "sqlite: created_date for %s", o.ID)
		}
		if closed.Valid {
			if o.CloseDate, err = time.Parse(time.DateOnly, closed.String); err != nil {
				return nil, eris.Wrapf(err, "sqlite: close_date for %s", o.ID)
			}
		}
		if lastStage.Valid {
			o.LastStage = model.Stage(lastStage.String)
		}
		opps = append(opps, o)
	}
	return opps, eris.Wrap(rows.Err(), "sqlite: load opportunities iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scannable) (*Snapshot, error) {
	var snap Snapshot
	if err := row.Scan(&snap.ID, &snap.Name, &snap.Count, &snap.CreatedAt); err != nil {
		return nil, err
	}
	return &snap, nil
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.DateOnly)
}

func nullStage(st model.Stage) any {
	if st == "" {
		return nil
	}
	return string(st)
}
