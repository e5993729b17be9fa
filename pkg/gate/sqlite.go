package gate

import (
	"context"
	"database/sql"
	"time"

	"gitlab.com/tozd/go/errors"
	_ "modernc.org/sqlite"
)

const quotaSchema = `CREATE TABLE IF NOT EXISTS quota_usage (
	client TEXT NOT NULL,
	day    TEXT NOT NULL,
	used   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (client, day)
)`

// 💾 SQLiteQuota persists daily usage so limits survive restarts
type SQLiteQuota struct {
	db    *sql.DB
	limit int
	now   func() time.Time
}

// 🏭 OpenSQLiteQuota opens (and migrates) the usage store at path.
// Use ":memory:" for a throwaway store.
func OpenSQLiteQuota(ctx context.Context, path string, limit int, now func() time.Time) (*SQLiteQuota, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Errorf("opening quota store: %w", err)
	}
	// one connection serializes Take and keeps :memory: stores shared
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, quotaSchema); err != nil {
		db.Close()
		return nil, errors.Errorf("creating quota table: %w", err)
	}

	if now == nil {
		now = time.Now
	}
	return &SQLiteQuota{db: db, limit: limit, now: now}, nil
}

func (q *SQLiteQuota) Take(ctx context.Context, client string) (Usage, error) {
	today, reset := day(q.now())

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, errors.Errorf("starting quota transaction: %w", err)
	}
	defer tx.Rollback()

	var used int
	err = tx.QueryRowContext(ctx, `SELECT used FROM quota_usage WHERE client = ? AND day = ?`, client, today).Scan(&used)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Usage{}, errors.Errorf("reading quota usage: %w", err)
	}

	if q.limit > 0 && used >= q.limit {
		return Usage{Used: used, Limit: q.limit, ResetAt: reset},
			errors.Errorf("%w: %d/%d used, resets at %s", ErrQuotaExceeded, used, q.limit, reset.Format(time.RFC3339))
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO quota_usage (client, day, used) VALUES (?, ?, 1)
		 ON CONFLICT (client, day) DO UPDATE SET used = used + 1`,
		client, today)
	if err != nil {
		return Usage{}, errors.Errorf("recording quota usage: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Usage{}, errors.Errorf("committing quota usage: %w", err)
	}

	return Usage{Used: used + 1, Limit: q.limit, ResetAt: reset}, nil
}

// Prune deletes usage rows older than the current day
func (q *SQLiteQuota) Prune(ctx context.Context) (int64, error) {
	today, _ := day(q.now())
	res, err := q.db.ExecContext(ctx, `DELETE FROM quota_usage WHERE day < ?`, today)
	if err != nil {
		return 0, errors.Errorf("pruning quota usage: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the store
func (q *SQLiteQuota) Close() error {
	return q.db.Close()
}
