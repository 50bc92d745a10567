package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
)

// openSQLite is a package-level var to allow test injection.
var openSQLite = sql.Open

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps the whole goal tree in one local SQLite file. All access
// goes through a single connection, which also serializes transactions.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}
	db, err := openSQLite("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}
	return &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS ambitions (
		id          TEXT PRIMARY KEY,
		user_id     TEXT    NOT NULL,
		title       TEXT    NOT NULL,
		description TEXT    NOT NULL DEFAULT '',
		year        INTEGER NOT NULL,
		category    TEXT    NOT NULL,
		priority    TEXT    NOT NULL,
		created_at  TEXT    NOT NULL,
		updated_at  TEXT    NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ambitions_user ON ambitions(user_id);

	CREATE TABLE IF NOT EXISTS key_results (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		ambition_id   TEXT NOT NULL,
		title         TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		target_value  REAL NOT NULL DEFAULT 0,
		current_value REAL NOT NULL DEFAULT 0,
		unit          TEXT NOT NULL DEFAULT '',
		deadline      TEXT,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_key_results_ambition ON key_results(ambition_id);
	CREATE INDEX IF NOT EXISTS idx_key_results_user ON key_results(user_id);

	CREATE TABLE IF NOT EXISTS quarterly_objectives (
		id          TEXT PRIMARY KEY,
		user_id     TEXT    NOT NULL,
		ambition_id TEXT,
		title       TEXT    NOT NULL,
		description TEXT    NOT NULL DEFAULT '',
		quarter     TEXT    NOT NULL,
		year        INTEGER NOT NULL,
		created_at  TEXT    NOT NULL,
		updated_at  TEXT    NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_objectives_user ON quarterly_objectives(user_id);

	CREATE TABLE IF NOT EXISTS quarterly_key_results (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		objective_id  TEXT NOT NULL,
		title         TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		target_value  REAL NOT NULL DEFAULT 0,
		current_value REAL NOT NULL DEFAULT 0,
		unit          TEXT NOT NULL DEFAULT '',
		deadline      TEXT,
		weight        REAL NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_qkr_objective ON quarterly_key_results(objective_id);

	CREATE TABLE IF NOT EXISTS actions (
		id                      TEXT PRIMARY KEY,
		user_id                 TEXT    NOT NULL,
		quarterly_key_result_id TEXT,
		objective_id            TEXT,
		board_id                TEXT    NOT NULL,
		title                   TEXT    NOT NULL,
		description             TEXT    NOT NULL DEFAULT '',
		status                  TEXT    NOT NULL,
		priority                TEXT    NOT NULL,
		deadline                TEXT,
		order_index             INTEGER NOT NULL DEFAULT 0,
		completed_at            TEXT,
		created_at              TEXT    NOT NULL,
		updated_at              TEXT    NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_actions_column ON actions(board_id, status, order_index);
	CREATE INDEX IF NOT EXISTS idx_actions_user ON actions(user_id);

	CREATE TABLE IF NOT EXISTS board_columns (
		board_id   TEXT    NOT NULL,
		status     TEXT    NOT NULL,
		generation INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (board_id, status)
	);

	CREATE TABLE IF NOT EXISTS progress_snapshots (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		entity_id   TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		value       REAL NOT NULL,
		recorded_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_entity ON progress_snapshots(entity_id, recorded_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("store: migrate sqlite: %w", err)
	}
	return nil
}

// ─── Row helpers ─────────────────────────────────────────────────────────────

type scanner interface {
	Scan(dest ...any) error
}

func ts(t time.Time) string { return t.UTC().Format(tsLayout) }

func tsPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return ts(*t)
}

func textOf(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unexpected column type %T", src)
	}
}

type timeCol struct{ dst *time.Time }

func (c timeCol) Scan(src any) error {
	if t, ok := src.(time.Time); ok {
		*c.dst = t.UTC()
		return nil
	}
	s, err := textOf(src)
	if err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*c.dst = t.UTC()
	return nil
}

type nullTimeCol struct{ dst **time.Time }

func (c nullTimeCol) Scan(src any) error {
	if src == nil {
		*c.dst = nil
		return nil
	}
	var t time.Time
	if err := (timeCol{&t}).Scan(src); err != nil {
		return err
	}
	*c.dst = &t
	return nil
}

type nullUUIDCol struct{ dst **uuid.UUID }

func (c nullUUIDCol) Scan(src any) error {
	var n uuid.NullUUID
	if err := n.Scan(src); err != nil {
		return err
	}
	if !n.Valid {
		*c.dst = nil
		return nil
	}
	id := n.UUID
	*c.dst = &id
	return nil
}

func uuidArg(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

// sqlArg converts patch values into what the text schema stores.
func sqlArg(v any) any {
	switch t := v.(type) {
	case time.Time:
		return ts(t)
	case *time.Time:
		return tsPtr(t)
	case uuid.UUID:
		return t.String()
	case *uuid.UUID:
		return uuidArg(t)
	default:
		return v
	}
}

func queryList[T any](ctx context.Context, db *sql.DB, scan func(scanner) (*T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func queryOne[T any](ctx context.Context, db *sql.DB, scan func(scanner) (*T, error), query string, args ...any) (*T, error) {
	v, err := scan(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return v, err
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// insertOrFetch runs an INSERT ... ON CONFLICT DO NOTHING and, when the row
// was already there, loads it through fetch.
func (s *SQLiteStore) insertOrFetch(ctx context.Context, fetch func() error, query string, args ...any) (bool, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	return false, fetch()
}

func mustAffect(res sql.Result, err error, missing error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}

func (s *SQLiteStore) stamp(created, updated *time.Time) {
	if created.IsZero() {
		*created = s.now()
	}
	*updated = *created
}

// ─── Ambitions ───────────────────────────────────────────────────────────────

const ambitionCols = `id, user_id, title, description, year, category, priority, created_at, updated_at`

func scanAmbition(r scanner) (*goal.Ambition, error) {
	var a goal.Ambition
	err := r.Scan(&a.ID, &a.UserID, &a.Title, &a.Description, &a.Year, &a.Category, &a.Priority,
		timeCol{&a.CreatedAt}, timeCol{&a.UpdatedAt})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteStore) CreateAmbition(ctx context.Context, a *goal.Ambition) (bool, error) {
	s.stamp(&a.CreatedAt, &a.UpdatedAt)
	return s.insertOrFetch(ctx, func() error {
		got, err := s.GetAmbition(ctx, a.ID)
		if err != nil {
			return err
		}
		*a = *got
		return nil
	}, `INSERT INTO ambitions (`+ambitionCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		a.ID.String(), a.UserID.String(), a.Title, a.Description, a.Year, a.Category, a.Priority,
		ts(a.CreatedAt), ts(a.UpdatedAt))
}

func (s *SQLiteStore) GetAmbition(ctx context.Context, id uuid.UUID) (*goal.Ambition, error) {
	return queryOne(ctx, s.db, scanAmbition, `SELECT `+ambitionCols+` FROM ambitions WHERE id = ?`, id.String())
}

func (s *SQLiteStore) ListAmbitions(ctx context.Context, userID uuid.UUID) ([]goal.Ambition, error) {
	return queryList(ctx, s.db, scanAmbition,
		`SELECT `+ambitionCols+` FROM ambitions WHERE user_id = ? ORDER BY year DESC, created_at`, userID.String())
}

func (s *SQLiteStore) SaveAmbition(ctx context.Context, a *goal.Ambition) error {
	a.UpdatedAt = s.now()
	res, err := s.db.ExecContext(ctx, `UPDATE ambitions
		SET title = ?, description = ?, year = ?, category = ?, priority = ?, updated_at = ?
		WHERE id = ?`,
		a.Title, a.Description, a.Year, a.Category, a.Priority, ts(a.UpdatedAt), a.ID.String())
	return mustAffect(res, err, ErrNotFound)
}

func (s *SQLiteStore) DeleteAmbition(ctx context.Context, id uuid.UUID) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM key_results WHERE ambition_id = ?`, id.String()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE quarterly_objectives SET ambition_id = NULL WHERE ambition_id = ?`, id.String()); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM ambitions WHERE id = ?`, id.String())
		return mustAffect(res, err, ErrNotFound)
	})
}

// ─── Key results ─────────────────────────────────────────────────────────────

const keyResultCols = `id, user_id, ambition_id, title, description, target_value, current_value, unit, deadline, created_at, updated_at`

func scanKeyResult(r scanner) (*goal.KeyResult, error) {
	var kr goal.KeyResult
	err := r.Scan(&kr.ID, &kr.UserID, &kr.AmbitionID, &kr.Title, &kr.Description,
		&kr.TargetValue, &kr.CurrentValue, &kr.Unit, nullTimeCol{&kr.Deadline},
		timeCol{&kr.CreatedAt}, timeCol{&kr.UpdatedAt})
	if err != nil {
		return nil, err
	}
	return &kr, nil
}

func (s *SQLiteStore) CreateKeyResult(ctx context.Context, kr *goal.KeyResult) (bool, error) {
	s.stamp(&kr.CreatedAt, &kr.UpdatedAt)
	return s.insertOrFetch(ctx, func() error {
		got, err := s.GetKeyResult(ctx, kr.ID)
		if err != nil {
			return err
		}
		*kr = *got
		return nil
	}, `INSERT INTO key_results (`+keyResultCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		kr.ID.String(), kr.UserID.String(), kr.AmbitionID.String(), kr.Title, kr.Description,
		kr.TargetValue, kr.CurrentValue, kr.Unit, tsPtr(kr.Deadline), ts(kr.CreatedAt), ts(kr.UpdatedAt))
}

func (s *SQLiteStore) GetKeyResult(ctx context.Context, id uuid.UUID) (*goal.KeyResult, error) {
	return queryOne(ctx, s.db, scanKeyResult, `SELECT `+keyResultCols+` FROM key_results WHERE id = ?`, id.String())
}

func (s *SQLiteStore) ListKeyResults(ctx context.Context, ambitionID uuid.UUID) ([]goal.KeyResult, error) {
	return queryList(ctx, s.db, scanKeyResult,
		`SELECT `+keyResultCols+` FROM key_results WHERE ambition_id = ? ORDER BY created_at`, ambitionID.String())
}

func (s *SQLiteStore) ListKeyResultsByUser(ctx context.Context, userID uuid.UUID) ([]goal.KeyResult, error) {
	return queryList(ctx, s.db, scanKeyResult,
		`SELECT `+keyResultCols+` FROM key_results WHERE user_id = ? ORDER BY created_at`, userID.String())
}

func (s *SQLiteStore) SaveKeyResult(ctx context.Context, kr *goal.KeyResult) error {
	kr.UpdatedAt = s.now()
	res, err := s.db.ExecContext(ctx, `UPDATE key_results
		SET title = ?, description = ?, target_value = ?, unit = ?, deadline = ?, updated_at = ?
		WHERE id = ?`,
		kr.Title, kr.Description, kr.TargetValue, kr.Unit, tsPtr(kr.Deadline),
		ts(kr.UpdatedAt), kr.ID.String())
	return mustAffect(res, err, ErrNotFound)
}

func (s *SQLiteStore) DeleteKeyResult(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM key_results WHERE id = ?`, id.String())
	return mustAffect(res, err, ErrNotFound)
}

// ─── Quarterly objectives ────────────────────────────────────────────────────

const objectiveCols = `id, user_id, ambition_id, title, description, quarter, year, created_at, updated_at`

func scanObjective(r scanner) (*goal.QuarterlyObjective, error) {
	var o goal.QuarterlyObjective
	err := r.Scan(&o.ID, &o.UserID, nullUUIDCol{&o.AmbitionID}, &o.Title, &o.Description,
		&o.Quarter, &o.Year, timeCol{&o.CreatedAt}, timeCol{&o.UpdatedAt})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *SQLiteStore) CreateObjective(ctx context.Context, o *goal.QuarterlyObjective) (bool, error) {
	s.stamp(&o.CreatedAt, &o.UpdatedAt)
	return s.insertOrFetch(ctx, func() error {
		got, err := s.GetObjective(ctx, o.ID)
		if err != nil {
			return err
		}
		*o = *got
		return nil
	}, `INSERT INTO quarterly_objectives (`+objectiveCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		o.ID.String(), o.UserID.String(), uuidArg(o.AmbitionID), o.Title, o.Description,
		o.Quarter, o.Year, ts(o.CreatedAt), ts(o.UpdatedAt))
}

func (s *SQLiteStore) GetObjective(ctx context.Context, id uuid.UUID) (*goal.QuarterlyObjective, error) {
	return queryOne(ctx, s.db, scanObjective, `SELECT `+objectiveCols+` FROM quarterly_objectives WHERE id = ?`, id.String())
}

func (s *SQLiteStore) ListObjectives(ctx context.Context, userID uuid.UUID) ([]goal.QuarterlyObjective, error) {
	return queryList(ctx, s.db, scanObjective,
		`SELECT `+objectiveCols+` FROM quarterly_objectives WHERE user_id = ? ORDER BY year DESC, quarter, created_at`,
		userID.String())
}

func (s *SQLiteStore) SaveObjective(ctx context.Context, o *goal.QuarterlyObjective) error {
	o.UpdatedAt = s.now()
	res, err := s.db.ExecContext(ctx, `UPDATE quarterly_objectives
		SET ambition_id = ?, title = ?, description = ?, quarter = ?, year = ?, updated_at = ?
		WHERE id = ?`,
		uuidArg(o.AmbitionID), o.Title, o.Description, o.Quarter, o.Year, ts(o.UpdatedAt), o.ID.String())
	return mustAffect(res, err, ErrNotFound)
}

func (s *SQLiteStore) DeleteObjective(ctx context.Context, id uuid.UUID) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM quarterly_key_results WHERE objective_id = ?`, id.String()); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM quarterly_objectives WHERE id = ?`, id.String())
		return mustAffect(res, err, ErrNotFound)
	})
}

// ─── Quarterly key results ───────────────────────────────────────────────────

const qkrCols = `id, user_id, objective_id, title, description, target_value, current_value, unit, deadline, weight, created_at, updated_at`

func scanQuarterlyKeyResult(r scanner) (*goal.QuarterlyKeyResult, error) {
	var kr goal.QuarterlyKeyResult
	err := r.Scan(&kr.ID, &kr.UserID, &kr.ObjectiveID, &kr.Title, &kr.Description,
		&kr.TargetValue, &kr.CurrentValue, &kr.Unit, nullTimeCol{&kr.Deadline}, &kr.Weight,
		timeCol{&kr.CreatedAt}, timeCol{&kr.UpdatedAt})
	if err != nil {
		return nil, err
	}
	return &kr, nil
}

func (s *SQLiteStore) CreateQuarterlyKeyResult(ctx context.Context, kr *goal.QuarterlyKeyResult) (bool, error) {
	s.stamp(&kr.CreatedAt, &kr.UpdatedAt)
	return s.insertOrFetch(ctx, func() error {
		got, err := s.GetQuarterlyKeyResult(ctx, kr.ID)
		if err != nil {
			return err
		}
		*kr = *got
		return nil
	}, `INSERT INTO quarterly_key_results (`+qkrCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		kr.ID.String(), kr.UserID.String(), kr.ObjectiveID.String(), kr.Title, kr.Description,
		kr.TargetValue, kr.CurrentValue, kr.Unit, tsPtr(kr.Deadline), kr.Weight,
		ts(kr.CreatedAt), ts(kr.UpdatedAt))
}

func (s *SQLiteStore) GetQuarterlyKeyResult(ctx context.Context, id uuid.UUID) (*goal.QuarterlyKeyResult, error) {
	return queryOne(ctx, s.db, scanQuarterlyKeyResult, `SELECT `+qkrCols+` FROM quarterly_key_results WHERE id = ?`, id.String())
}

func (s *SQLiteStore) ListQuarterlyKeyResults(ctx context.Context, objectiveID uuid.UUID) ([]goal.QuarterlyKeyResult, error) {
	return queryList(ctx, s.db, scanQuarterlyKeyResult,
		`SELECT `+qkrCols+` FROM quarterly_key_results WHERE objective_id = ? ORDER BY created_at`, objectiveID.String())
}

func (s *SQLiteStore) SaveQuarterlyKeyResult(ctx context.Context, kr *goal.QuarterlyKeyResult) error {
	kr.UpdatedAt = s.now()
	res, err := s.db.ExecContext(ctx, `UPDATE quarterly_key_results
		SET title = ?, description = ?, target_value = ?, unit = ?, deadline = ?,
			weight = ?, updated_at = ?
		WHERE id = ?`,
		kr.Title, kr.Description, kr.TargetValue, kr.Unit, tsPtr(kr.Deadline),
		kr.Weight, ts(kr.UpdatedAt), kr.ID.String())
	return mustAffect(res, err, ErrNotFound)
}

func (s *SQLiteStore) DeleteQuarterlyKeyResult(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quarterly_key_results WHERE id = ?`, id.String())
	return mustAffect(res, err, ErrNotFound)
}

// ─── Actions ─────────────────────────────────────────────────────────────────

const actionCols = `id, user_id, quarterly_key_result_id, objective_id, board_id, title, description,
	status, priority, deadline, order_index, completed_at, created_at, updated_at`

func scanAction(r scanner) (*goal.Action, error) {
	var a goal.Action
	err := r.Scan(&a.ID, &a.UserID, nullUUIDCol{&a.QuarterlyKeyResultID}, nullUUIDCol{&a.ObjectiveID},
		&a.BoardID, &a.Title, &a.Description, &a.Status, &a.Priority, nullTimeCol{&a.Deadline},
		&a.OrderIndex, nullTimeCol{&a.CompletedAt}, timeCol{&a.CreatedAt}, timeCol{&a.UpdatedAt})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteStore) GetAction(ctx context.Context, id uuid.UUID) (*goal.Action, error) {
	return queryOne(ctx, s.db, scanAction, `SELECT `+actionCols+` FROM actions WHERE id = ?`, id.String())
}

func (s *SQLiteStore) ListActions(ctx context.Context, f ActionFilter) ([]goal.Action, error) {
	where := []string{"user_id = ?"}
	args := []any{f.UserID.String()}
	if f.BoardID != nil {
		where = append(where, "board_id = ?")
		args = append(args, f.BoardID.String())
	}
	if f.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *f.Status)
	}
	return queryList(ctx, s.db, scanAction,
		`SELECT `+actionCols+` FROM actions WHERE `+strings.Join(where, " AND ")+
			` ORDER BY board_id, status, order_index, created_at`, args...)
}

func (s *SQLiteStore) DeleteAction(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM actions WHERE id = ?`, id.String())
	return mustAffect(res, err, ErrNotFound)
}

const orphanedActionsWhere = `user_id = ? AND (
	(quarterly_key_result_id IS NOT NULL AND NOT EXISTS (
		SELECT 1 FROM quarterly_key_results k WHERE k.id = actions.quarterly_key_result_id))
	OR (quarterly_key_result_id IS NULL AND objective_id IS NOT NULL AND NOT EXISTS (
		SELECT 1 FROM quarterly_objectives o WHERE o.id = actions.objective_id)))`

func (s *SQLiteStore) ListOrphanedActions(ctx context.Context, userID uuid.UUID) ([]goal.Action, error) {
	return queryList(ctx, s.db, scanAction,
		`SELECT `+actionCols+` FROM actions WHERE `+orphanedActionsWhere+` ORDER BY created_at`, userID.String())
}

// ─── Board columns ───────────────────────────────────────────────────────────

func (s *SQLiteStore) ColumnGenerations(ctx context.Context, cols []goal.Column) (map[goal.Column]int64, error) {
	out := make(map[goal.Column]int64, len(cols))
	for _, c := range cols {
		var gen int64
		err := s.db.QueryRowContext(ctx,
			`SELECT generation FROM board_columns WHERE board_id = ? AND status = ?`,
			c.BoardID.String(), c.Status).Scan(&gen)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		out[c] = gen
	}
	return out, nil
}

func (s *SQLiteStore) CommitColumns(ctx context.Context, c ColumnCommit) error {
	if err := validateCommit(c); err != nil {
		return err
	}
	at := c.At
	if at.IsZero() {
		at = s.now()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, col := range sortedColumns(c.Expected) {
			if err := bumpSQLiteColumn(ctx, tx, col, c.Expected[col]); err != nil {
				return err
			}
		}

		if a := c.Insert; a != nil {
			if a.CreatedAt.IsZero() {
				a.CreatedAt = at
			}
			a.UpdatedAt = at
			res, err := tx.ExecContext(ctx, `INSERT INTO actions (`+actionCols+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO NOTHING`,
				a.ID.String(), a.UserID.String(), uuidArg(a.QuarterlyKeyResultID), uuidArg(a.ObjectiveID),
				a.BoardID.String(), a.Title, a.Description, a.Status, a.Priority, tsPtr(a.Deadline),
				a.OrderIndex, tsPtr(a.CompletedAt), ts(a.CreatedAt), ts(a.UpdatedAt))
			if err := mustAffect(res, err, ErrAlreadyExists); err != nil {
				return err
			}
		}

		if a := c.Move; a != nil {
			a.UpdatedAt = at
			res, err := tx.ExecContext(ctx, `UPDATE actions
				SET status = ?, order_index = ?, completed_at = ?, updated_at = ?
				WHERE id = ? AND board_id = ? AND status = ?`,
				a.Status, a.OrderIndex, tsPtr(a.CompletedAt), ts(a.UpdatedAt),
				a.ID.String(), a.BoardID.String(), c.MoveFrom)
			if err := mustAffect(res, err, ErrConflict); err != nil {
				return err
			}
		}

		for _, p := range c.Plan {
			var col goal.Column
			err := tx.QueryRowContext(ctx, `SELECT board_id, status FROM actions WHERE id = ?`, p.ActionID.String()).
				Scan(&col.BoardID, &col.Status)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrConflict
			}
			if err != nil {
				return err
			}
			if _, guarded := c.Expected[col]; !guarded {
				return ErrConflict
			}
			if _, err := tx.ExecContext(ctx, `UPDATE actions SET order_index = ?, updated_at = ? WHERE id = ?`,
				p.OrderIndex, ts(at), p.ActionID.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

func bumpSQLiteColumn(ctx context.Context, tx *sql.Tx, col goal.Column, expected int64) error {
	res, err := tx.ExecContext(ctx, `UPDATE board_columns SET generation = generation + 1
		WHERE board_id = ? AND status = ? AND generation = ?`,
		col.BoardID.String(), col.Status, expected)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n == 1 {
		return err
	}
	if expected != 0 {
		return ErrConflict
	}
	res, err = tx.ExecContext(ctx, `INSERT INTO board_columns (board_id, status, generation) VALUES (?, ?, 1)
		ON CONFLICT(board_id, status) DO NOTHING`,
		col.BoardID.String(), col.Status)
	return mustAffect(res, err, ErrConflict)
}

// ─── Snapshots ───────────────────────────────────────────────────────────────

const snapshotCols = `id, user_id, entity_id, entity_type, value, recorded_at`

func scanSnapshot(r scanner) (*goal.ProgressSnapshot, error) {
	var sn goal.ProgressSnapshot
	err := r.Scan(&sn.ID, &sn.UserID, &sn.EntityID, &sn.EntityType, &sn.Value, timeCol{&sn.RecordedAt})
	if err != nil {
		return nil, err
	}
	return &sn, nil
}

func (s *SQLiteStore) AppendSnapshot(ctx context.Context, sn *goal.ProgressSnapshot) error {
	if sn.ID == uuid.Nil {
		sn.ID = uuid.New()
	}
	if sn.RecordedAt.IsZero() {
		sn.RecordedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO progress_snapshots (`+snapshotCols+`) VALUES (?, ?, ?, ?, ?, ?)`,
		sn.ID.String(), sn.UserID.String(), sn.EntityID.String(), sn.EntityType, sn.Value, ts(sn.RecordedAt))
	return err
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, entityType goal.EntityType, entityID uuid.UUID, since time.Time) ([]goal.ProgressSnapshot, error) {
	return queryList(ctx, s.db, scanSnapshot,
		`SELECT `+snapshotCols+` FROM progress_snapshots
		WHERE entity_id = ? AND entity_type = ? AND recorded_at >= ?
		ORDER BY recorded_at`,
		entityID.String(), entityType, ts(since))
}

// ─── Patch ───────────────────────────────────────────────────────────────────

func (s *SQLiteStore) Patch(ctx context.Context, kind Kind, id uuid.UUID, fields map[string]any) error {
	if err := checkPatch(kind, fields); err != nil {
		return err
	}
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	set := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+2)
	for _, col := range cols {
		set = append(set, col+" = ?")
		args = append(args, sqlArg(fields[col]))
	}
	set = append(set, "updated_at = ?")
	args = append(args, ts(s.now()), id.String())

	res, err := s.db.ExecContext(ctx,
		`UPDATE `+string(kind)+` SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	return mustAffect(res, err, ErrNotFound)
}
