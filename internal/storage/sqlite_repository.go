package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens path and applies pending migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) GetPreference(ctx context.Context, key string) (Preference, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM preferences WHERE key = ?`, key)
	item, err := scanPreference(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Preference{}, ErrNotFound
		}
		return Preference{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) PutPreference(ctx context.Context, in Preference) error {
	if in.UpdatedAt.IsZero() {
		in.UpdatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		in.Key, in.Value, mustTime(in.UpdatedAt),
	)
	return err
}

func (r *SQLiteRepository) DeletePreference(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListPreferences(ctx context.Context, filter PreferenceListFilter) ([]Preference, error) {
	query := `SELECT key, value, updated_at FROM preferences`
	args := make([]any, 0, 3)
	if filter.Prefix != "" {
		query += ` WHERE key LIKE ? ESCAPE '\'`
		args = append(args, escapeLike(filter.Prefix)+"%")
	}
	query += ` ORDER BY key ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Preference, 0)
	for rows.Next() {
		item, scanErr := scanPreference(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetReadMark(ctx context.Context, kind string, threadID int64) (ReadMark, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT kind, thread_id, last_message_id, updated_at
		FROM read_marks WHERE kind = ? AND thread_id = ?`, kind, threadID)
	item, err := scanReadMark(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ReadMark{}, ErrNotFound
		}
		return ReadMark{}, err
	}
	return item, nil
}

// PutReadMark only moves a mark forward.
func (r *SQLiteRepository) PutReadMark(ctx context.Context, in ReadMark) error {
	if in.UpdatedAt.IsZero() {
		in.UpdatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO read_marks (kind, thread_id, last_message_id, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, thread_id) DO UPDATE SET
			last_message_id = MAX(read_marks.last_message_id, excluded.last_message_id),
			updated_at = excluded.updated_at`,
		in.Kind, in.ThreadID, in.LastMessageID, mustTime(in.UpdatedAt),
	)
	return err
}

func (r *SQLiteRepository) ListReadMarks(ctx context.Context, kind string) ([]ReadMark, error) {
	query := `SELECT kind, thread_id, last_message_id, updated_at FROM read_marks`
	args := make([]any, 0, 1)
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY kind ASC, thread_id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ReadMark, 0)
	for rows.Next() {
		item, scanErr := scanReadMark(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func escapeLike(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(v)
}

// applyPagination uses LIMIT -1 when only an offset is given; SQLite rejects
// OFFSET without LIMIT.
func applyPagination(args *[]any, limit, offset int) string {
	if limit <= 0 && offset <= 0 {
		return ""
	}
	if limit <= 0 {
		limit = -1
	}
	sql := " LIMIT ?"
	*args = append(*args, limit)
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPreference(s scanner) (Preference, error) {
	var out Preference
	var updated string
	if err := s.Scan(&out.Key, &out.Value, &updated); err != nil {
		return Preference{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return Preference{}, err
	}
	out.UpdatedAt = updatedAt
	return out, nil
}

func scanReadMark(s scanner) (ReadMark, error) {
	var out ReadMark
	var updated string
	if err := s.Scan(&out.Kind, &out.ThreadID, &out.LastMessageID, &updated); err != nil {
		return ReadMark{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return ReadMark{}, err
	}
	out.UpdatedAt = updatedAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
