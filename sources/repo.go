package sources

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("source not found")

type (
	SQLiteRepo struct {
		db *sql.DB
	}
)

func NewSQLiteRepo(db *sql.DB) SQLiteRepo {
	return SQLiteRepo{db}
}

// CreateSource inserts src unless a source with the same id exists, and
// returns the stored record either way.
func (r SQLiteRepo) CreateSource(ctx context.Context, src Source) (Source, error) {
	if src.CreatedAt.IsZero() {
		src.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(
		ctx,
		"insert into sources (id, name, kind, locator, created_at) values ($1, $2, $3, $4, $5) on conflict do nothing",
		src.ID,
		src.Name,
		string(src.Kind),
		src.Locator,
		src.CreatedAt.Unix(),
	)
	if err != nil {
		return Source{}, fmt.Errorf("persisting source into sqlite: %w", err)
	}

	return r.GetSource(ctx, src.ID)
}

func (r SQLiteRepo) GetSource(ctx context.Context, id string) (Source, error) {
	row := r.db.QueryRowContext(
		ctx,
		"select id, name, kind, locator, created_at from sources where id = $1",
		id,
	)

	res, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Source{}, fmt.Errorf("get source %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Source{}, fmt.Errorf("get source %s: %w", id, err)
	}
	return res, nil
}

func (r SQLiteRepo) ListSources(ctx context.Context) ([]Source, error) {
	rows, err := r.db.QueryContext(ctx, `
		select id, name, kind, locator, created_at
		from sources
		order by created_at asc, id asc
	`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var res []Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("list sources: %w", err)
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r SQLiteRepo) DeleteSource(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "delete from sources where id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting source %s: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSource(s scanner) (Source, error) {
	var (
		res       Source
		kind      string
		createdAt int64
	)
	if err := s.Scan(&res.ID, &res.Name, &kind, &res.Locator, &createdAt); err != nil {
		return Source{}, err
	}
	res.Kind = Kind(kind)
	res.CreatedAt = time.Unix(createdAt, 0)
	return res, nil
}
