// Package kv is the persisted shadow of the in-memory caches: a flat
// string-to-string namespace stored in SQLite.
package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
	PRAGMA busy_timeout       = 10000;
	PRAGMA journal_mode       = WAL;
	PRAGMA journal_size_limit = 200000000;
	PRAGMA synchronous        = NORMAL;
	PRAGMA foreign_keys       = ON;
	PRAGMA temp_store         = MEMORY;
	PRAGMA cache_size         = -16000;

	create table if not exists kv (
		key text primary key not null,
		value text not null
	);

	create table if not exists sources (
		id text primary key not null,
		name text not null,
		kind text not null,
		locator text not null,
		created_at integer not null
	);`

// Open opens (creating if needed) the SQLite database at path and applies the
// schema. The returned *sql.DB is shared by Store and the source repository.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return db, nil
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return Store{db}
}

// Get returns the value for key and whether it exists.
func (s Store) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "select value from kv where key = $1", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

func (s Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		insert into kv (key, value) values ($1, $2)
		on conflict (key) do update set value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes every given key in one transaction.
func (s Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete keys: begin trx: %w", err)
	}
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, "delete from kv where key = $1", k); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("rollback delete %s: %w", k, rbErr)
			}
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete keys: commiting: %w", err)
	}
	return nil
}

// Scan returns every key with the given prefix.
func (s Store) Scan(ctx context.Context, prefix string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"select key, value from kv where substr(key, 1, length($1)) = $1",
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", prefix, err)
	}
	defer rows.Close()

	res := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", prefix, err)
		}
		res[k] = v
	}
	return res, rows.Err()
}
