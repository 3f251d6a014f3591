// Package sqlitestore keeps todos in a SQLite database. With the default
// in-memory DSN nothing is written to disk and the list resets on restart.
package sqlitestore

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"htmx-todos/internal/config"
	"htmx-todos/internal/model"
)

const DefaultDSN = "file::memory:"

type TodoStore struct {
	mu sync.Mutex
	db *sql.DB
}

// Open connects and creates the schema. The pool is pinned to a single
// connection: every connection to an in-memory DSN is its own database.
func Open(ctx context.Context, dsn string) (*TodoStore, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	if !config.IsMemoryDSN(dsn) {
		return nil, errors.Errorf("dsn %q is not an in-memory database", dsn)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &TodoStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *TodoStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS todos (
    id INTEGER NOT NULL PRIMARY KEY,
    content TEXT NOT NULL,
    completed INTEGER NOT NULL DEFAULT 0
)`,
		`CREATE TABLE IF NOT EXISTS counters (
    name TEXT NOT NULL PRIMARY KEY,
    value INTEGER NOT NULL
)`,
		`INSERT OR IGNORE INTO counters (name, value) VALUES ('todos', 0)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "migrate")
		}
	}
	return nil
}

func (s *TodoStore) Close() error { return s.db.Close() }

// detach returns a context that outlives the caller's cancellation.
// database/sql discards the connection of a transaction whose context ends,
// and with an in-memory DSN that connection is the whole database. A caller
// that is already gone gets its error back before any statement runs.
func detach(ctx context.Context) (context.Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return context.WithoutCancel(ctx), nil
}

func (s *TodoStore) Ping(ctx context.Context) error {
	return errors.Wrap(s.db.PingContext(ctx), "ping sqlite")
}

// List orders by id; ids are handed out in insertion order.
func (s *TodoStore) List(ctx context.Context) ([]model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, err := detach(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, content, completed FROM todos ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "query todos")
	}
	defer rows.Close()

	out := make([]model.Todo, 0)
	for rows.Next() {
		var t model.Todo
		var id int64
		if err := rows.Scan(&id, &t.Content, &t.Completed); err != nil {
			return nil, errors.Wrap(err, "scan todo")
		}
		t.ID = uint64(id)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate todos")
	}
	return out, nil
}

func (s *TodoStore) Add(ctx context.Context, content string) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, err := detach(ctx)
	if err != nil {
		return model.Todo{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Todo{}, errors.Wrap(err, "begin add")
	}
	defer func() { _ = tx.Rollback() }()

	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = 'todos'`).Scan(&next); err != nil {
		return model.Todo{}, errors.Wrap(err, "read counter")
	}
	if _, err := tx.ExecContext(ctx, `UPDATE counters SET value = value + 1 WHERE name = 'todos'`); err != nil {
		return model.Todo{}, errors.Wrap(err, "bump counter")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO todos (id, content, completed) VALUES (?, ?, 0)`, next, content,
	); err != nil {
		return model.Todo{}, errors.Wrap(err, "insert todo")
	}
	if err := tx.Commit(); err != nil {
		return model.Todo{}, errors.Wrap(err, "commit add")
	}
	return model.Todo{ID: uint64(next), Content: content}, nil
}

func (s *TodoStore) Toggle(ctx context.Context, id uint64) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, err := detach(ctx)
	if err != nil {
		return model.Todo{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Todo{}, errors.Wrap(err, "begin toggle")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE todos SET completed = 1 - completed WHERE id = ?`, int64(id))
	if err != nil {
		return model.Todo{}, errors.Wrap(err, "toggle todo")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Todo{}, model.ErrNotFound
	}

	t := model.Todo{ID: id}
	if err := tx.QueryRowContext(ctx,
		`SELECT content, completed FROM todos WHERE id = ?`, int64(id),
	).Scan(&t.Content, &t.Completed); err != nil {
		return model.Todo{}, errors.Wrap(err, "read toggled todo")
	}
	if err := tx.Commit(); err != nil {
		return model.Todo{}, errors.Wrap(err, "commit toggle")
	}
	return t, nil
}

func (s *TodoStore) Remove(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, err := detach(ctx)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, int64(id))
	if err != nil {
		return errors.Wrap(err, "delete todo")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}
