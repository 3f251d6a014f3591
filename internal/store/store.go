package store

import (
	"context"
	"fmt"

	"htmx-todos/internal/config"
	"htmx-todos/internal/store/memorystore"
	"htmx-todos/internal/store/sqlitestore"
	"htmx-todos/internal/todo"
)

const (
	BackendMemory = config.StoreBackendMemory
	BackendSQLite = config.StoreBackendSQLite
)

// Store is a todo.Repository that owns resources.
type Store interface {
	todo.Repository
	Close() error
}

func Open(ctx context.Context, backend, dsn string) (Store, error) {
	switch backend {
	case "", BackendMemory:
		return memorystore.NewTodoStore(), nil
	case BackendSQLite:
		return sqlitestore.Open(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
