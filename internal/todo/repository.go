package todo

import (
	"context"

	"htmx-todos/internal/model"
)

type Repository interface {
	List(ctx context.Context) ([]model.Todo, error)
	Add(ctx context.Context, content string) (model.Todo, error)
	Toggle(ctx context.Context, id uint64) (model.Todo, error)
	Remove(ctx context.Context, id uint64) error
	Ping(ctx context.Context) error
}
