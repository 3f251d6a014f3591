package memorystore

import (
	"context"
	"sync"

	"htmx-todos/internal/model"
)

// TodoStore keeps todos in insertion order. Ids come from a counter that
// only moves forward, so a removed id is never handed out again.
type TodoStore struct {
	mu     sync.RWMutex
	todos  []model.Todo
	nextID uint64
}

func NewTodoStore() *TodoStore {
	return &TodoStore{todos: make([]model.Todo, 0)}
}

func (s *TodoStore) List(ctx context.Context) ([]model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Todo, len(s.todos))
	copy(out, s.todos)
	return out, nil
}

func (s *TodoStore) Add(ctx context.Context, content string) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := model.Todo{
		ID:      s.nextID,
		Content: content,
	}
	s.nextID++
	s.todos = append(s.todos, t)
	return t, nil
}

func (s *TodoStore) Toggle(ctx context.Context, id uint64) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Todo{}, model.ErrNotFound
	}
	s.todos[i].Completed = !s.todos[i].Completed
	return s.todos[i], nil
}

func (s *TodoStore) Remove(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.ErrNotFound
	}
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	return nil
}

func (s *TodoStore) Ping(ctx context.Context) error { return nil }

func (s *TodoStore) Close() error { return nil }

// indexOf must be called with s.mu held.
func (s *TodoStore) indexOf(id uint64) int {
	for i, t := range s.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}
