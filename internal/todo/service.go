package todo

import (
	"context"
	"errors"

	"htmx-todos/internal/model"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]model.Todo, error) {
	return s.repo.List(ctx)
}

func (s *Service) Add(ctx context.Context, content string) (model.Todo, error) {
	valid, err := ValidateContent(content)
	if err != nil {
		return model.Todo{}, err
	}
	return s.repo.Add(ctx, valid)
}

// Toggle returns model.ErrNotFound for unknown ids.
func (s *Service) Toggle(ctx context.Context, id uint64) (model.Todo, error) {
	return s.repo.Toggle(ctx, id)
}

// Remove is idempotent: removing an unknown id is not an error.
func (s *Service) Remove(ctx context.Context, id uint64) error {
	if err := s.repo.Remove(ctx, id); err != nil && !errors.Is(err, model.ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
