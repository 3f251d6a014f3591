package todo

import (
	"context"
	"fmt"
)

type Seed struct {
	Content   string
	Completed bool
}

// DefaultSeeds is the list every process starts with.
var DefaultSeeds = []Seed{
	{Content: "Buy milk"},
	{Content: "Buy eggs", Completed: true},
	{Content: "Buy bread"},
}

// Seed adds each record in order so ids are assigned by the store counter.
func (s *Service) Seed(ctx context.Context, seeds []Seed) error {
	for _, sd := range seeds {
		created, err := s.Add(ctx, sd.Content)
		if err != nil {
			return fmt.Errorf("seed %q: %w", sd.Content, err)
		}
		if !sd.Completed {
			continue
		}
		if _, err := s.repo.Toggle(ctx, created.ID); err != nil {
			return fmt.Errorf("seed toggle %d: %w", created.ID, err)
		}
	}
	return nil
}
