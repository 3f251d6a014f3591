// Package storetest runs the same behavioral checks against every store backend.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"htmx-todos/internal/model"
	"htmx-todos/internal/todo"
)

// Run exercises a fresh, empty repository returned by open for each subtest.
func Run(t *testing.T, open func(t *testing.T) todo.Repository) {
	t.Helper()

	t.Run("AddAssignsSequentialIDs", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()

		for want := uint64(0); want < 3; want++ {
			got, err := repo.Add(ctx, "item")
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			if got.ID != want {
				t.Fatalf("id=%d want %d", got.ID, want)
			}
			if got.Completed {
				t.Fatalf("new todo should not be completed")
			}
		}
		list := mustList(t, repo)
		if len(list) != 3 {
			t.Fatalf("len=%d want 3", len(list))
		}
	})

	t.Run("ListKeepsInsertionOrder", func(t *testing.T) {
		repo := open(t)
		contents := []string{"Buy milk", "Buy eggs", "Buy bread"}
		for _, c := range contents {
			mustAdd(t, repo, c)
		}

		list := mustList(t, repo)
		for i, c := range contents {
			if list[i].Content != c {
				t.Fatalf("item %d: content=%q want %q", i, list[i].Content, c)
			}
		}
	})

	t.Run("ToggleFlipsOnlyTarget", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()
		mustAdd(t, repo, "a")
		b := mustAdd(t, repo, "b")
		mustAdd(t, repo, "c")
		before := mustList(t, repo)

		got, err := repo.Toggle(ctx, b.ID)
		if err != nil {
			t.Fatalf("toggle: %v", err)
		}
		if !got.Completed || got.Content != "b" || got.ID != b.ID {
			t.Fatalf("unexpected toggled todo %+v", got)
		}

		after := mustList(t, repo)
		for i := range before {
			want := before[i]
			if want.ID == b.ID {
				want.Completed = !want.Completed
			}
			if after[i] != want {
				t.Fatalf("item %d: got %+v want %+v", i, after[i], want)
			}
		}

		got, err = repo.Toggle(ctx, b.ID)
		if err != nil {
			t.Fatalf("toggle back: %v", err)
		}
		if got.Completed {
			t.Fatalf("expected completed=false after second toggle")
		}
	})

	t.Run("ToggleUnknown", func(t *testing.T) {
		repo := open(t)
		mustAdd(t, repo, "a")
		before := mustList(t, repo)

		if _, err := repo.Toggle(context.Background(), 99); !errors.Is(err, model.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		after := mustList(t, repo)
		if len(after) != len(before) || after[0] != before[0] {
			t.Fatalf("list changed: %+v -> %+v", before, after)
		}
	})

	t.Run("RemoveKeepsRelativeOrder", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()
		mustAdd(t, repo, "a")
		b := mustAdd(t, repo, "b")
		mustAdd(t, repo, "c")

		if err := repo.Remove(ctx, b.ID); err != nil {
			t.Fatalf("remove: %v", err)
		}
		list := mustList(t, repo)
		if len(list) != 2 || list[0].Content != "a" || list[1].Content != "c" {
			t.Fatalf("unexpected list %+v", list)
		}

		if err := repo.Remove(ctx, b.ID); !errors.Is(err, model.ErrNotFound) {
			t.Fatalf("second remove: expected ErrNotFound, got %v", err)
		}
		if len(mustList(t, repo)) != 2 {
			t.Fatalf("second remove changed the list")
		}
	})

	t.Run("IDsAreNeverReused", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()
		mustAdd(t, repo, "a")
		last := mustAdd(t, repo, "b")
		if err := repo.Remove(ctx, last.ID); err != nil {
			t.Fatalf("remove: %v", err)
		}

		next := mustAdd(t, repo, "c")
		if next.ID != last.ID+1 {
			t.Fatalf("id=%d want %d", next.ID, last.ID+1)
		}
	})

	t.Run("ListReturnsCopy", func(t *testing.T) {
		repo := open(t)
		mustAdd(t, repo, "a")

		list := mustList(t, repo)
		list[0].Content = "mutated"

		if got := mustList(t, repo)[0].Content; got != "a" {
			t.Fatalf("store was mutated through List result: %q", got)
		}
	})

	t.Run("ConcurrentAdds", func(t *testing.T) {
		repo := open(t)
		const n = 50

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := repo.Add(context.Background(), "x"); err != nil {
					t.Errorf("add: %v", err)
				}
			}()
		}
		wg.Wait()

		list := mustList(t, repo)
		if len(list) != n {
			t.Fatalf("len=%d want %d", len(list), n)
		}
		seen := make(map[uint64]bool, n)
		for _, td := range list {
			if seen[td.ID] {
				t.Fatalf("duplicate id %d", td.ID)
			}
			seen[td.ID] = true
		}
	})

	t.Run("CanceledContextsKeepData", func(t *testing.T) {
		repo := open(t)
		first := mustAdd(t, repo, "Buy milk")

		canceled, cancel := context.WithCancel(context.Background())
		cancel()
		_, _ = repo.List(canceled)
		_, _ = repo.Add(canceled, "Buy eggs")
		_, _ = repo.Toggle(canceled, first.ID)
		_ = repo.Remove(canceled, first.ID+100)

		for i := 0; i < 50; i++ {
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(i)*time.Microsecond)
			_, _ = repo.Toggle(ctx, first.ID)
			cancel()
		}

		list := mustList(t, repo)
		if len(list) == 0 || list[0].ID != first.ID || list[0].Content != "Buy milk" {
			t.Fatalf("first record lost: %+v", list)
		}

		next := mustAdd(t, repo, "Buy bread")
		for _, td := range list {
			if td.ID >= next.ID {
				t.Fatalf("id %d reused or out of order after %+v", next.ID, list)
			}
		}
		if err := repo.Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})

	t.Run("Ping", func(t *testing.T) {
		repo := open(t)
		if err := repo.Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})
}

func mustAdd(t *testing.T, repo todo.Repository, content string) model.Todo {
	t.Helper()
	created, err := repo.Add(context.Background(), content)
	if err != nil {
		t.Fatalf("add %q: %v", content, err)
	}
	return created
}

func mustList(t *testing.T, repo todo.Repository) []model.Todo {
	t.Helper()
	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return list
}
