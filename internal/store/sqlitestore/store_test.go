package sqlitestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"htmx-todos/internal/store/storetest"
	"htmx-todos/internal/todo"
)

func openTestStore(t *testing.T, dsn string) *TodoStore {
	t.Helper()
	s, err := Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestTodoStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) todo.Repository {
		return openTestStore(t, "")
	})
}

func TestPing_ClosedDB(t *testing.T) {
	s := openTestStore(t, "")
	_ = s.Close()

	if err := s.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error on closed db")
	}
}

func TestOpen_RejectsFileDSN(t *testing.T) {
	for _, dsn := range []string{"todos.db", "file:todos.db?mode=rwc"} {
		if s, err := Open(context.Background(), dsn); err == nil {
			_ = s.Close()
			t.Fatalf("Open(%q): expected error", dsn)
		}
	}
}

func TestCanceledRequestsKeepDatabase(t *testing.T) {
	s := openTestStore(t, "")
	ctx := context.Background()

	first, err := s.Add(ctx, "Buy milk")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	for i := 0; i < 200; i++ {
		opCtx, cancel := context.WithTimeout(ctx, time.Duration(i%50)*time.Microsecond)
		if i%2 == 0 {
			_, _ = s.Toggle(opCtx, first.ID)
		} else {
			_, _ = s.Add(opCtx, "Buy eggs")
		}
		cancel()

		if _, err := s.List(ctx); err != nil {
			t.Fatalf("after %d canceled operations, list: %v", i+1, err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].ID != first.ID || list[0].Content != "Buy milk" {
		t.Fatalf("first record lost: %+v", list[0])
	}
	for i := 1; i < len(list); i++ {
		if list[i].ID <= list[i-1].ID {
			t.Fatalf("ids out of order: %+v", list)
		}
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestCanceledContext_ReturnsBeforeWriting(t *testing.T) {
	s := openTestStore(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Add(ctx, "Buy milk"); !errors.Is(err, context.Canceled) {
		t.Fatalf("add err=%v want context.Canceled", err)
	}

	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("canceled add was stored: %+v", list)
	}
}
