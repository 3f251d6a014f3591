package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"htmx-todos/internal/config"
	"htmx-todos/internal/httpapi"
	"htmx-todos/internal/observability/logging"
	"htmx-todos/internal/store"
	"htmx-todos/internal/todo"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(flag.NewFlagSet("htmx-todos", flag.ContinueOnError), args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	// Root context cancelled on SIGINT/SIGTERM
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, closeStore, err := newApp(rootCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("close store", "err", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
	logger.Info("bye")
	return nil
}

// newApp wires store, service and HTTP handler. The returned func closes
// the store.
func newApp(ctx context.Context, cfg config.Config, logger *log.Logger) (http.Handler, func() error, error) {
	st, err := store.Open(ctx, cfg.Store.Backend, cfg.Store.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	svc := todo.NewService(st)
	if cfg.Seed {
		if err := svc.Seed(ctx, todo.DefaultSeeds); err != nil {
			_ = st.Close()
			return nil, nil, fmt.Errorf("seed store: %w", err)
		}
	}

	handler := httpapi.NewServer(svc, httpapi.Options{
		StaticDir:      cfg.StaticDir,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	})
	return handler, st.Close, nil
}
