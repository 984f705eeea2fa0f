package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/conorfennell/flashreview/internal/config"
	"github.com/conorfennell/flashreview/internal/controls"
	"github.com/conorfennell/flashreview/internal/deck"
	"github.com/conorfennell/flashreview/internal/export"
	"github.com/conorfennell/flashreview/internal/review"
	"github.com/conorfennell/flashreview/internal/storage"
	"github.com/conorfennell/flashreview/internal/term"
	"github.com/conorfennell/flashreview/internal/web"
)

func main() {
	// 1. Load configuration from flags, file and environment
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(2)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// The terminal blocks on stdin, so Ctrl-C keeps its default behaviour
	// there. Progress is persisted after every key.
	ctx := context.Background()
	if cfg.Mode != "term" {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	if err := run(ctx, cfg, logger, os.Stdin, os.Stdout); err != nil {
		logger.Error("Review session ended with an error", "error", err)
		os.Exit(1)
	}
}

// run loads the deck, restores the session and runs the configured interface
// until it finishes or ctx is done.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, in io.Reader, out io.Writer) error {
	// 2. Load the source deck
	pairs, err := deck.Load(ctx, deck.Source{
		Path:     cfg.Deck,
		Repo:     cfg.Repo,
		ReposDir: cfg.ReposDir,
	})
	if err != nil {
		return fmt.Errorf("failed to load deck: %w", err)
	}

	// 3. Open the session store
	db, err := storage.Open(cfg.DB, cfg.Session)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("Session store opened", "db", cfg.DB, "session", db.SessionID())

	// 4. Restore or start the review session
	manager, err := review.NewManager(pairs, db,
		review.WithKey(cfg.StorageKey),
		review.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to start review session: %w", err)
	}
	exporter := controls.WithExporter(export.File{Path: cfg.Export})

	// 5. Run the chosen interface
	switch cfg.Mode {
	case "term":
		return term.New(manager, in, out, exporter).Run(ctx)
	default:
		return serve(ctx, cfg.Addr, manager, logger, exporter)
	}
}

func serve(ctx context.Context, addr string, m *review.Manager, logger *slog.Logger, opts ...controls.Option) error {
	handler, err := web.NewServer(m, logger, opts...)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Serving review session", "addr", "http://"+addr)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
