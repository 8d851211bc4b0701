package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/popis/internal/api"
	"github.com/erazemk/popis/internal/config"
)

func cmdServe(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)

	addr := cfg.Addr
	fs.StringVar(&addr, "addr", cfg.Addr, "")
	fs.StringVar(&addr, "a", cfg.Addr, "")

	fs.Usage = func() {
		fmt.Fprintf(os.Stdout, `Usage: popis serve [flags]

Flags:
  -a, -addr <host:port>   listen address (default: %s)
`, cfg.Addr)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := a.store.JWTSecret(ctx)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	if hash, err := a.store.PasscodeHash(ctx); err == nil && hash == "" {
		slog.Warn("no passcode set, API logins will fail until 'popis passcode' is run")
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(api.Deps{
		Catalog:   a.catalog,
		Store:     a.store,
		Photos:    a.photos,
		JWTSecret: jwtSecret,
	}))

	server := &http.Server{
		Addr:              addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
