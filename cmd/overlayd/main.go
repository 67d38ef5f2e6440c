// SPDX-License-Identifier: MIT

// Command overlayd serves the tennis overlay admin panel: link management,
// the four-corner layout configuration and the results pages.
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

	"golang.org/x/sync/errgroup"

	"github.com/wyniki-tenis/overlayd/internal/config"
	"github.com/wyniki-tenis/overlayd/internal/health"
	"github.com/wyniki-tenis/overlayd/internal/log"
	"github.com/wyniki-tenis/overlayd/internal/store"
	"github.com/wyniki-tenis/overlayd/internal/web"
)

// set via -ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("overlayd %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	if err := run(); err != nil {
		logger := log.Base()
		logger.Error().Err(err).Str(log.FieldEvent, "daemon.fatal").Msg("overlayd exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()

	log.Configure(log.Config{
		Level:   cfg.LogLevel,
		Service: "overlayd",
		Version: version,
	})
	logger := log.Base()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if !cfg.AuthConfigured() {
		logger.Warn().
			Str(log.FieldEvent, "auth.unconfigured").
			Msg("OVERLAYD_ADMIN_USER/OVERLAYD_ADMIN_PASS not set, config pages will refuse access")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error().Err(err).Str(log.FieldEvent, "store.close").Msg("closing store failed")
		}
	}()
	logger.Info().Str(log.FieldEvent, "store.opened").Str(log.FieldPath, cfg.DBPath).Msg("database ready")

	if err := st.Seed(ctx, cfg.LinksFile); err != nil {
		return fmt.Errorf("seed links: %w", err)
	}

	hm := health.NewManager(version)
	hm.RegisterChecker(health.NewDBChecker(st.DB()))

	srv, err := web.New(cfg, st, hm)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str(log.FieldEvent, "http.listen").
			Str("addr", cfg.ListenAddr).
			Str("version", version).
			Msg("overlayd listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		// A missing seed directory only disables live resync.
		if err := st.WatchSeedFile(gctx, cfg.LinksFile); err != nil {
			logger.Warn().Err(err).Str(log.FieldEvent, "watch.disabled").Msg("seed file watcher unavailable")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Str(log.FieldEvent, "daemon.shutdown").Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
