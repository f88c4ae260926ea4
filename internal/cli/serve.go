package cli

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/seastate/internal/config"
	"github.com/lazypower/seastate/internal/engine"
	"github.com/lazypower/seastate/internal/server"
	"github.com/lazypower/seastate/internal/ticker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the drift engine and HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfgPath, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, dbPath, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if r := cfg.Database.Retention; r > 0 {
		n, err := db.PruneWatchEvents(time.Now().Add(-r))
		if err != nil {
			return fmt.Errorf("prune watch events: %w", err)
		}
		if n > 0 {
			log.Printf("serve: pruned %d watch events older than %s", n, r)
		}
	}

	settings, err := config.NewWatcher(cfgPath, cfg)
	if err != nil {
		return fmt.Errorf("engine settings: %w", err)
	}

	eng := engine.New(engine.Options{
		Settings:  settings,
		Persister: db,
		Events:    db,
		Debug:     cfg.Engine.Debug,
	})
	defer eng.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := ticker.New(eng, cfg.Engine.TickInterval)
	loop.Start(ctx)
	defer loop.Stop()

	srv := server.New(db, eng, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     srv,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	// Event streams never go idle; cancelling the base context ends them.
	httpServer.RegisterOnShutdown(cancel)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "seastate serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  config: %s\n", cfgPath)
		fmt.Fprintf(os.Stderr, "  state: %s\n", eng.Source())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
