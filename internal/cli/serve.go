package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"synaptic/internal/chem"
	"synaptic/internal/engine"
	"synaptic/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: config load failed (%v), using defaults\n", err)
	}

	db, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	chemistry, err := chem.Load(db)
	if err != nil {
		return fmt.Errorf("load chemistry: %w", err)
	}

	eng := engine.New(db, chemistry)
	eng.StartDecayTimer(cfg.Decay.Rate, time.Duration(cfg.Decay.IntervalMinutes)*time.Minute)
	defer eng.Stop()

	var wanderer *engine.Wanderer
	if cfg.Wander.Enabled {
		wanderer = engine.NewWanderer(
			db.Path,
			chemistry,
			time.Duration(cfg.Wander.IntervalSeconds)*time.Second,
			time.Duration(cfg.Wander.MinIdleSeconds)*time.Second,
		)
		wanderer.Start()
		defer wanderer.Stop()
	}

	srv := server.New(db, eng, wanderer, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "synaptic serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", db.Path)
		if wanderer != nil {
			fmt.Fprintf(os.Stderr, "  wander: every %ds after %ds idle\n",
				cfg.Wander.IntervalSeconds, cfg.Wander.MinIdleSeconds)
		}
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	if err := chemistry.Save(db); err != nil {
		fmt.Fprintf(os.Stderr, "save chemistry: %v\n", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
