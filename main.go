package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/hacknight/auth"
	"github.com/danielhkuo/hacknight/broadcast"
	"github.com/danielhkuo/hacknight/cliparse"
	"github.com/danielhkuo/hacknight/db"
	"github.com/danielhkuo/hacknight/engine"
	"github.com/danielhkuo/hacknight/metrics"
	"github.com/danielhkuo/hacknight/middleware"
	"github.com/danielhkuo/hacknight/penalty"
	"github.com/danielhkuo/hacknight/router"
)

func main() {
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if cfg.PrintAdminKey {
		fmt.Println(auth.GenerateAdminKey(auth.AdminScope, cfg.AdminKeySalt))
		return
	}

	if err := run(cfg); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg cliparse.Config) error {
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer dbConn.Close()

	if err := db.CreateSchema(dbConn); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	scoringConn := dbConn
	if cfg.ScoringDatabaseURL != cfg.DatabaseURL || cfg.ScoringDatabaseType != cfg.DatabaseType {
		scoringConn, err = db.Open(cfg.ScoringDatabaseType, cfg.ScoringDatabaseURL)
		if err != nil {
			return fmt.Errorf("scoring database connection failed: %w", err)
		}
		defer scoringConn.Close()
	}
	if err := db.CreateScoringSchema(scoringConn); err != nil {
		return fmt.Errorf("scoring schema creation failed: %w", err)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType, "scoring_type", cfg.ScoringDatabaseType)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("metrics registration failed: %w", err)
	}

	hub := broadcast.NewHub(m, originChecker(cfg.CORSOrigins))
	defer hub.Close()

	eng := newEngine(dbConn, scoringConn, hub, m, cfg)
	mux := router.NewRouter(eng, hub, reg, cfg)

	server := http.Server{
		Handler:           middleware.CORS(cfg.CORSOrigins)(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		// Observers hold hijacked connections that Shutdown does not wait for
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	slog.Info("Server closed", "error", err)
	return err
}

func newEngine(dbConn, scoringConn *sql.DB, hub *broadcast.Hub, m *metrics.Metrics, cfg cliparse.Config) *engine.Engine {
	applier := penalty.NewApplier(scoringConn, penalty.Config{
		Points:   cfg.PenaltyPoints,
		Category: cfg.PenaltyCategory,
	})
	return engine.New(dbConn, applier, hub, m, engine.Policy{
		DefaultEventDate:  cfg.EventDate,
		QuorumRatio:       cfg.QuorumRatio,
		AutoGuessDuration: time.Duration(cfg.GuessMinutes * float64(time.Minute)),
	})
}

// originChecker restricts websocket upgrades to the CORS origins. With no
// origins configured every origin is accepted.
func originChecker(origins []string) func(*http.Request) bool {
	if len(origins) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
