package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/penguicon/contrax/internal/adapters/httpapi"
	memidempotency "github.com/penguicon/contrax/internal/adapters/memory/idempotency"
	memsubmissionrepo "github.com/penguicon/contrax/internal/adapters/memory/submissionrepo"
	memuserrepo "github.com/penguicon/contrax/internal/adapters/memory/userrepo"
	postgres "github.com/penguicon/contrax/internal/adapters/postgres"
	pgidempotency "github.com/penguicon/contrax/internal/adapters/postgres/idempotency"
	pgsubmissionrepo "github.com/penguicon/contrax/internal/adapters/postgres/submissionrepo"
	pguserrepo "github.com/penguicon/contrax/internal/adapters/postgres/userrepo"
	"github.com/penguicon/contrax/internal/app/submissions"
	platformclock "github.com/penguicon/contrax/internal/platform/clock"
	"github.com/penguicon/contrax/internal/platform/config"
	"github.com/penguicon/contrax/internal/platform/seed"
	idempotencyport "github.com/penguicon/contrax/internal/ports/out/idempotency"
	submissionrepoport "github.com/penguicon/contrax/internal/ports/out/submissionrepo"
	userrepoport "github.com/penguicon/contrax/internal/ports/out/userrepo"
)

func main() {
	cfg, err := config.LoadServerConfigFromEnv()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	clk := platformclock.NewSystemClock()

	var (
		submissionRepo submissionrepoport.Repository
		userRepo       userrepoport.Repository
		idemStore      idempotencyport.Store
		cleanup        func()
	)

	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL, postgres.PoolOptions{MaxConns: cfg.DBMaxConns})
		if err != nil {
			log.Fatalf("invalid postgres config: %v", err)
		}
		cleanup = pool.Close
		if err := postgres.Migrate(context.Background(), pool); err != nil {
			pool.Close()
			log.Fatalf("migrate: %v", err)
		}

		submissionRepo = pgsubmissionrepo.NewRepo(pool)
		userRepo = pguserrepo.NewRepo(pool)
		idemStore = pgidempotency.NewStore(pool)
	default:
		submissionRepo = memsubmissionrepo.NewRepo()
		userRepo = memuserrepo.NewRepo()
		idemStore = memidempotency.NewStore()
	}

	if cleanup != nil {
		defer cleanup()
	}

	if cfg.SeedFile != "" {
		f, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		if err := f.Apply(context.Background(), userRepo, submissionRepo, logger); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	svc := submissions.NewService(submissionRepo, userRepo, clk, logger)
	api := httpapi.NewServer(svc, httpapi.ServerOptions{
		CacheMaxAge: cfg.CacheMaxAge,
		Idempotency: idemStore,
		Now:         clk.Now,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(api),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("api listening on :%s (storage=%s)", cfg.Port, cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
