package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"caseledger/internal/access"
	accesshandler "caseledger/internal/access/handler"
	"caseledger/internal/audit"
	audithandler "caseledger/internal/audit/handler"
	auditmem "caseledger/internal/audit/store/memory"
	auditpg "caseledger/internal/audit/store/postgres"
	"caseledger/internal/audit/stream"
	"caseledger/internal/directory"
	directoryhandler "caseledger/internal/directory/handler"
	"caseledger/internal/identity"
	identityhandler "caseledger/internal/identity/handler"
	jwttoken "caseledger/internal/jwt_token"
	"caseledger/internal/platform/config"
	"caseledger/internal/platform/httpserver"
	"caseledger/internal/platform/logger"
	"caseledger/internal/platform/metrics"
	platformpostgres "caseledger/internal/platform/postgres"
	platformredis "caseledger/internal/platform/redis"
	"caseledger/internal/registry"
	registryhandler "caseledger/internal/registry/handler"
	httptransport "caseledger/internal/transport/http"
	"caseledger/pkg/domain"
	"caseledger/pkg/platform/tx"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	admin := domain.Principal(cfg.AdminPrincipal)

	var (
		db     *sql.DB
		runner tx.Runner

		identityStore  identity.Store
		directoryStore directory.Store
		caseStore      registry.Store
		accessStore    access.Store
		auditStore     audit.Store
	)
	if cfg.PostgresDSN != "" {
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := platformpostgres.Apply(context.Background(), db); err != nil {
			log.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		runner = tx.NewSQL(db)
		identityStore = identity.NewPostgres(db)
		directoryStore = directory.NewPostgres(db)
		caseStore = registry.NewPostgres(db)
		accessStore = access.NewPostgres(db)
		auditStore = auditpg.New(db)
	} else {
		runner = tx.NewSerial()
		identityStore = identity.NewInMemoryStore()
		directoryStore = directory.NewInMemoryStore()
		caseStore = registry.NewInMemoryStore()
		accessStore = access.NewInMemoryStore()
		auditStore = auditmem.NewInMemoryStore()
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	m := metrics.New()

	var auditOpts []audit.Option
	var inbox chan audit.Event
	var kafkaSink *stream.Kafka
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err = stream.NewKafka(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("failed to create kafka audit sink", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		inbox = make(chan audit.Event, 1024)
		auditOpts = append(auditOpts, audit.WithTee(inbox))
	}
	auditPublisher := audit.NewPublisher(auditStore, auditOpts...)

	identityService := identity.NewService(identityStore, auditPublisher, m, runner)
	directoryService := directory.NewService(directoryStore, admin, auditPublisher, runner)
	accessCache := access.NewCache(redisClient, cfg.AccessCacheTTL)
	accessService := access.NewService(accessStore, caseStore, directoryService, auditPublisher, m, runner, accessCache)
	registryService := registry.NewService(caseStore, identityService, directoryService, accessStore, auditPublisher, m, runner)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "caseledger")
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	health := func(ctx context.Context) error {
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
		}
		if redisClient != nil {
			return redisClient.Health(ctx)
		}
		return nil
	}

	router := httptransport.NewRouter(log, validator, health,
		identityhandler.New(identityService, log),
		registryhandler.New(registryService, log),
		accesshandler.New(accessService, log),
		directoryhandler.New(directoryService, log),
		audithandler.New(auditPublisher, admin, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting caseledger", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if inbox != nil {
		worker := audit.NewWorker(kafkaSink, inbox)
		g.Go(func() error {
			if err := worker.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
