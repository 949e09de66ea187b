// main wires configuration, stores, services, and the HTTP server, then runs
// until interrupted. Business logic lives in the internal packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	credentialhandler "gatepass/internal/credential/handler"
	credentialmetrics "gatepass/internal/credential/metrics"
	credentialservice "gatepass/internal/credential/service"
	credentialstore "gatepass/internal/credential/store"
	"gatepass/internal/kiosk"
	kioskhandler "gatepass/internal/kiosk/handler"
	"gatepass/internal/notify"
	occupancyhandler "gatepass/internal/occupancy/handler"
	occupancymetrics "gatepass/internal/occupancy/metrics"
	occupancyservice "gatepass/internal/occupancy/service"
	occupancystore "gatepass/internal/occupancy/store"
	"gatepass/internal/platform/config"
	"gatepass/internal/platform/httpserver"
	"gatepass/internal/platform/logger"
	"gatepass/internal/platform/postgres"
	"gatepass/internal/platform/redis"
	"gatepass/internal/registration"
	httptransport "gatepass/internal/transport/http"
	"gatepass/pkg/platform/audit"
	"gatepass/pkg/platform/audit/publisher"
	auditsink "gatepass/pkg/platform/audit/sink"
	auditmemory "gatepass/pkg/platform/audit/store/memory"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when configured, in-process memory otherwise.
	var (
		credentials credentialstore.Store
		occupancy   occupancystore.Store
		attendees   registration.Store
		events      registration.EventStore
	)
	if cfg.PostgresURL != "" {
		db, err := postgres.Open(cfg.PostgresURL)
		if err != nil {
			log.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		credentials = credentialstore.NewPostgres(db)
		occupancy = occupancystore.NewPostgres(db)
		regs := registration.NewPostgres(db)
		attendees, events = regs, regs
	} else {
		log.Warn("no postgres configured, using in-memory stores")
		credentials = credentialstore.NewInMemoryStore()
		occupancy = occupancystore.NewInMemoryStore()
		regs := registration.NewInMemoryStore()
		attendees, events = regs, regs
	}

	// Kiosk settings: Redis when configured.
	var settingsStore kiosk.Store
	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		settingsStore = kiosk.NewRedisStore(redisClient)
	} else {
		log.Warn("no redis configured, kiosk settings held in memory")
		settingsStore = kiosk.NewInMemoryStore()
	}
	settingsCache := kiosk.NewCache(settingsStore, cfg.KioskSettingsTTL)

	// Audit trail: Kafka when configured.
	var auditStore audit.Store
	if len(cfg.KafkaBrokers) > 0 {
		kafkaStore, err := auditsink.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		defer kafkaStore.Close()
		auditStore = kafkaStore
	} else {
		auditStore = auditmemory.NewInMemoryStore()
	}
	auditor := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(256),
		publisher.WithLogger(log),
	)
	defer auditor.Close()

	var dispatcher notify.Dispatcher = notify.Noop{}
	if cfg.DispatchURL != "" {
		dispatcher = notify.NewWebhook(cfg.DispatchURL, cfg.DispatchTimeout)
	}

	resolver := registration.NewResolver(attendees, events)

	credentialSvc := credentialservice.New(
		credentials,
		resolver,
		dispatcher,
		auditor,
		credentialmetrics.New(),
		log,
		cfg.AccessBaseURL,
	)
	engine := occupancyservice.NewEngine(
		occupancy,
		resolver,
		auditor,
		occupancymetrics.New(),
		log,
	)

	router := httptransport.NewRouter(httptransport.Handlers{
		Credentials: credentialhandler.New(credentialSvc, log),
		Occupancy:   occupancyhandler.New(engine, settingsCache, log),
		Kiosk:       kioskhandler.New(settingsStore, settingsCache, log),
	}, cfg.JWTSigningKey, func(r *http.Request) error {
		if redisClient != nil {
			return redisClient.Health(r.Context())
		}
		return nil
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting gatepass", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("gatepass stopped")
}
