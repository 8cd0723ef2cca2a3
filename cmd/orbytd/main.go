// Command orbytd serves the household agenda API, the provider webhooks and
// the scheduled sync sweeps.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	orbytmw "github.com/PapaJax20/orbyt/middleware/http"
	"github.com/PapaJax20/orbyt/pkg/agenda"
	zerologadapter "github.com/PapaJax20/orbyt/pkg/agenda/logger/zerolog"
	agendaprom "github.com/PapaJax20/orbyt/pkg/agenda/metrics/prometheus"
	"github.com/PapaJax20/orbyt/pkg/api"
	"github.com/PapaJax20/orbyt/pkg/relay"
	relayprom "github.com/PapaJax20/orbyt/pkg/relay/metrics/prometheus"
	"github.com/PapaJax20/orbyt/storage/memory"
	"github.com/PapaJax20/orbyt/storage/postgres"
	redisstore "github.com/PapaJax20/orbyt/storage/redis"
)

func main() {
	cfg := loadConfig()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("orbytd exited")
	}
}

func run(ctx context.Context, cfg runtimeConfig, log zerolog.Logger) error {
	appLogger := zerologadapter.NewLogger(log)

	// Storage: postgres when configured, in-memory otherwise
	var store agenda.Store
	if cfg.DatabaseURL != "" {
		pgCfg := postgres.DefaultConfig()
		pgCfg.ConnectionString = cfg.DatabaseURL
		pg, err := postgres.New(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer pg.Close()
		store = pg
		log.Info().Msg("using postgres storage")
	} else {
		store = memory.New()
		log.Warn().Msg("no database configured, using in-memory storage")
	}

	// Webhook dedupe: redis when configured, otherwise duplicate deliveries
	// are processed (safe, syncs are idempotent)
	var deduper relay.Deduper
	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		defer client.Close() //nolint:errcheck
		d, err := redisstore.New(client, redisstore.DefaultConfig())
		if err != nil {
			return err
		}
		deduper = d
		log.Info().Msg("using redis webhook dedupe")
	}

	registry := prometheus.NewRegistry()

	svc, err := agenda.NewService(store, agenda.Config{
		Logger:  appLogger,
		Metrics: agendaprom.NewMetrics(registry, cfg.MetricsNamespace),
	})
	if err != nil {
		return err
	}

	rl, err := relay.New(store, nil, nil, deduper, relay.Config{
		CronSecret:          cfg.CronSecret,
		StripeWebhookSecret: cfg.StripeWebhookSecret,
		Logger:              appLogger,
		Metrics:             relayprom.NewMetrics(registry, cfg.MetricsNamespace),
	})
	if err != nil {
		return err
	}

	apiHandler, err := api.NewHandler(api.Config{
		Service:        svc,
		GetHouseholdID: api.FromContext(orbytmw.HouseholdIDKey),
		GetEventID: func(r *http.Request) string {
			return chi.URLParam(r, "id")
		},
		LoginURL:    cfg.LoginURL,
		SettingsURL: cfg.SettingsURL,
		Logger:      appLogger,
	})
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	router.Route("/v1", func(r chi.Router) {
		r.Use(orbytmw.Middleware(orbytmw.Config{}))
		r.Get("/agenda", apiHandler.GetAgenda)
		r.Get("/agenda.ics", apiHandler.GetAgendaICS)
		r.Delete("/events/{id}", apiHandler.DeleteEvent)
	})

	router.Get("/auth/callback", apiHandler.AuthCallback)
	router.Get("/integrations/google/callback", apiHandler.IntegrationCallback("google"))
	router.Get("/integrations/microsoft/callback", apiHandler.IntegrationCallback("microsoft"))
	router.Get("/integrations/plaid/callback", apiHandler.IntegrationCallback("plaid"))

	router.Post("/webhooks/google-calendar", rl.HandleGooglePush)
	router.Post("/webhooks/stripe", rl.HandleStripeWebhook)

	router.Post("/cron/calendar-sync", rl.HandleCronCalendar)
	router.Post("/cron/finance-sync", rl.HandleCronSync)
	router.Post("/cron/renew-subscriptions", rl.HandleCronRenew)

	// Scheduled sweeps mirror the cron endpoints for deployments without an
	// external scheduler
	scheduler := cron.New()
	schedules := []struct {
		name string
		spec string
		run  func(context.Context) (int, int, error)
	}{
		{"calendar", cfg.CalendarSyncSchedule, rl.CalendarSweep},
		{"finance", cfg.FinanceSyncSchedule, rl.FinanceSweep},
		{"renewal", cfg.RenewSchedule, rl.RenewSweep},
	}
	for _, s := range schedules {
		s := s
		if _, err := scheduler.AddFunc(s.spec, func() {
			if _, _, err := s.run(context.Background()); err != nil {
				log.Error().Err(err).Str("sweep", s.name).Msg("scheduled sweep failed")
			}
		}); err != nil {
			return err
		}
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("listen", cfg.Listen).Msg("orbytd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		<-scheduler.Stop().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
