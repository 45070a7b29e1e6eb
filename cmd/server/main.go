package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/MKhiriev/go-support-portal/internal/adapter"
	"github.com/MKhiriev/go-support-portal/internal/config"
	"github.com/MKhiriev/go-support-portal/internal/handler"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/metrics"
	"github.com/MKhiriev/go-support-portal/internal/server"
	"github.com/MKhiriev/go-support-portal/internal/service"
	"github.com/MKhiriev/go-support-portal/internal/store"
	"github.com/MKhiriev/go-support-portal/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	printBuildInfo(buildInfo)

	log := logger.NewLogger("support-portal")
	ctx := log.WithContext(context.Background())

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	db, err := store.NewConnect(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	defer db.Close()

	if err = db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	healthChecks := map[string]service.HealthCheck{
		"database": db.PingContext,
	}

	var failedLogins store.FailedLoginRepository
	if cfg.Storage.Redis.Address != "" {
		client, err := store.NewRedisClient(ctx, cfg.Storage.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("error connecting to redis")
		}
		defer client.Close()

		failedLogins = store.NewRedisFailedLoginRepository(client)
		healthChecks["redis"] = redisPing(client)
	}

	policy, err := service.LoadPasswordPolicy(cfg.App.PasswordBlacklistPath)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading password blacklist")
	}

	var mail service.MailSender
	if cfg.Mail.APIKey != "" {
		mail = adapter.NewMailgunSender(cfg.Mail, log)
	} else {
		log.Warn().Msg("no mail API key configured, verification emails are only logged")
		mail = adapter.NewLogMailSender(log)
	}

	manager := store.NewManager(db, log)

	services := service.NewServices(service.Dependencies{
		Manager:      manager,
		FailedLogins: failedLogins,
		Mail:         mail,
		QR:           adapter.NewQRRenderer(adapter.DefaultQRSize),
		Policy:       policy,
		Audit:        logger.NewAuditLogger(log, cfg.App.LoginLogPath),
		Metrics:      metrics.New(prometheus.DefaultRegisterer),
		BuildInfo:    buildInfo,
		HealthChecks: healthChecks,
	}, cfg.App)

	if err = service.Bootstrap(ctx, manager, services.AuthService, cfg.Admin, log); err != nil {
		log.Fatal().Err(err).Msg("error seeding administrator")
	}

	handlers, err := handler.NewHandlers(services, manager, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	if err = srv.RunServer(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}
}

func redisPing(client *redis.Client) service.HealthCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.BuildVersion())
	fmt.Printf("Build date: %s\n", info.BuildDate())
	fmt.Printf("Build commit: %s\n", info.BuildCommit())
}
