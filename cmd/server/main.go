package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solo-knight-dev/fyllo-ai/api"
	"github.com/solo-knight-dev/fyllo-ai/pkg/archive"
	"github.com/solo-knight-dev/fyllo-ai/pkg/billing"
	"github.com/solo-knight-dev/fyllo-ai/pkg/config"
	"github.com/solo-knight-dev/fyllo-ai/pkg/email"
	"github.com/solo-knight-dev/fyllo-ai/pkg/gemini"
	"github.com/solo-knight-dev/fyllo-ai/pkg/httpserver"
	"github.com/solo-knight-dev/fyllo-ai/pkg/identity"
	"github.com/solo-knight-dev/fyllo-ai/pkg/logger"
	"github.com/solo-knight-dev/fyllo-ai/pkg/mongo"
	"github.com/solo-knight-dev/fyllo-ai/pkg/push"
	"github.com/solo-knight-dev/fyllo-ai/pkg/redis"
	"github.com/solo-knight-dev/fyllo-ai/pkg/schedule"
	"github.com/solo-knight-dev/fyllo-ai/store"
	"github.com/solo-knight-dev/fyllo-ai/svc/jobs"
	"github.com/solo-knight-dev/fyllo-ai/svc/provision"
	"github.com/solo-knight-dev/fyllo-ai/svc/receipt"
	"github.com/solo-knight-dev/fyllo-ai/svc/subscription"
	"github.com/solo-knight-dev/fyllo-ai/taxdates"
)

const serviceName = "fyllo-api"

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	HTTP     httpserver.Config
	Mongo    mongo.Config
	Redis    redis.Config
	Email    email.Config
	Push     push.Config
	Gemini   gemini.Config
	Billing  billing.Config
	Identity identity.Config
	Archive  archive.Config
	API      api.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.Env, serviceName))
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	mongoClient, err := mongo.Connect(ctx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	db := mongoClient.Database(cfg.Mongo.Database)

	// Dedup survives without redis; it just loses cross-instance visibility.
	var dedup subscription.Deduper
	healthchecks := map[string]api.Healthcheck{
		"mongodb": mongo.Healthcheck(mongoClient),
	}
	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, using in-memory webhook dedup",
			slog.String("error", err.Error()))
		dedup = subscription.NewMemoryDeduper()
	} else {
		defer func() { _ = redisClient.Close() }()
		dedup = subscription.NewRedisDeduper(redisClient)
		healthchecks["redis"] = redis.Healthcheck(redisClient)
	}

	mailer, err := newMailer(cfg.Email, log)
	if err != nil {
		return fmt.Errorf("email: %w", err)
	}
	pusher, err := newPushSender(ctx, cfg.Push, log)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	verifier, claims, err := newIdentity(ctx, cfg.Identity, log)
	if err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	artifacts, err := newArchive(ctx, cfg.Archive, log)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	ai, err := gemini.New(cfg.Gemini)
	if err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	provider, err := billing.NewRESTClient(cfg.Billing)
	if err != nil {
		return fmt.Errorf("revenuecat: %w", err)
	}

	repo := store.NewRepository(db)
	provisioner := provision.New(repo, claims, mailer, log)
	analyzer := receipt.New(repo, ai, log, receipt.WithArchive(artifacts))
	reconciler := subscription.New(repo, provider, claims, mailer, dedup, log)

	calendar, err := taxdates.Load()
	if err != nil {
		return fmt.Errorf("tax calendar: %w", err)
	}
	resetJob := jobs.NewResetJob(repo,
		func() jobs.Pager { return repo.Iterate() },
		mailer, log)
	deadlineJob := jobs.NewDeadlineJob(calendar,
		func(country string) jobs.Pager { return repo.Iterate(store.WithJurisdiction(country)) },
		pusher, log)

	runner := schedule.NewRunner(schedule.WithLogger(log))
	if err := runner.Add("credit_reset", schedule.MonthlyOn(1, 0, 0), resetJob.Run); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if err := runner.Add("tax_deadline_scan", schedule.WeeklyOn(time.Monday, 9, 0), deadlineJob.Run); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	go func() {
		if err := runner.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("scheduler stopped", slog.String("error", err.Error()))
		}
	}()

	handler := api.NewHandler(cfg.API, repo, provisioner, analyzer, reconciler, verifier, healthchecks, log)

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("server listening", slog.String("addr", cfg.HTTP.Addr), slog.String("env", cfg.Env))
		}),
	)
	return srv.Run(ctx, handler.Router())
}

func newMailer(cfg email.Config, log *slog.Logger) (email.EmailSender, error) {
	if cfg.PostmarkServerToken == "" {
		log.Warn("postmark token not set, writing emails to disk", slog.String("dir", cfg.DevDir))
		return email.NewDevSender(cfg.DevDir), nil
	}
	return email.NewPostmarkClient(cfg)
}

func newPushSender(ctx context.Context, cfg push.Config, log *slog.Logger) (push.Sender, error) {
	if cfg.CredentialsFile == "" {
		log.Warn("fcm credentials not set, writing push messages to disk", slog.String("dir", cfg.DevDir))
		return push.NewDevSender(cfg.DevDir), nil
	}
	return push.NewFCMSender(ctx, cfg)
}

func newIdentity(ctx context.Context, cfg identity.Config, log *slog.Logger) (identity.TokenVerifier, identity.ClaimsSetter, error) {
	if cfg.CredentialsFile == "" {
		log.Warn("identity credentials not set, using insecure dev verifier")
		return identity.InsecureVerifier{}, identity.LogClaimsSetter{Log: log}, nil
	}
	client, err := identity.NewGoogleClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, client, nil
}

func newArchive(ctx context.Context, cfg archive.Config, log *slog.Logger) (archive.Storage, error) {
	if cfg.Bucket == "" {
		log.Warn("archive bucket not set, storing artifacts locally", slog.String("dir", cfg.LocalDir))
		return archive.NewLocalStorage(cfg.LocalDir)
	}
	return archive.NewS3Storage(ctx, cfg)
}
