package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/conference-central/internal/auth"
	"github.com/iliyamo/conference-central/internal/cache"
	"github.com/iliyamo/conference-central/internal/config"
	"github.com/iliyamo/conference-central/internal/database"
	"github.com/iliyamo/conference-central/internal/handler"
	"github.com/iliyamo/conference-central/internal/logger"
	"github.com/iliyamo/conference-central/internal/mail"
	"github.com/iliyamo/conference-central/internal/queue"
	"github.com/iliyamo/conference-central/internal/repository"
	"github.com/iliyamo/conference-central/internal/router"
	"github.com/iliyamo/conference-central/internal/service"
	"github.com/iliyamo/conference-central/internal/worker"
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, task consumer and announcement worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply database migrations before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(serviceName, cfg.LogLevel)

	db, err := database.Open(ctx, dbOptions(cfg))
	if err != nil {
		return err
	}
	defer db.Close()
	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	health := map[string]handler.Pinger{"mysql": db}
	var c service.Cache
	rdb := config.NewRedisClient(ctx, cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
		c = cache.NewRedis(rdb, "cc")
		health["redis"] = redisPinger{rdb}
	} else {
		log.Warn().Str("addr", cfg.Redis.Address()).Msg("redis unreachable; using in-process cache and no rate limiting")
		c = cache.NewMemory()
	}

	publisher := queue.NewPublisher(cfg.RabbitMQURL, log)
	svc := service.New(repository.NewStore(db), c, publisher, auth.ContextProvider{},
		service.WithLogger(log))

	dispatcher := queue.NewDispatcher()
	dispatcher.Handle(queue.TaskSendConfirmationEmail, mail.ConfirmationHandler(newMailer(cfg, log)))
	dispatcher.Handle(queue.TaskUpdateFeaturedSpeaker, svc.HandleFeaturedSpeakerTask)
	consumer := queue.NewConsumer(cfg.RabbitMQURL, dispatcher, log)
	announcer := worker.NewAnnouncementWorker(svc, cfg.AnnouncementInterval, log)

	e := router.New(handler.New(svc, log), router.Options{
		JWTSecret: cfg.JWTSecret,
		RateLimit: cfg.RateLimit,
		Redis:     rdb,
		Health:    health,
		Log:       log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return ignoreCanceled(consumer.Run(gctx)) })
	g.Go(func() error { return ignoreCanceled(announcer.Run(gctx)) })

	err = g.Wait()
	log.Info().Err(err).Msg("shutdown complete")
	return err
}

func newMailer(cfg *config.Config, log zerolog.Logger) mail.Mailer {
	if cfg.SendGridAPIKey != "" {
		return mail.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom)
	}
	log.Info().Str("path", cfg.EmailLogPath).Msg("no SendGrid key; writing emails to file")
	return mail.NewLogMailer(cfg.EmailLogPath)
}

func dbOptions(cfg *config.Config) database.Options {
	return database.Options{
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
	}
}

type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) PingContext(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
