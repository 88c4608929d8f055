package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/api"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/config"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/db"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/logger"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/notify"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/progress"
)

const (
	configPath      = "./cmd/app/config.yml"
	shutdownTimeout = 10 * time.Second
)

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	dispatcher, closeDispatcher, err := newDispatcher(conf.RabbitMQ)
	if err != nil {
		return fmt.Errorf("failed to initialize notifications -> %w", err)
	}
	defer closeDispatcher()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := progress.NewTracker(conf.Progress.Capacity, conf.Progress.TTL, zap.L().Named("progress"))
	go tracker.Run(ctx, conf.Progress.SweepInterval)

	s, err := api.NewServer(conf, postgresDB, dispatcher, tracker)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}

	config.Watch(configPath, func(c *config.AppConfig) {
		if err := s.XP.Configure(c.XP.EvaluationPoints, c.XP.LevelStep); err != nil {
			zap.L().Warn("config reload rejected", zap.Error(err))
			return
		}
		zap.L().Info("xp configuration reloaded")
	}, func(err error) {
		zap.L().Warn("config reload failed", zap.Error(err))
	})

	srv := &http.Server{
		Addr:              ":" + s.Config.API.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server shutdown", zap.Error(err))
		}
	}()

	zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
	if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start the server -> %w", err)
	}
	zap.L().Info("server stopped")

	return nil
}

// newDispatcher publishes to RabbitMQ when a broker is configured and always
// logs notifications.
func newDispatcher(conf *config.RabbitMQConfig) (notify.Dispatcher, func(), error) {
	logDispatcher := notify.NewLogDispatcher(zap.L().Named("notify"))
	if conf.URL == "" {
		return logDispatcher, func() {}, nil
	}

	publisher, err := notify.NewRabbitPublisher(conf.URL, conf.Exchange)
	if err != nil {
		return nil, nil, fmt.Errorf("notify.NewRabbitPublisher -> %w", err)
	}
	zap.L().Info("publishing notifications to rabbitmq", zap.String("exchange", conf.Exchange))

	closeFn := func() {
		if err := publisher.Close(); err != nil {
			zap.L().Warn("failed to close rabbitmq publisher", zap.Error(err))
		}
	}

	return notify.Fanout{publisher, logDispatcher}, closeFn, nil
}
