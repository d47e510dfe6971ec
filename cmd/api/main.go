package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"homekeeper/internal/config"
	"homekeeper/internal/csvcodec"
	"homekeeper/internal/database"
	"homekeeper/internal/domain"
	"homekeeper/internal/logger"
	"homekeeper/internal/middleware"
	"homekeeper/internal/notify"
	"homekeeper/internal/repository"
	"homekeeper/internal/server"
	"homekeeper/internal/service"
)

const (
	assetsKey = "homekeeper:assets"
	tasksKey  = "homekeeper:tasks"
)

func gracefulShutdown(apiServer *server.Server, stopDispatcher context.CancelFunc, logger *zap.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()
	stopDispatcher()

	// Give in-flight requests 30 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

// slots holds the storage for both collections plus whatever connections back them
type slots struct {
	assets repository.Slot
	tasks  repository.Slot
	db     *sql.DB
}

func openSlots(ctx context.Context, cfg *config.Config, redisClient *redis.Client, log *zap.Logger) (slots, error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		return slots{
			assets: repository.NewRedisSlot(redisClient, assetsKey),
			tasks:  repository.NewRedisSlot(redisClient, tasksKey),
		}, nil

	case config.BackendPostgres:
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return slots{}, err
		}
		if err := database.RunMigrations(db, log); err != nil {
			db.Close()
			return slots{}, err
		}
		return slots{
			assets: repository.NewPostgresSlot(db, assetsKey),
			tasks:  repository.NewPostgresSlot(db, tasksKey),
			db:     db,
		}, nil

	default:
		return slots{
			assets: repository.NewFileSlot(filepath.Join(cfg.Storage.DataDir, "assets.json")),
			tasks:  repository.NewFileSlot(filepath.Join(cfg.Storage.DataDir, "tasks.json")),
		}, nil
	}
}

func issueToken(cfg *config.Config, subject, scopes string, ttl time.Duration) error {
	if cfg.JWT.Secret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	token, err := middleware.IssueToken(cfg.JWT.Secret, subject, strings.Split(scopes, ","), ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func main() {
	tokenSubject := flag.String("issue-token", "", "print a bearer token for this subject and exit")
	tokenScopes := flag.String("scopes", middleware.ScopeRead+","+middleware.ScopeWrite, "comma separated scopes for -issue-token")
	tokenTTL := flag.Duration("ttl", 30*24*time.Hour, "lifetime of the token printed by -issue-token")
	flag.Parse()

	cfg := config.Load()

	if *tokenSubject != "" {
		if err := issueToken(cfg, *tokenSubject, *tokenScopes, *tokenTTL); err != nil {
			fmt.Fprintf(os.Stderr, "failed to issue token: %v\n", err)
			os.Exit(1)
		}
		return
	}

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	log.Info("Starting HomeKeeper API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("notifier", cfg.Notifier),
	)

	ctx := context.Background()

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
	}

	storage, err := openSlots(ctx, cfg, redisClient, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}

	var scheduler notify.Scheduler
	if cfg.Notifier == config.NotifierRedis {
		scheduler = notify.NewRedisNotifier(redisClient, log)
	} else {
		scheduler = notify.NewLogNotifier(log)
	}
	if granted, err := scheduler.RequestAuthorization(ctx); err != nil || !granted {
		log.Warn("Reminder delivery not authorized", zap.Bool("granted", granted), zap.Error(err))
	}

	codec := csvcodec.New(cfg.CSV.Location())
	assets := service.NewAssetStore(ctx, repository.NewCollection[domain.Asset](storage.assets), codec, log)
	tasks := service.NewTaskStore(ctx, repository.NewCollection[domain.Task](storage.tasks), scheduler, log)

	dispatchCtx, stopDispatcher := context.WithCancel(ctx)
	dispatcher := notify.NewDispatcher(scheduler, notify.LogDelivery(log), cfg.Reminders.PollInterval, log)
	go dispatcher.Run(dispatchCtx)

	srv := server.NewServer(cfg, log, server.Dependencies{
		Assets:    assets,
		Tasks:     tasks,
		Scheduler: scheduler,
		Redis:     redisClient,
		DB:        storage.db,
	})

	done := make(chan bool, 1)
	go gracefulShutdown(srv, stopDispatcher, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
