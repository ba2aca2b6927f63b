package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/VAZlabs/ShortTrack/internal/auth"
	"github.com/VAZlabs/ShortTrack/internal/cache"
	"github.com/VAZlabs/ShortTrack/internal/config"
	"github.com/VAZlabs/ShortTrack/internal/database"
	"github.com/VAZlabs/ShortTrack/internal/generator"
	"github.com/VAZlabs/ShortTrack/internal/handlers"
	"github.com/VAZlabs/ShortTrack/internal/repositories"
	"github.com/VAZlabs/ShortTrack/internal/router"
	"github.com/VAZlabs/ShortTrack/internal/service"
	"github.com/VAZlabs/ShortTrack/internal/storage"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Инициализация конфигурации
	cfg := config.NewConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen, err := generator.New(cfg.CodeLength)
	if err != nil {
		logger.Fatal("Ошибка инициализации генератора кодов", zap.Error(err))
	}

	// Выбор хранилища по режиму: database либо встроенное (file/in-memory)
	var (
		links  service.LinkStore
		clicks service.ClickStore
		users  service.UserStore
	)
	if cfg.Mode == "database" {
		if err := database.RunMigrations(cfg.DatabaseDSN, cfg.PgMigrationsPath, logger); err != nil {
			logger.Fatal("Ошибка применения миграций", zap.Error(err))
		}
		db, err := database.NewDB(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			logger.Fatal("Ошибка подключения к БД", zap.Error(err))
		}
		defer db.Close()

		links = repositories.NewLinkRepository(db, cfg.StoreTimeout)
		clicks = repositories.NewClickRepository(db, cfg.StoreTimeout)
		users = repositories.NewUserRepository(db, cfg.StoreTimeout)
	} else {
		mem := storage.NewMemStore(cfg.FileStoragePath)
		links, clicks = mem, mem
		users = storage.NewMemUsers()
	}

	linkCache, err := cache.New(ctx, cfg.RedisAddr, logger)
	if err != nil {
		logger.Warn("Redis недоступен, кэш резолвов выключен", zap.Error(err))
	}
	defer linkCache.Close()

	writer := service.NewClickWriter(clicks, logger, cfg.ClickBuffer, cfg.ClickFlushEvery)

	shortener := service.NewShortenerService(links, writer, linkCache, gen, logger)
	stats := service.NewStatsService(links, clicks, logger)
	userService := service.NewUserService(users, logger)
	authService := auth.New(cfg.AuthSecret)

	handler := handlers.NewHandler(shortener, stats, userService, authService, logger, cfg.BaseURL)
	r := router.NewRouter(handler, logger)

	// Ретенция истёкших ссылок
	sweeper := service.NewSweeper(links, linkCache, logger, cfg.SweepEvery)
	go sweeper.Run(ctx)

	srv := &http.Server{Addr: cfg.ServerAddress, Handler: r}
	go func() {
		logger.Info("Сервер запущен", zap.String("address", cfg.ServerAddress), zap.String("mode", cfg.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ошибка при запуске сервера", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Остановка сервера")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}

	// Дренируем буфер кликов перед выходом: at-least-once при штатной остановке
	writer.Close()
}
