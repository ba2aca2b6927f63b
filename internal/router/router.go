package router

import (
	"github.com/VAZlabs/ShortTrack/internal/handlers"
	"github.com/VAZlabs/ShortTrack/internal/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NewRouter создаёт и настраивает маршрутизатор
func NewRouter(handler *handlers.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.LoggingMiddleware(logger)) // Подключаем логирование
	r.Use(middleware.GzipMiddleware)            // Gzip-сжатие

	r.Post("/", handler.ReceiveURL)
	r.Post("/api/shorten", handler.ReceiveShorten)
	r.Get("/api/stats/{id}", handler.StatsHandler)
	r.Post("/api/user/register", handler.RegisterHandler)
	r.Post("/api/user/login", handler.LoginHandler)
	r.Get("/ping", handler.PingHandler)
	r.Get("/{id}", handler.ResponseURL)
	return r
}
