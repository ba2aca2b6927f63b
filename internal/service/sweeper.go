package service

import (
	"context"
	"time"

	"github.com/VAZlabs/ShortTrack/internal/cache"
	"go.uber.org/zap"
)

// defaultGrace истёкшая ссылка живёт в хранилище ещё grace-период:
// статистика по свежеистёкшим кодам остаётся доступной.
const defaultGrace = time.Hour

// Sweeper периодически удаляет истёкшие ссылки вместе с их кликами
// (каскад в хранилище) и выбрасывает коды из кэша. Это и есть явная
// политика ретенции: после sweep код свободен для повторного занятия.
type Sweeper struct {
	Links  LinkStore
	Cache  *cache.LinkCache
	Logger *zap.Logger
	Every  time.Duration
	Grace  time.Duration
}

// NewSweeper создаёт задачу ретенции.
func NewSweeper(links LinkStore, linkCache *cache.LinkCache, logger *zap.Logger, every time.Duration) *Sweeper {
	if every <= 0 {
		every = 10 * time.Minute
	}
	return &Sweeper{
		Links:  links,
		Cache:  linkCache,
		Logger: logger,
		Every:  every,
		Grace:  defaultGrace,
	}
}

// Run крутит цикл ретенции до отмены контекста.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep один проход ретенции.
func (s *Sweeper) Sweep(ctx context.Context) {
	codes, err := s.Links.DeleteExpired(ctx, time.Now().Add(-s.Grace))
	if err != nil {
		s.Logger.Warn("Проход ретенции не удался", zap.Error(err))
		return
	}
	if len(codes) == 0 {
		return
	}
	s.Cache.Invalidate(ctx, codes...)
	s.Logger.Info("Истёкшие ссылки удалены", zap.Int("count", len(codes)))
}
