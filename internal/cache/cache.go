// Package cache реализует сквозной read-through кэш резолвов поверх
// Redis. Источник правды всегда хранилище ссылок: кэш хранит только
// пары код -> (id, оригинальный URL) с TTL, не переживающим срок ссылки.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/VAZlabs/ShortTrack/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix  = "url:"
	defaultTTL = time.Hour
)

type cachedLink struct {
	ID     uuid.UUID `json:"id"`
	Origin string    `json:"original_url"`
}

// LinkCache кэш резолвов. Нулевой указатель — валидный выключенный кэш.
type LinkCache struct {
	client *redis.Client
	logger *zap.Logger
}

// New подключается к Redis по адресу addr. Пустой addr выключает кэш.
func New(ctx context.Context, addr string, logger *zap.Logger) (*LinkCache, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &LinkCache{client: client, logger: logger}, nil
}

// Get возвращает закэшированный резолв. Промах или сбой Redis —
// просто промах: резолв уходит в хранилище.
func (c *LinkCache) Get(ctx context.Context, code string) (uuid.UUID, string, bool) {
	if c == nil {
		return uuid.Nil, "", false
	}
	raw, err := c.client.Get(ctx, keyPrefix+code).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Ошибка чтения кэша", zap.String("code", code), zap.Error(err))
		}
		return uuid.Nil, "", false
	}
	var entry cachedLink
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("Повреждённая запись кэша", zap.String("code", code), zap.Error(err))
		return uuid.Nil, "", false
	}
	return entry.ID, entry.Origin, true
}

// Set кладёт резолв в кэш. TTL не переживает expires_at ссылки,
// поэтому истёкший код из кэша отдать нельзя.
func (c *LinkCache) Set(ctx context.Context, link *model.ShortLink) {
	if c == nil {
		return
	}
	ttl := defaultTTL
	if link.Expires != nil {
		if until := time.Until(*link.Expires); until < ttl {
			ttl = until
		}
	}
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(cachedLink{ID: link.ID, Origin: link.OriginURL})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+link.ShortCode, raw, ttl).Err(); err != nil {
		c.logger.Warn("Ошибка записи кэша", zap.String("code", link.ShortCode), zap.Error(err))
	}
}

// Invalidate выбрасывает коды из кэша (после ретенции).
func (c *LinkCache) Invalidate(ctx context.Context, codes ...string) {
	if c == nil || len(codes) == 0 {
		return
	}
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = keyPrefix + code
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Ошибка инвалидации кэша", zap.Error(err))
	}
}

// Close закрывает соединение с Redis.
func (c *LinkCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
