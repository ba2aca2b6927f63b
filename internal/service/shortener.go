package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/VAZlabs/ShortTrack/internal/cache"
	"github.com/VAZlabs/ShortTrack/internal/generator"
	"github.com/VAZlabs/ShortTrack/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxRetries предел повторных генераций кода при конфликте.
// При алфавите 62 и длине 10 исчерпание практически недостижимо,
// но исход обязан быть определённым: ErrCodeSpaceExhausted.
const maxRetries = 5

// LinkStore контракт хранилища ссылок, нужный сервису.
// Вставка обязана быть атомарной относительно уникальности кода.
type LinkStore interface {
	Save(ctx context.Context, link *model.ShortLink) error
	Resolve(ctx context.Context, code string) (*model.ShortLink, error)
	GetByCode(ctx context.Context, code string) (*model.ShortLink, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) ([]string, error)
	Ping(ctx context.Context) error
}

// ClickStore контракт журнала переходов, нужный сервису.
type ClickStore interface {
	SaveBatch(ctx context.Context, events []*model.ClickEvent) (int64, error)
	Count(ctx context.Context, linkID uuid.UUID) (int64, error)
	CountSince(ctx context.Context, linkID uuid.UUID, since time.Time) (int64, error)
}

// ShortenerService оркестрирует генератор и хранилище ссылок.
// Безопасен при произвольном чередовании конкурентных вызовов:
// корректность держится на атомарной вставке хранилища, а не на
// внутрипроцессных блокировках — несколько инстансов процесса остаются
// корректными.
type ShortenerService struct {
	Links  LinkStore
	Writer *ClickWriter
	Cache  *cache.LinkCache
	Gen    generator.Func
	Logger *zap.Logger
}

// NewShortenerService создаёт сервис сокращения ссылок.
func NewShortenerService(links LinkStore, writer *ClickWriter, linkCache *cache.LinkCache, gen generator.Func, logger *zap.Logger) *ShortenerService {
	return &ShortenerService{
		Links:  links,
		Writer: writer,
		Cache:  linkCache,
		Gen:    gen,
		Logger: logger,
	}
}

// Create валидирует URL, генерирует код и вставляет ссылку.
// Конфликт кода гасится ретраем с новым кодом; наружу ErrDuplicateCode
// не выходит никогда.
func (s *ShortenerService) Create(ctx context.Context, originalURL string, expires *time.Time) (*model.ShortLink, error) {
	if err := validateURL(originalURL); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		link := &model.ShortLink{
			ID:        uuid.New(),
			ShortCode: s.Gen(),
			OriginURL: originalURL,
			Created:   time.Now(),
			Expires:   expires,
		}

		err := s.Links.Save(ctx, link)
		if err == nil {
			return link, nil
		}
		if errors.Is(err, model.ErrDuplicateCode) {
			s.Logger.Info("Коллизия короткого кода, повторная генерация",
				zap.String("code", link.ShortCode), zap.Int("attempt", attempt+1))
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("create after %d attempts: %w", maxRetries, model.ErrCodeSpaceExhausted)
}

// ResolveAndTrack возвращает оригинальный URL для редиректа и ставит
// событие перехода в очередь. Ответ не ждёт фиксации клика: запись
// асинхронна относительно HTTP-ответа (fire-and-forget).
func (s *ShortenerService) ResolveAndTrack(ctx context.Context, code string, clickCtx model.ClickContext) (string, error) {
	if id, origin, ok := s.Cache.Get(ctx, code); ok {
		s.Writer.Enqueue(id, clickCtx)
		return origin, nil
	}

	link, err := s.Links.Resolve(ctx, code)
	if err != nil {
		return "", err
	}

	s.Cache.Set(ctx, link)
	s.Writer.Enqueue(link.ID, clickCtx)
	return link.OriginURL, nil
}

// Ping проверяет доступность хранилища.
func (s *ShortenerService) Ping(ctx context.Context) error {
	return s.Links.Ping(ctx)
}

// validateURL требует непустой абсолютный URL со схемой и хостом.
func validateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("empty URL: %w", model.ErrInvalidURL)
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("malformed URL %q: %w", raw, model.ErrInvalidURL)
	}
	return nil
}
