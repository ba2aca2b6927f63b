package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/VAZlabs/ShortTrack/internal/generator"
	"github.com/VAZlabs/ShortTrack/internal/model"
	"github.com/VAZlabs/ShortTrack/internal/service"
	"github.com/VAZlabs/ShortTrack/internal/service/mocks"
	"github.com/VAZlabs/ShortTrack/internal/storage"
)

// fixedGen возвращает генератор с заранее заданной последовательностью кодов.
// Последний код повторяется бесконечно.
func fixedGen(codes ...string) generator.Func {
	i := 0
	return func() string {
		code := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return code
	}
}

func newShortener(t *testing.T, links service.LinkStore, clicks service.ClickStore, gen generator.Func) (*service.ShortenerService, *service.ClickWriter) {
	t.Helper()
	logger := zap.NewNop()
	writer := service.NewClickWriter(clicks, logger, 16, 10*time.Millisecond)
	t.Cleanup(writer.Close)
	return service.NewShortenerService(links, writer, nil, gen, logger), writer
}

func TestShortenerService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	svc, _ := newShortener(t, links, mocks.NewMockClickStore(ctrl), fixedGen("abc123XYZ0"))

	links.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, link *model.ShortLink) error {
			assert.Equal(t, "abc123XYZ0", link.ShortCode)
			assert.Equal(t, "https://example.com/page", link.OriginURL)
			assert.NotEqual(t, [16]byte{}, [16]byte(link.ID))
			return nil
		})

	link, err := svc.Create(context.Background(), "https://example.com/page", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc123XYZ0", link.ShortCode)
	assert.Nil(t, link.Expires)
}

func TestShortenerService_Create_InvalidURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	svc, _ := newShortener(t, links, mocks.NewMockClickStore(ctrl), fixedGen("abc123XYZ0"))

	tests := []string{"", "   ", "not-a-url", "ftp", "http://", "//no-scheme.com"}
	for _, raw := range tests {
		_, err := svc.Create(context.Background(), raw, nil)
		assert.ErrorIs(t, err, model.ErrInvalidURL, "url: %q", raw)
	}
	// Хранилище не трогали: у мока нет ни одного ожидания Save
}

// Коллизия кода не видна клиенту: сервис генерирует новый код и повторяет
// вставку.
func TestShortenerService_Create_RetryOnCollision(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	svc, _ := newShortener(t, links, mocks.NewMockClickStore(ctrl), fixedGen("busy000000", "free000000"))

	gomock.InOrder(
		links.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, link *model.ShortLink) error {
				assert.Equal(t, "busy000000", link.ShortCode)
				return fmt.Errorf("insert: %w", model.ErrDuplicateCode)
			}),
		links.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, link *model.ShortLink) error {
				assert.Equal(t, "free000000", link.ShortCode)
				return nil
			}),
	)

	link, err := svc.Create(context.Background(), "https://example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "free000000", link.ShortCode)
}

// После пяти конфликтов подряд — ErrCodeSpaceExhausted, не ErrDuplicateCode.
func TestShortenerService_Create_Exhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	svc, _ := newShortener(t, links, mocks.NewMockClickStore(ctrl), fixedGen("busy000000"))

	links.EXPECT().Save(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("insert: %w", model.ErrDuplicateCode)).Times(5)

	_, err := svc.Create(context.Background(), "https://example.com", nil)
	assert.ErrorIs(t, err, model.ErrCodeSpaceExhausted)
	assert.NotErrorIs(t, err, model.ErrDuplicateCode)
}

// Прочие ошибки хранилища не ретраятся и выходят наружу как есть.
func TestShortenerService_Create_StoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	svc, _ := newShortener(t, links, mocks.NewMockClickStore(ctrl), fixedGen("abc123XYZ0"))

	links.EXPECT().Save(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("insert: timeout: %w", model.ErrStoreUnavailable))

	_, err := svc.Create(context.Background(), "https://example.com", nil)
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
}

func TestShortenerService_ResolveAndTrack(t *testing.T) {
	mem := storage.NewMemStore("")
	svc, writer := newShortener(t, mem, mem, generator.Must(generator.DefaultLength))

	link, err := svc.Create(context.Background(), "https://example.com/target", nil)
	require.NoError(t, err)

	origin, err := svc.ResolveAndTrack(context.Background(), link.ShortCode,
		model.ClickContext{Addr: "10.0.0.1", Agent: "curl/8.0"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/target", origin)

	// Клик пишется асинхронно, ответ его не ждёт
	writer.Close()
	count, err := mem.Count(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestShortenerService_ResolveAndTrack_NotFound(t *testing.T) {
	mem := storage.NewMemStore("")
	svc, _ := newShortener(t, mem, mem, generator.Must(generator.DefaultLength))

	_, err := svc.ResolveAndTrack(context.Background(), "missing000", model.ClickContext{})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

// Истёкшая ссылка отличима от несуществующей, и клик по ней не пишется.
func TestShortenerService_ResolveAndTrack_Expired(t *testing.T) {
	mem := storage.NewMemStore("")
	svc, writer := newShortener(t, mem, mem, fixedGen("gone000000"))

	past := time.Now().Add(-time.Minute)
	link, err := svc.Create(context.Background(), "https://example.com/old", &past)
	require.NoError(t, err)

	_, err = svc.ResolveAndTrack(context.Background(), link.ShortCode, model.ClickContext{})
	assert.ErrorIs(t, err, model.ErrExpired)
	assert.NotErrorIs(t, err, model.ErrNotFound)

	writer.Close()
	count, err := mem.Count(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// Конкурентные Create с живым генератором выдают попарно разные коды.
func TestShortenerService_Create_Concurrent(t *testing.T) {
	mem := storage.NewMemStore("")
	svc, _ := newShortener(t, mem, mem, generator.Must(generator.DefaultLength))

	const workers = 50
	var (
		wg    sync.WaitGroup
		mutex sync.Mutex
		codes = make(map[string]bool, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			link, err := svc.Create(context.Background(), fmt.Sprintf("https://example.com/%d", i), nil)
			if !assert.NoError(t, err) {
				return
			}
			mutex.Lock()
			codes[link.ShortCode] = true
			mutex.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Len(t, codes, workers)
}

func TestStatsService_GetStats(t *testing.T) {
	mem := storage.NewMemStore("")
	logger := zap.NewNop()
	svc, writer := newShortener(t, mem, mem, generator.Must(generator.DefaultLength))
	stats := service.NewStatsService(mem, mem, logger)

	link, err := svc.Create(context.Background(), "https://example.com/stats", nil)
	require.NoError(t, err)

	const clicks = 7
	for i := 0; i < clicks; i++ {
		_, err := svc.ResolveAndTrack(context.Background(), link.ShortCode, model.ClickContext{})
		require.NoError(t, err)
	}
	writer.Close()

	got, err := stats.GetStats(context.Background(), link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, link.ShortCode, got.ShortCode)
	assert.Equal(t, "https://example.com/stats", got.OriginURL)
	assert.Equal(t, int64(clicks), got.TotalClicks)
	assert.Equal(t, int64(clicks), got.DayClicks)

	// Чтение статистики без побочных эффектов: повтор даёт то же самое
	again, err := stats.GetStats(context.Background(), link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, got.TotalClicks, again.TotalClicks)
}

// Статистика видит истёкшие ссылки: счётчики доступны и после истечения.
func TestStatsService_GetStats_Expired(t *testing.T) {
	mem := storage.NewMemStore("")
	stats := service.NewStatsService(mem, mem, zap.NewNop())
	svc, writer := newShortener(t, mem, mem, fixedGen("gone000000"))

	expires := time.Now().Add(50 * time.Millisecond)
	link, err := svc.Create(context.Background(), "https://example.com/old", &expires)
	require.NoError(t, err)

	_, err = svc.ResolveAndTrack(context.Background(), link.ShortCode, model.ClickContext{})
	require.NoError(t, err)
	writer.Close()

	time.Sleep(60 * time.Millisecond)

	got, err := stats.GetStats(context.Background(), link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.TotalClicks)
}

func TestStatsService_GetStats_NotFound(t *testing.T) {
	mem := storage.NewMemStore("")
	stats := service.NewStatsService(mem, mem, zap.NewNop())

	_, err := stats.GetStats(context.Background(), "missing000")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestShortenerService_Ping(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	svc, _ := newShortener(t, links, mocks.NewMockClickStore(ctrl), fixedGen("abc123XYZ0"))

	links.EXPECT().Ping(gomock.Any()).Return(nil)
	assert.NoError(t, svc.Ping(context.Background()))

	links.EXPECT().Ping(gomock.Any()).Return(errors.New("down"))
	assert.Error(t, svc.Ping(context.Background()))
}
