package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VAZlabs/ShortTrack/internal/model"
	"github.com/VAZlabs/ShortTrack/internal/service"
)

// captureStore копит пачки кликов в памяти. block, будучи ненулевым,
// задерживает SaveBatch до закрытия канала; failFirst роняет первый сброс.
type captureStore struct {
	mutex     sync.Mutex
	events    []*model.ClickEvent
	batches   int
	block     chan struct{}
	failFirst bool
}

func (s *captureStore) SaveBatch(_ context.Context, events []*model.ClickEvent) (int64, error) {
	if s.block != nil {
		<-s.block
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.batches++
	if s.failFirst && s.batches == 1 {
		return 0, errors.New("storage down")
	}
	s.events = append(s.events, events...)
	return int64(len(events)), nil
}

func (s *captureStore) Count(_ context.Context, linkID uuid.UUID) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var n int64
	for _, ev := range s.events {
		if ev.LinkID == linkID {
			n++
		}
	}
	return n, nil
}

func (s *captureStore) CountSince(_ context.Context, linkID uuid.UUID, since time.Time) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var n int64
	for _, ev := range s.events {
		if ev.LinkID == linkID && !ev.Clicked.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *captureStore) saved() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.events)
}

// Пачка уходит по тикеру, не дожидаясь заполнения до batchSize.
func TestClickWriter_FlushOnTicker(t *testing.T) {
	store := &captureStore{}
	writer := service.NewClickWriter(store, zap.NewNop(), 16, 20*time.Millisecond)
	defer writer.Close()

	linkID := uuid.New()
	for i := 0; i < 3; i++ {
		writer.Enqueue(linkID, model.ClickContext{Addr: "10.0.0.1"})
	}

	assert.Eventually(t, func() bool { return store.saved() == 3 },
		2*time.Second, 5*time.Millisecond)
}

// Полная пачка уходит сразу, тикер не нужен.
func TestClickWriter_FlushOnBatchSize(t *testing.T) {
	store := &captureStore{}
	writer := service.NewClickWriter(store, zap.NewNop(), 256, time.Minute)
	defer writer.Close()

	linkID := uuid.New()
	for i := 0; i < 100; i++ {
		writer.Enqueue(linkID, model.ClickContext{})
	}

	assert.Eventually(t, func() bool { return store.saved() >= 100 },
		2*time.Second, 5*time.Millisecond)
}

// Close дренирует и канал, и недобранную пачку.
func TestClickWriter_CloseDrains(t *testing.T) {
	store := &captureStore{}
	writer := service.NewClickWriter(store, zap.NewNop(), 16, time.Minute)

	linkID := uuid.New()
	for i := 0; i < 5; i++ {
		writer.Enqueue(linkID, model.ClickContext{})
	}
	writer.Close()

	assert.Equal(t, 5, store.saved())

	count, err := store.Count(context.Background(), linkID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

// Переполненный буфер не блокирует Enqueue: лишние события отбрасываются,
// вызов возвращается сразу.
func TestClickWriter_DropsWhenFull(t *testing.T) {
	store := &captureStore{block: make(chan struct{})}
	writer := service.NewClickWriter(store, zap.NewNop(), 1, time.Minute)

	linkID := uuid.New()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			writer.Enqueue(linkID, model.ClickContext{})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue заблокировался на полном буфере")
	}

	close(store.block)
	writer.Close()
	assert.Less(t, store.saved(), 200)
}

// Сбой хранилища теряет текущую пачку, но не останавливает работника.
func TestClickWriter_SurvivesFlushError(t *testing.T) {
	store := &captureStore{failFirst: true}
	writer := service.NewClickWriter(store, zap.NewNop(), 16, 20*time.Millisecond)
	defer writer.Close()

	linkID := uuid.New()
	writer.Enqueue(linkID, model.ClickContext{})

	assert.Eventually(t, func() bool {
		store.mutex.Lock()
		defer store.mutex.Unlock()
		return store.batches >= 1
	}, 2*time.Second, 5*time.Millisecond)

	// Следующее событие после сбоя доезжает до журнала
	writer.Enqueue(linkID, model.ClickContext{})
	assert.Eventually(t, func() bool { return store.saved() == 1 },
		2*time.Second, 5*time.Millisecond)
}
