package service

import (
	"context"
	"sync"
	"time"

	"github.com/VAZlabs/ShortTrack/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClickWriter выносит запись кликов с критического пути редиректа.
// События копятся в буферном канале и сбрасываются в журнал пачками —
// по размеру или по тикеру. Гарантия at-least-once до краха процесса:
// при штатной остановке буфер дренируется, при переполнении событие
// отбрасывается с предупреждением в лог (клиент уже получил редирект).
type ClickWriter struct {
	store      ClickStore
	logger     *zap.Logger
	events     chan *model.ClickEvent
	batchSize  int
	flushEvery time.Duration
	timeout    time.Duration
	done       chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// NewClickWriter создаёт writer и запускает фонового работника.
func NewClickWriter(store ClickStore, logger *zap.Logger, buffer int, flushEvery time.Duration) *ClickWriter {
	if buffer <= 0 {
		buffer = 1024
	}
	if flushEvery <= 0 {
		flushEvery = 2 * time.Second
	}
	w := &ClickWriter{
		store:      store,
		logger:     logger,
		events:     make(chan *model.ClickEvent, buffer),
		batchSize:  100,
		flushEvery: flushEvery,
		timeout:    3 * time.Second,
		done:       make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Enqueue ставит событие в очередь, никогда не блокируя вызывающего.
// Полный буфер — событие теряется с предупреждением, а не тормозит
// редирект.
func (w *ClickWriter) Enqueue(linkID uuid.UUID, clickCtx model.ClickContext) {
	event := &model.ClickEvent{
		ID:      uuid.New(),
		LinkID:  linkID,
		Clicked: time.Now(),
		Context: clickCtx,
	}
	select {
	case w.events <- event:
	default:
		w.logger.Warn("Буфер кликов переполнен, событие отброшено",
			zap.String("link_id", linkID.String()))
	}
}

// Close дренирует буфер и останавливает работника.
func (w *ClickWriter) Close() {
	w.closeOnce.Do(func() { close(w.done) })
	w.wg.Wait()
}

func (w *ClickWriter) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.flushEvery)
	defer ticker.Stop()

	batch := make([]*model.ClickEvent, 0, w.batchSize)
	for {
		select {
		case ev := <-w.events:
			batch = append(batch, ev)
			if len(batch) >= w.batchSize {
				w.flush(batch)
				batch = batch[:0]
				ticker.Reset(w.flushEvery)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(batch)
				batch = batch[:0]
			}
		case <-w.done:
			// Остатки из канала и накопленная пачка — последним сбросом
			for {
				select {
				case ev := <-w.events:
					batch = append(batch, ev)
					continue
				default:
				}
				break
			}
			w.flush(batch)
			return
		}
	}
}

// flush пишет пачку в журнал. Сбой хранилища не распространяется:
// пользователи уже получили свои редиректы, остаётся предупреждение.
func (w *ClickWriter) flush(batch []*model.ClickEvent) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	saved, err := w.store.SaveBatch(ctx, batch)
	if err != nil {
		w.logger.Warn("Сброс пачки кликов не удался, события потеряны",
			zap.Int("count", len(batch)), zap.Error(err))
		return
	}
	if skipped := int64(len(batch)) - saved; skipped > 0 {
		// Ссылки успели удалить между resolve и записью
		w.logger.Info("Часть кликов по удалённым ссылкам пропущена",
			zap.Int64("skipped", skipped), zap.Error(model.ErrUnknownLink))
	}
}
