// Package storage содержит встроенное хранилище для режимов file и
// in-memory: те же контракты, что у pgx-репозиториев, но под мьютексом
// одного процесса. Источник правды для dev-режима и тестов.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/VAZlabs/ShortTrack/internal/model"
	"github.com/google/uuid"
)

// Entry представляет структуру записи ссылки в файле журнала.
type Entry struct {
	ID          uuid.UUID  `json:"id"`
	ShortCode   string     `json:"short_code"`
	OriginalURL string     `json:"original_url"`
	Created     time.Time  `json:"created_at"`
	Expires     *time.Time `json:"expires_at,omitempty"`
}

// MemStore потокобезопасное хранилище ссылок и кликов в памяти
// с необязательным JSONL-журналом ссылок на диске.
type MemStore struct {
	mutex  sync.RWMutex
	links  map[string]*model.ShortLink // short_code -> link
	byID   map[uuid.UUID]*model.ShortLink
	clicks map[uuid.UUID][]*model.ClickEvent
	file   string
}

// NewMemStore создаёт хранилище; при непустом file подгружает журнал.
func NewMemStore(file string) *MemStore {
	store := &MemStore{
		links:  make(map[string]*model.ShortLink),
		byID:   make(map[uuid.UUID]*model.ShortLink),
		clicks: make(map[uuid.UUID][]*model.ClickEvent),
		file:   file,
	}

	if file != "" {
		if err := store.loadFromFile(); err != nil {
			log.Printf("Ошибка загрузки из файла: %v", err)
		}
	}

	return store
}

// Save вставляет ссылку атомарно относительно уникальности кода:
// проверка и запись под одним мьютексом, окна гонки нет. Код истёкшей
// ссылки можно занять заново — старая запись вытесняется.
func (s *MemStore) Save(_ context.Context, link *model.ShortLink) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if existing, ok := s.links[link.ShortCode]; ok {
		if !existing.IsExpired(time.Now()) {
			return fmt.Errorf("save link %q: %w", link.ShortCode, model.ErrDuplicateCode)
		}
		delete(s.byID, existing.ID)
		delete(s.clicks, existing.ID)
	}

	cp := *link
	s.links[link.ShortCode] = &cp
	s.byID[link.ID] = &cp

	if s.file != "" {
		entry := Entry{
			ID: cp.ID, ShortCode: cp.ShortCode, OriginalURL: cp.OriginURL,
			Created: cp.Created, Expires: cp.Expires,
		}
		if err := s.appendToFile(entry); err != nil {
			log.Printf("Ошибка сохранения в файл: %v", err)
		}
	}
	return nil
}

// Resolve возвращает живую ссылку по коду.
func (s *MemStore) Resolve(ctx context.Context, code string) (*model.ShortLink, error) {
	link, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if link.IsExpired(time.Now()) {
		return nil, fmt.Errorf("resolve %q: %w", code, model.ErrExpired)
	}
	return link, nil
}

// GetByCode возвращает ссылку по коду без учёта истечения.
func (s *MemStore) GetByCode(_ context.Context, code string) (*model.ShortLink, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	link, ok := s.links[code]
	if !ok {
		return nil, fmt.Errorf("get link %q: %w", code, model.ErrNotFound)
	}
	cp := *link
	return &cp, nil
}

// DeleteExpired удаляет ссылки, истёкшие раньше cutoff, вместе с кликами.
func (s *MemStore) DeleteExpired(_ context.Context, cutoff time.Time) ([]string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var removed []string
	for code, link := range s.links {
		if link.Expires != nil && link.Expires.Before(cutoff) {
			delete(s.links, code)
			delete(s.byID, link.ID)
			delete(s.clicks, link.ID)
			removed = append(removed, code)
		}
	}
	return removed, nil
}

// Ping для встроенного хранилища всегда успешен.
func (s *MemStore) Ping(_ context.Context) error { return nil }

// SaveBatch добавляет пачку кликов; события по удалённым ссылкам
// пропускаются, как и в БД-репозитории.
func (s *MemStore) SaveBatch(_ context.Context, events []*model.ClickEvent) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var saved int64
	for _, ev := range events {
		if _, ok := s.byID[ev.LinkID]; !ok {
			continue
		}
		cp := *ev
		s.clicks[ev.LinkID] = append(s.clicks[ev.LinkID], &cp)
		saved++
	}
	return saved, nil
}

// Count общее число переходов по ссылке.
func (s *MemStore) Count(_ context.Context, linkID uuid.UUID) (int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return int64(len(s.clicks[linkID])), nil
}

// CountSince число переходов после заданного момента.
func (s *MemStore) CountSince(_ context.Context, linkID uuid.UUID, since time.Time) (int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var count int64
	for _, ev := range s.clicks[linkID] {
		if ev.Clicked.After(since) {
			count++
		}
	}
	return count, nil
}

// loadFromFile загружает журнал ссылок при старте сервера.
func (s *MemStore) loadFromFile() error {
	file, err := os.Open(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Файл ещё не создан, это не ошибка
		}
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	for {
		var entry Entry
		if err := decoder.Decode(&entry); err != nil {
			break
		}
		link := &model.ShortLink{
			ID: entry.ID, ShortCode: entry.ShortCode, OriginURL: entry.OriginalURL,
			Created: entry.Created, Expires: entry.Expires,
		}
		s.links[link.ShortCode] = link
		s.byID[link.ID] = link
	}

	log.Printf("Загружено %d ссылок из файла %s", len(s.links), s.file)
	return nil
}

// appendToFile добавляет новую запись в журнал.
func (s *MemStore) appendToFile(entry Entry) error {
	file, err := os.OpenFile(s.file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	_, err = file.WriteString(string(data) + "\n") // Записываем с новой строки
	return err
}
