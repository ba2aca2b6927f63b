package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/VAZlabs/ShortTrack/internal/model"
)

// MemUsers встроенное хранилище учётных записей для режимов без БД.
type MemUsers struct {
	mutex   sync.RWMutex
	byEmail map[string]*model.User
	names   map[string]bool
}

// NewMemUsers создаёт пустое хранилище пользователей.
func NewMemUsers() *MemUsers {
	return &MemUsers{
		byEmail: make(map[string]*model.User),
		names:   make(map[string]bool),
	}
}

// Save сохраняет пользователя; занятые username/email — ErrDuplicateUser.
func (s *MemUsers) Save(_ context.Context, user *model.User) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.byEmail[user.Email]; ok || s.names[user.Username] {
		return fmt.Errorf("save user: %w", model.ErrDuplicateUser)
	}
	cp := *user
	s.byEmail[user.Email] = &cp
	s.names[user.Username] = true
	return nil
}

// GetByEmail извлекает пользователя по email.
func (s *MemUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	user, ok := s.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("get user: %w", model.ErrNotFound)
	}
	cp := *user
	return &cp, nil
}
