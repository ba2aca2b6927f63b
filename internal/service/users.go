package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VAZlabs/ShortTrack/internal/auth"
	"github.com/VAZlabs/ShortTrack/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserStore контракт хранилища учётных записей, нужный сервису.
type UserStore interface {
	Save(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// UserService регистрация и проверка учётных данных. Хеширование —
// стандартный bcrypt, собственной криптографии здесь нет.
type UserService struct {
	Users  UserStore
	Logger *zap.Logger
}

// NewUserService создаёт сервис пользователей.
func NewUserService(users UserStore, logger *zap.Logger) *UserService {
	return &UserService{Users: users, Logger: logger}
}

// Register заводит пользователя с хешированным паролем.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("register: empty credentials: %w", model.ErrBadCredentials)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Created:      time.Now(),
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login сверяет пару email/пароль. Несуществующий пользователь и
// неверный пароль неразличимы для клиента: обе ошибки — ErrBadCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", model.ErrBadCredentials)
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("login: %w", model.ErrBadCredentials)
	}
	return user, nil
}
