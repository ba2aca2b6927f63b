package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VAZlabs/ShortTrack/internal/database"
	"github.com/VAZlabs/ShortTrack/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// UserRepositoryInterface определяет методы хранилища учётных записей.
type UserRepositoryInterface interface {
	Save(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// UserRepository реализует UserRepositoryInterface поверх PostgreSQL.
type UserRepository struct {
	db      *database.DB
	timeout time.Duration
}

// NewUserRepository создаёт новый экземпляр UserRepository.
func NewUserRepository(db *database.DB, timeout time.Duration) *UserRepository {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &UserRepository{db: db, timeout: timeout}
}

// Save сохраняет пользователя. Занятые username/email — ErrDuplicateUser.
func (r *UserRepository) Save(ctx context.Context, user *model.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `INSERT INTO users (id, username, email, password_hash, created_at)
              VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.Created)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("save user: %w", model.ErrDuplicateUser)
		}
		return storeErr("save user", err)
	}
	return nil
}

// GetByEmail извлекает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT id, username, email, password_hash, created_at FROM users WHERE email = $1`
	user := &model.User{}
	err := r.db.Pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Created,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get user: %w", model.ErrNotFound)
		}
		return nil, storeErr("get user", err)
	}
	return user, nil
}
