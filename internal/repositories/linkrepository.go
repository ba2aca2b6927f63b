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

// pgUniqueViolation код ошибки PostgreSQL при нарушении уникального
// ограничения (гонка на short_code).
const pgUniqueViolation = "23505"

// LinkRepositoryInterface определяет методы репозитория коротких ссылок.
type LinkRepositoryInterface interface {
	Save(ctx context.Context, link *model.ShortLink) error
	Resolve(ctx context.Context, code string) (*model.ShortLink, error)
	GetByCode(ctx context.Context, code string) (*model.ShortLink, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) ([]string, error)
	Ping(ctx context.Context) error
}

// LinkRepository реализует LinkRepositoryInterface поверх PostgreSQL.
type LinkRepository struct {
	db      *database.DB
	timeout time.Duration
}

// NewLinkRepository создаёт новый экземпляр LinkRepository.
func NewLinkRepository(db *database.DB, timeout time.Duration) *LinkRepository {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &LinkRepository{db: db, timeout: timeout}
}

// Save атомарно вставляет ссылку. Уникальность short_code обеспечивает
// ограничение в самой БД: из гонки конкурентных создателей на одном коде
// ровно один insert проходит, остальные получают ErrDuplicateCode.
// Никакого check-then-insert — у него окно гонки.
func (r *LinkRepository) Save(ctx context.Context, link *model.ShortLink) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `INSERT INTO short_links (id, short_code, original_url, created_at, expires_at)
              VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, query, link.ID, link.ShortCode, link.OriginURL, link.Created, link.Expires)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("save link %q: %w", link.ShortCode, model.ErrDuplicateCode)
		}
		return storeErr("save link", err)
	}
	return nil
}

// Resolve извлекает живую ссылку по коду. Истёкшая ссылка для редиректа
// мертва: ErrExpired. Отсутствующая — ErrNotFound.
func (r *LinkRepository) Resolve(ctx context.Context, code string) (*model.ShortLink, error) {
	link, err := r.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if link.IsExpired(time.Now()) {
		return nil, fmt.Errorf("resolve %q: %w", code, model.ErrExpired)
	}
	return link, nil
}

// GetByCode извлекает ссылку по коду без учёта истечения
// (путь статистики видит и истёкшие ссылки).
func (r *LinkRepository) GetByCode(ctx context.Context, code string) (*model.ShortLink, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT id, short_code, original_url, created_at, expires_at
              FROM short_links WHERE short_code = $1`
	link := &model.ShortLink{}
	err := r.db.Pool.QueryRow(ctx, query, code).Scan(
		&link.ID, &link.ShortCode, &link.OriginURL, &link.Created, &link.Expires,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get link %q: %w", code, model.ErrNotFound)
		}
		return nil, storeErr("get link", err)
	}
	return link, nil
}

// DeleteExpired удаляет ссылки, истёкшие раньше cutoff, и возвращает их
// коды (для инвалидации кэша). Клики уходят каскадом (FK ON DELETE
// CASCADE), освобождённые коды можно занимать заново.
func (r *LinkRepository) DeleteExpired(ctx context.Context, cutoff time.Time) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx,
		`DELETE FROM short_links WHERE expires_at IS NOT NULL AND expires_at < $1 RETURNING short_code`, cutoff)
	if err != nil {
		return nil, storeErr("delete expired", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, storeErr("scan expired", err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Ping проверяет доступность базы данных.
func (r *LinkRepository) Ping(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, "SELECT 1")
	return err
}

// storeErr сводит ошибки бэкенда к единой ErrStoreUnavailable:
// детали СУБД наружу не протекают, обработчик видит одну грубую причину.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, model.ErrStoreUnavailable)
}
