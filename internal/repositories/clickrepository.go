package repositories

import (
	"context"
	"time"

	"github.com/VAZlabs/ShortTrack/internal/database"
	"github.com/VAZlabs/ShortTrack/internal/model"
	"github.com/google/uuid"
)

// ClickRepositoryInterface определяет методы журнала переходов.
// Журнал append-only: записи не мутируются и не удаляются иначе как
// каскадом при ретенции ссылок.
type ClickRepositoryInterface interface {
	SaveBatch(ctx context.Context, events []*model.ClickEvent) (int64, error)
	Count(ctx context.Context, linkID uuid.UUID) (int64, error)
	CountSince(ctx context.Context, linkID uuid.UUID, since time.Time) (int64, error)
}

// ClickRepository реализует ClickRepositoryInterface поверх PostgreSQL.
type ClickRepository struct {
	db      *database.DB
	timeout time.Duration
}

// NewClickRepository создаёт новый экземпляр ClickRepository.
func NewClickRepository(db *database.DB, timeout time.Duration) *ClickRepository {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &ClickRepository{db: db, timeout: timeout}
}

// SaveBatch сохраняет пачку событий в одной транзакции. События по уже
// удалённым ссылкам молча пропускаются (WHERE EXISTS вместо ошибки FK,
// которая оборвала бы всю транзакцию). Возвращает число записанных.
func (r *ClickRepository) SaveBatch(ctx context.Context, events []*model.ClickEvent) (int64, error) {
	if len(events) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, storeErr("begin click batch", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO clicks (id, link_id, clicked_at, addr, agent, referer)
              SELECT $1, $2, $3, $4, $5, $6
              WHERE EXISTS (SELECT 1 FROM short_links WHERE id = $2)`
	var saved int64
	for _, ev := range events {
		tag, err := tx.Exec(ctx, query,
			ev.ID, ev.LinkID, ev.Clicked,
			ev.Context.Addr, ev.Context.Agent, ev.Context.Referer,
		)
		if err != nil {
			return 0, storeErr("insert click batch", err)
		}
		saved += tag.RowsAffected()
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, storeErr("commit click batch", err)
	}

	return saved, nil
}

// Count общее число переходов по ссылке.
func (r *ClickRepository) Count(ctx context.Context, linkID uuid.UUID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM clicks WHERE link_id = $1`, linkID).Scan(&count)
	if err != nil {
		return 0, storeErr("count clicks", err)
	}
	return count, nil
}

// CountSince число переходов после заданного момента (оконная статистика).
func (r *ClickRepository) CountSince(ctx context.Context, linkID uuid.UUID, since time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM clicks WHERE link_id = $1 AND clicked_at > $2`, linkID, since).Scan(&count)
	if err != nil {
		return 0, storeErr("count clicks since", err)
	}
	return count, nil
}
