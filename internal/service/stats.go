package service

import (
	"context"
	"time"

	"github.com/VAZlabs/ShortTrack/internal/model"
	"go.uber.org/zap"
)

// StatsService считает статистику переходов. Только чтение, без
// побочных эффектов; истёкшие ссылки видны (GetByCode игнорирует срок).
type StatsService struct {
	Links  LinkStore
	Clicks ClickStore
	Logger *zap.Logger
}

// NewStatsService создаёт сервис статистики.
func NewStatsService(links LinkStore, clicks ClickStore, logger *zap.Logger) *StatsService {
	return &StatsService{Links: links, Clicks: clicks, Logger: logger}
}

// GetStats объединяет ссылку с общим и суточным счётчиками переходов.
func (s *StatsService) GetStats(ctx context.Context, code string) (*model.LinkStats, error) {
	link, err := s.Links.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	total, err := s.Clicks.Count(ctx, link.ID)
	if err != nil {
		s.Logger.Error("Не удалось посчитать клики", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	day, err := s.Clicks.CountSince(ctx, link.ID, time.Now().Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}

	return &model.LinkStats{
		ShortCode:   link.ShortCode,
		OriginURL:   link.OriginURL,
		TotalClicks: total,
		DayClicks:   day,
		Created:     link.Created,
	}, nil
}
