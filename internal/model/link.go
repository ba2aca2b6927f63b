package model

import (
	"time"

	"github.com/google/uuid"
)

// ShortLink представляет сохранённую короткую ссылку.
// Запись неизменяема после создания, кроме логического статуса истечения.
type ShortLink struct {
	ID        uuid.UUID  `json:"id"`
	ShortCode string     `json:"short_code"`
	OriginURL string     `json:"original_url"`
	Created   time.Time  `json:"created_at"`
	Expires   *time.Time `json:"expires_at,omitempty"`
}

// IsExpired сообщает, мертва ли ссылка на момент now.
func (l *ShortLink) IsExpired(now time.Time) bool {
	return l.Expires != nil && l.Expires.Before(now)
}

// ClickContext несёт необязательный контекст перехода.
// Все поля best-effort и не влияют на корректность записи.
type ClickContext struct {
	Addr    string `json:"addr,omitempty"`
	Agent   string `json:"agent,omitempty"`
	Referer string `json:"referer,omitempty"`
}

// ClickEvent одна запись в журнале переходов по ссылке.
type ClickEvent struct {
	ID      uuid.UUID    `json:"id"`
	LinkID  uuid.UUID    `json:"link_id"`
	Clicked time.Time    `json:"clicked_at"`
	Context ClickContext `json:"context"`
}

// LinkStats агрегированная статистика по короткой ссылке.
type LinkStats struct {
	ShortCode   string    `json:"short_code"`
	OriginURL   string    `json:"original_url"`
	TotalClicks int64     `json:"total_clicks"`
	DayClicks   int64     `json:"clicks_24h"`
	Created     time.Time `json:"created_at"`
}
