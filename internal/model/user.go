package model

import (
	"time"

	"github.com/google/uuid"
)

// User учётная запись для ограничения доступа к сервису.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Created      time.Time `json:"created_at"`
}
