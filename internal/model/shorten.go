package model

import "time"

// ShortenRequest представляет структуру запроса на сокращение URL.
type ShortenRequest struct {
	URL     string     `json:"url"`
	Expires *time.Time `json:"expires_at,omitempty"`
}

// ShortenResponse представляет структуру ответа с сокращённым URL.
type ShortenResponse struct {
	Result string `json:"result"`
}

// RegisterRequest запрос на регистрацию пользователя.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest запрос на вход.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
