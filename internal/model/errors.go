package model

import "errors"

// Таксономия ошибок ядра. Репозитории и сервисы возвращают только эти
// ошибки (обёрнутые через %w), детали бэкенда наружу не протекают.
var (
	// ErrInvalidURL некорректный исходный URL (ошибка пользователя).
	ErrInvalidURL = errors.New("invalid original URL")

	// ErrDuplicateCode конфликт уникальности short_code при вставке.
	// Полностью гасится ретраем внутри сервиса, наружу не выходит.
	ErrDuplicateCode = errors.New("short code already taken")

	// ErrCodeSpaceExhausted ретраи генерации исчерпаны.
	ErrCodeSpaceExhausted = errors.New("short code space exhausted")

	// ErrNotFound ссылка не существует.
	ErrNotFound = errors.New("link not found")

	// ErrExpired ссылка существует, но срок её жизни истёк.
	ErrExpired = errors.New("link expired")

	// ErrUnknownLink клик по ссылке, удалённой между resolve и record.
	// Только логируется, клиенту не отдаётся.
	ErrUnknownLink = errors.New("unknown link")

	// ErrStoreUnavailable таймаут или недоступность хранилища.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrDuplicateUser пользователь с таким именем или email уже есть.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrBadCredentials неверная пара email/пароль.
	ErrBadCredentials = errors.New("bad credentials")
)
