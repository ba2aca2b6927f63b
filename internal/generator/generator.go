// Package generator выдаёт короткие URL-safe идентификаторы.
package generator

import (
	"fmt"

	gonanoid "github.com/jaevor/go-nanoid"
)

// Alphabet 62 символа: цифры, верхний и нижний регистр.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// DefaultLength длина кода по умолчанию. При алфавите 62 и длине 10
// вероятность коллизии на одну генерацию пренебрежимо мала, но не нулевая —
// коллизии разруливает вызывающая сторона (сервис), не генератор.
const DefaultLength = 10

// Func возвращает очередной случайный код. Чистая функция без I/O;
// в тестах подменяется детерминированной заглушкой.
type Func func() string

// New создаёт генератор кодов заданной длины на криптостойком источнике
// случайности. Коды не перечислимы подбором при выбранной длине.
func New(length int) (Func, error) {
	if length <= 0 {
		length = DefaultLength
	}
	gen, err := gonanoid.CustomASCII(Alphabet, length)
	if err != nil {
		return nil, fmt.Errorf("code generator init: %w", err)
	}
	return Func(gen), nil
}

// Must как New, но с паникой вместо ошибки. Для тестов и инициализации
// с заведомо корректной длиной.
func Must(length int) Func {
	gen, err := New(length)
	if err != nil {
		panic(err)
	}
	return gen
}

// IsValidCode проверяет, что код состоит только из символов алфавита.
func IsValidCode(code string) bool {
	if code == "" || len(code) > 20 {
		return false
	}
	for _, c := range code {
		if !isAlphanumeric(c) {
			return false
		}
	}
	return true
}

func isAlphanumeric(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
