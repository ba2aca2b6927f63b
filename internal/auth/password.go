package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost стоимость 12: приемлемое время хеширования при достаточной
// устойчивости к перебору.
const bcryptCost = 12

// HashPassword хеширует пароль bcrypt-ом перед сохранением.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword сверяет пароль с сохранённым хешем.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
