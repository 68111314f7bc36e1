package crypto

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost — фиксированная стоимость bcrypt для серверного хеша
const BcryptCost = 10

// HashPassword хеширует пароль bcrypt'ом с фиксированной стоимостью.
// Соль и cost factor встроены в результат, для проверки ничего хранить
// отдельно не нужно.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// CheckPassword проверяет пароль против сохраненного bcrypt хеша
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
