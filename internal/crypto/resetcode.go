package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Границы диапазона reset code: шестизначное число
const (
	resetCodeMin = 100000
	resetCodeMax = 999999
)

// GenerateResetCode возвращает одноразовый шестизначный код из диапазона
// [100000, 999999], равномерно распределенный, из crypto/rand
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(resetCodeMax-resetCodeMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate reset code: %w", err)
	}

	return fmt.Sprintf("%d", resetCodeMin+n.Int64()), nil
}
