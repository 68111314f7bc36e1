// Package config читает конфигурацию сервера из переменных окружения.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит конфигурацию сервера
type Config struct {
	// Addr — адрес, на котором слушает HTTP сервер
	Addr string `env:"AUTHD_ADDR" envDefault:":8080"`

	// DatabasePath — путь к файлу SQLite базы
	DatabasePath string `env:"AUTHD_DB_PATH" envDefault:"authd.db"`

	// TokenKey — симметричный секрет подписи JWT.
	// Пустое значение — мисконфигурация: сервер стартует, но auth handlers
	// отвечают 500, токены без подписи не выдаются
	TokenKey string `env:"TOKEN_KEY"`

	// TokenTTL — время жизни access token (7 дней по умолчанию)
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"168h"`

	// RateLimit / RateWindow — лимит запросов на IP для auth-эндпоинтов
	RateLimit  int           `env:"AUTHD_RATE_LIMIT" envDefault:"30"`
	RateWindow time.Duration `env:"AUTHD_RATE_WINDOW" envDefault:"1m"`

	// ResendAPIKey — ключ почтового провайдера; без него письма симулируются
	ResendAPIKey string `env:"RESEND_API_KEY"`

	// EmailSender — адрес отправителя писем со сбросом пароля
	EmailSender string `env:"EMAIL_SENDER" envDefault:"noreply@localhost"`

	// LogLevel — debug | info | warn | error
	LogLevel string `env:"AUTHD_LOG_LEVEL" envDefault:"info"`
}

// Load парсит конфигурацию из окружения
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
