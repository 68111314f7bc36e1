package auth

import (
	"context"

	"github.com/iudanet/authd/internal/client/storage"
)

// Service defines the main interface for authentication operations.
// CLI команды работают через этот интерфейс, конкретная реализация
// живет в service.go.
type Service interface {
	// SignUp регистрирует нового пользователя
	// Генерирует клиентскую соль, пре-хеширует пароль и сохраняет сессию
	SignUp(ctx context.Context, username, email, password string) (*storage.AuthData, error)

	// SignIn выполняет аутентификацию пользователя
	// Сначала запрашивает соль у сервера, затем пре-хеширует пароль
	SignIn(ctx context.Context, email, password string) (*storage.AuthData, error)

	// ResetPassword запрашивает отправку кода сброса на email
	ResetPassword(ctx context.Context, email string) error

	// ChangePassword меняет пароль по коду из письма
	// Генерирует новую клиентскую соль, старая сессия при этом не трогается
	ChangePassword(ctx context.Context, email, resetCode, newPassword string) error

	// WhoAmI проверяет сохраненный токен на сервере
	WhoAmI(ctx context.Context) (*WhoAmIResult, error)

	// Status возвращает локально сохраненную сессию без обращения к серверу
	Status(ctx context.Context) (*storage.AuthData, error)

	// Logout удаляет локальные данные авторизации
	// Сервер не хранит токены, поэтому уведомлять его не нужно
	Logout(ctx context.Context) error
}
