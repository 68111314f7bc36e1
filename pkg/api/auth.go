package api

// AccessTokenHeader — заголовок, в котором сервер возвращает access token.
// Токен дублируется в теле ответа для удобства клиентов.
const AccessTokenHeader = "X-Access-Token"

// Машинные коды ошибок, которые фронтенд превращает в i18n-сообщения
const (
	ErrCodeEmailUsed    = "err.emailUsed"
	ErrCodeUsernameUsed = "err.usernameUsed"
)

// SignUpRequest представляет запрос на регистрацию нового пользователя
type SignUpRequest struct {
	Username string `json:"username"` // уникальный username
	Email    string `json:"email"`    // уникальный email
	Password string `json:"password"` // пароль, уже посоленный клиентом (pre-hash)
	Salt     string `json:"salt"`     // клиентская соль, base64 (32 bytes)
}

// SignInRequest представляет запрос на аутентификацию
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` // пароль, посоленный клиентской солью
}

// AuthResponse представляет успешный ответ sign-up/sign-in
type AuthResponse struct {
	ID       string `json:"id"`       // UUID пользователя
	Username string `json:"username"` // username
	Token    string `json:"token"`    // JWT access token (дублируется в заголовке)
}

// SaltRequest представляет запрос клиентской соли перед sign-in
type SaltRequest struct {
	Email string `json:"email"`
}

// SaltResponse представляет ответ с клиентской солью пользователя
type SaltResponse struct {
	Salt string `json:"salt"` // base64 encoded salt
}

// ResetPasswordRequest представляет запрос на сброс пароля
type ResetPasswordRequest struct {
	Email string `json:"email"`
}

// ChangePasswordRequest представляет запрос на смену пароля по reset code
type ChangePasswordRequest struct {
	Email       string `json:"email"`
	ResetCode   string `json:"resetCode"`   // одноразовый код из письма
	Salt        string `json:"salt"`        // новая клиентская соль
	NewPassword string `json:"newPassword"` // новый пароль, посоленный новой солью
}

// MeResponse представляет ответ GET /api/v1/auth/me
type MeResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	ErrorCode string `json:"errorCode,omitempty"` // машинный код (err.emailUsed и т.п.)
	Message   string `json:"message"`             // описание ошибки
}
