package models

import "time"

// User представляет пользователя в системе
type User struct {
	ID           string     `json:"id"`            // UUID пользователя
	Username     string     `json:"username"`      // уникальный username
	Email        string     `json:"email"`         // уникальный email
	PasswordHash string     `json:"password_hash"` // bcrypt хеш присланного пароля
	Salt         string     `json:"salt"`          // клиентская соль, base64 (32 bytes)
	ResetCode    *string    `json:"reset_code"`    // одноразовый код сброса; nil = сброс не запрошен
	CreatedAt    time.Time  `json:"created_at"`    // время создания
	UpdatedAt    *time.Time `json:"updated_at"`    // время последнего изменения учетных данных
}

// HasPendingReset сообщает, запрошен ли сейчас сброс пароля
func (u *User) HasPendingReset() bool {
	return u.ResetCode != nil
}
