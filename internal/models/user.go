package models

import "time"

// User представляет учетную запись провайдера идентификации.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SignUpRequest представляет структуру запроса для регистрации.
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"required,oneof=client creator"`
	FullName string `json:"fullName" validate:"required,min=2"`
}

// SignInRequest представляет структуру запроса для входа.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse возвращается после успешного входа.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Profile   *Profile  `json:"profile,omitempty"`
}
