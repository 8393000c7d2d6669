package models

import "time"

type Role string // Роль пользователя на площадке

const (
	ClientRole  Role = "client"  // Заказчик: публикует работы и принимает результаты
	CreatorRole Role = "creator" // Исполнитель: отправляет предложения и результаты
)

// Valid проверяет, что роль входит в допустимый набор.
func (r Role) Valid() bool {
	return r == ClientRole || r == CreatorRole
}

// Profile представляет модель профиля пользователя.
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	FullName  string    `json:"fullName"`
	Bio       *string   `json:"bio,omitempty"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileUpdateRequest представляет структуру запроса для обновления профиля.
// Роль не меняется.
type ProfileUpdateRequest struct {
	FullName  string `json:"fullName" validate:"required,min=2"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}

// Session - явный контекст операции: аутентифицированный пользователь и его профиль.
type Session struct {
	UserID  string
	Profile Profile
}
