package models

import (
	"encoding/json"
	"time"
)

type JobStatus string // Статус работы

const (
	DraftJob      JobStatus = "draft"       // Черновик
	PublishedJob  JobStatus = "published"   // Работа опубликована и принимает предложения
	InProgressJob JobStatus = "in_progress" // Предложение принято, идет работа
	CompletedJob  JobStatus = "completed"   // Результат сдан
)

// Job представляет модель работы.
type Job struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"clientId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Budget      int        `json:"budget"`
	Category    string     `json:"category"`
	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	Proposals   []Proposal `json:"proposals,omitempty"`
}

// GetOwnerID возвращает профиль заказчика, владеющего работой.
func (j Job) GetOwnerID() string {
	return j.ClientID
}

// JobRequest представляет структуру запроса для создания работы.
// Бюджет приходит строкой или числом и разбирается сервисом.
type JobRequest struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description" validate:"required"`
	Budget      json.Number `json:"budget" validate:"required"`
	Category    string      `json:"category" validate:"required"`
}

// JobFilter описывает выборку работ.
type JobFilter struct {
	Statuses   []JobStatus
	ClientID   string
	CreatorID  string
	Categories []string
	Limit      int
	Offset     int
}
