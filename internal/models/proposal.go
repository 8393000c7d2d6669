package models

import (
	"encoding/json"
	"time"
)

type (
	ProposalStatus   string // Статус предложения
	ProposalDecision string // Решение заказчика по предложению
)

const (
	PendingProposal  ProposalStatus = "pending"  // Ожидает решения
	AcceptedProposal ProposalStatus = "accepted" // Принято
	RejectedProposal ProposalStatus = "rejected" // Отклонено

	AcceptDecision ProposalDecision = "accepted"
	RejectDecision ProposalDecision = "rejected"
)

// Proposal представляет модель предложения исполнителя.
type Proposal struct {
	ID           string         `json:"id"`
	JobID        string         `json:"jobId"`
	CreatorID    string         `json:"creatorId"`
	CreatorName  string         `json:"creatorName,omitempty"`
	Price        int            `json:"price"`
	Description  string         `json:"description"`
	Status       ProposalStatus `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	Deliverables []Deliverable  `json:"deliverables,omitempty"`
}

// GetOwnerID возвращает профиль исполнителя, отправившего предложение.
func (p Proposal) GetOwnerID() string {
	return p.CreatorID
}

// CreatorProposal - предложение вместе со статусом родительской работы.
type CreatorProposal struct {
	Proposal
	JobStatus JobStatus `json:"jobStatus"`
}

// ProposalRequest представляет структуру запроса для отправки предложения.
type ProposalRequest struct {
	Price       json.Number `json:"price" validate:"required"`
	Description string      `json:"description"`
}

// ProposalDecisionRequest представляет решение заказчика.
type ProposalDecisionRequest struct {
	Decision ProposalDecision `json:"decision" validate:"required,oneof=accepted rejected"`
}
