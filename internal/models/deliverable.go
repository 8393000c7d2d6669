package models

import (
	"io"
	"time"
)

type (
	DeliverableStatus string // Статус результата
	ReviewDecision    string // Решение заказчика по результату
)

const (
	PendingReviewDeliverable DeliverableStatus = "pending_review" // Ожидает проверки
	ApprovedDeliverable      DeliverableStatus = "approved"       // Принят
	NeedsRevisionDeliverable DeliverableStatus = "needs_revision" // Нужна доработка

	ApproveDecision  ReviewDecision = "approved"
	RevisionDecision ReviewDecision = "needs_revision"
)

// Deliverable представляет модель сданного результата.
type Deliverable struct {
	ID            string            `json:"id"`
	ProposalID    string            `json:"proposalId"`
	JobID         string            `json:"jobId"`
	Content       string            `json:"content"`
	FilePath      *string           `json:"filePath,omitempty"`
	ExternalLink  *string           `json:"externalLink,omitempty"`
	Status        DeliverableStatus `json:"status"`
	RevisionNotes *string           `json:"revisionNotes,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// DeliverableSubmission - параметры атомарной процедуры сдачи результата.
type DeliverableSubmission struct {
	ProposalID   string
	JobID        string
	Content      string
	FilePath     *string
	ExternalLink *string
}

// DeliverableFile - прикладываемый к результату файл.
type DeliverableFile struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// DeliverableRequest представляет запрос на сдачу результата.
type DeliverableRequest struct {
	ProposalID   string           `json:"proposalId" validate:"required"`
	Content      string           `json:"content" validate:"required"`
	ExternalLink string           `json:"externalLink" validate:"omitempty,url"`
	File         *DeliverableFile `json:"-"`
}

// ReviewRequest представляет решение заказчика по результату.
type ReviewRequest struct {
	Decision ReviewDecision `json:"decision" validate:"required,oneof=approved needs_revision"`
	Notes    string         `json:"notes"`
}

// DeliverableDownload - содержимое файла результата.
type DeliverableDownload struct {
	FileName string
	Data     []byte
}
