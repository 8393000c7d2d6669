package models

import "net/http"

// ErrorResponse описывает ошибку с кодом и сообщением.
// Cause хранит исходную ошибку хранилища, клиенту она не отдается.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Message    string `json:"reason"`
	Cause      error  `json:"-"`
}

// NewErrorResponse создает новую ошибку с кодом и сообщением.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Message:    message}
}

// NewInternalError прячет причину за общим сообщением.
func NewInternalError(message string, cause error) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Message:    message,
		Cause:      cause,
	}
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ErrorResponse) Unwrap() error {
	return e.Cause
}
