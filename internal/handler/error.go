package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/aidar/kickoff/internal/domain"
)

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail содержит код и описание ошибки
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondWithError отправляет ответ с ошибкой
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// StatusForCode возвращает HTTP статус для кода доменной ошибки
func StatusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeAlreadyJoined,
		domain.CodeMatchFull,
		domain.CodeOrganizerCannotLeave,
		domain.CodeNotAJoinedPlayer,
		domain.CodeInsufficientPlayers,
		domain.CodeEmailTaken:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleError преобразует доменные ошибки в HTTP ответы
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.MapErrorToCode(err)
	status := StatusForCode(code)

	message := err.Error()
	switch {
	case status == http.StatusInternalServerError:
		// Детали хранилища и внутренние ошибки наружу не отдаем
		message = "internal server error"
		if errors.Is(err, domain.ErrStorage) {
			message = "storage is unavailable"
		}
	case errors.Is(err, domain.ErrInvalidToken):
		message = "invalid or expired token"
	}

	RespondWithError(w, r, status, string(code), message)
}
