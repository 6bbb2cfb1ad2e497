// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает ошибку сервисного слоя (сентинелы пакета service),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Источник истинности по маппингу: doc-комментарии сентинелов
// в internal/service/service.go.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/campus-match/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и
// унифицированный ответ для фронта.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - неизвестная ошибка — 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := base(err)
	return status, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// base — маппинг сентинелов сервиса -> HTTP/FE-код/сообщение.
func base(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"

	// 400 — битые входные и нарушения протокола запросов.
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case errors.Is(err, service.ErrOTPNotFound):
		return http.StatusBadRequest, "otp_not_found", "otp not found or expired"
	case errors.Is(err, service.ErrOTPMismatch):
		return http.StatusBadRequest, "otp_mismatch", "otp mismatch"
	case errors.Is(err, service.ErrTestIncomplete):
		return http.StatusBadRequest, "test_incomplete", "both users must complete the test"
	case errors.Is(err, service.ErrDuplicateSent):
		return http.StatusBadRequest, "duplicate_request", "request already sent to this user"
	case errors.Is(err, service.ErrDuplicatePending):
		return http.StatusBadRequest, "request_pending", "request already pending"

	// 401 — проблемы аутентификации.
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid credentials"
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, "token_expired", "token expired"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid_token", "invalid token"
	case errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"

	// 403 — операция запрещена доменными правилами.
	case errors.Is(err, service.ErrTestAlreadyTaken):
		return http.StatusForbidden, "test_already_taken", "test already taken"
	case errors.Is(err, service.ErrSameGender):
		return http.StatusForbidden, "same_gender", "opposite gender required"
	case errors.Is(err, service.ErrScoreTooLow):
		return http.StatusForbidden, "score_too_low", "score below threshold"

	// 404.
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found", "not found"

	// 409 — конфликты уникальности.
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "email_taken", "email already taken"
	case errors.Is(err, service.ErrPhoneTaken):
		return http.StatusConflict, "phone_taken", "phone number already taken"
	case errors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict, "already_exists", "already exists"

	// Транспортные: таймаут или клиент закрыл соединение.
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"

	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
