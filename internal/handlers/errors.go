package handlers

import (
	"errors"
	"net/http"
	"taskflow/internal/handlers/dto"
	"taskflow/internal/logger"
	"taskflow/internal/service"
	"taskflow/internal/transaction"

	"go.uber.org/zap"
)

const (
	codeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	codeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
)

// WriteError пишет единое тело ошибки {httpStatus, ErrorMessage, transactionId}.
// Клиент видит только сообщение, причина остаётся в логе.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"
	code := service.CodeInternalError

	var appErr *service.AppError
	if errors.As(err, &appErr) {
		status = resolveStatus(appErr.HTTPStatus)
		message = appErr.Message
		code = appErr.Code
	}

	transactionID := transaction.CurrentOrGenerate(r.Context())
	w.Header().Set(transaction.HeaderName, transactionID)

	fields := []zap.Field{
		zap.String("error_code", code),
		zap.Int("http_status", status),
		zap.String("transaction_id", transactionID),
		zap.String("client_ip", r.RemoteAddr),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("HTTP: Ошибка обработки запроса", err, fields...)
	} else {
		logger.Warn("HTTP: Ошибка запроса", append(fields, zap.Error(err))...)
	}

	responseWithJSON(w, status, dto.ErrorResponse{
		HTTPStatus:    status,
		ErrorMessage:  message,
		TransactionID: transactionID,
	})
}

// resolveStatus: неизвестный или не ошибочный код превращается в 500.
func resolveStatus(code int) int {
	if code < 400 || code > 599 || http.StatusText(code) == "" {
		return http.StatusInternalServerError
	}
	return code
}

func badRequest(message string) error {
	return service.NewBadRequest(message)
}

func unsupportedMediaType() error {
	return &service.AppError{
		Code:       codeUnsupportedMediaType,
		HTTPStatus: http.StatusUnsupportedMediaType,
		Message:    "Content-Type must be application/json",
	}
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, &service.AppError{
		Code:       service.CodeNotFound,
		HTTPStatus: http.StatusNotFound,
		Message:    "Resource not found: " + r.URL.Path,
	})
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, &service.AppError{
		Code:       codeMethodNotAllowed,
		HTTPStatus: http.StatusMethodNotAllowed,
		Message:    "Method " + r.Method + " is not allowed",
	})
}
