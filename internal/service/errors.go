package service

import (
	"errors"
	"fmt"
	"net/http"
	"taskflow/internal/repository"
)

const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeNotFound      = "NOT_FOUND"
	CodeStorageError  = "STORAGE_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
)

// AppError - ошибка сервиса с HTTP статусом и сообщением для клиента.
// Err хранит исходную причину, клиенту она не отдаётся.
type AppError struct {
	Code       string
	HTTPStatus int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       CodeBadRequest,
		HTTPStatus: http.StatusBadRequest,
		Message:    message,
	}
}

func NewNotFound(id int64) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		HTTPStatus: http.StatusNotFound,
		Message:    fmt.Sprintf("Task not found with id: %d", id),
	}
}

func NewStorageError(err error) *AppError {
	return &AppError{
		Code:       CodeStorageError,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Database error",
		Err:        err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:       CodeInternalError,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Internal server error",
		Err:        err,
	}
}

// wrapError приводит любую ошибку к *AppError.
// AppError проходит как есть, сбой хранилища - STORAGE_ERROR, остальное - INTERNAL_ERROR.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var storageErr *repository.StorageError
	if errors.As(err, &storageErr) {
		return NewStorageError(err)
	}
	return NewInternalError(err)
}

// notFoundOr превращает repository.ErrNotFound в NOT_FOUND для id.
func notFoundOr(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return NewNotFound(id)
	}
	return err
}
