package service

import (
	"strings"
	"taskflow/internal/handlers/dto"
)

func ValidateTransactionID(transactionID string) error {
	return requiredText(transactionID, "transactionId")
}

func ValidateTaskID(id int64) error {
	if id <= 0 {
		return NewBadRequest("id is required")
	}
	return nil
}

// ValidateCreateTaskRequest: при создании обязательны все поля.
func ValidateCreateTaskRequest(req *dto.CreateTaskRequest, transactionID string) error {
	if req == nil {
		return NewBadRequest("request is required")
	}
	if err := requiredText(transactionID, "transactionId"); err != nil {
		return err
	}
	if err := requiredText(req.Title, "title"); err != nil {
		return err
	}
	if err := requiredText(req.Description, "description"); err != nil {
		return err
	}
	if req.Status == nil {
		return required("status")
	}
	if req.Priority == nil {
		return required("priority")
	}
	if req.DueDate == nil {
		return required("dueDate")
	}
	return nil
}

func ValidateUpdateTaskRequest(req *dto.UpdateTaskRequest, transactionID string) error {
	if req == nil {
		return NewBadRequest("request is required")
	}
	if err := requiredText(transactionID, "transactionId"); err != nil {
		return err
	}
	return requiredText(req.Title, "title")
}

func ValidateUpdateTaskStatusRequest(req *dto.UpdateTaskStatusRequest, transactionID string) error {
	if req == nil {
		return NewBadRequest("request is required")
	}
	if err := requiredText(transactionID, "transactionId"); err != nil {
		return err
	}
	if req.Status == nil {
		return required("status")
	}
	return nil
}

func requiredText(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return required(field)
	}
	return nil
}

func required(field string) error {
	return NewBadRequest(field + " is required")
}
