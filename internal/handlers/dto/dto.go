package dto

import (
	"encoding/json"
	"fmt"
	"taskflow/internal/models/task"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Date - календарная дата в формате YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(y int, m time.Month, d int) *Date {
	return &Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("неверный формат даты %q, ожидается YYYY-MM-DD", raw)
	}
	return Date{Time: t}, nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(DateLayout))
}

// TimePtr возвращает nil для отсутствующей даты.
func (d *Date) TimePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := task.DateOf(d.Time)
	return &t
}

type CreateTaskRequest struct {
	Title       string         `json:"title" validate:"notblank,max=200"`
	Description string         `json:"description"`
	Status      *task.Status   `json:"status"`
	Priority    *task.Priority `json:"priority"`
	DueDate     *Date          `json:"dueDate"`
}

type UpdateTaskRequest struct {
	Title       string         `json:"title" validate:"notblank,max=200"`
	Description *string        `json:"description"`
	Status      *task.Status   `json:"status"`
	Priority    *task.Priority `json:"priority"`
	DueDate     *Date          `json:"dueDate"`
}

type UpdateTaskStatusRequest struct {
	Status *task.Status `json:"status" validate:"required"`
}

type TaskResponse struct {
	TransactionID string        `json:"transactionId"`
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	Description   *string       `json:"description"`
	Status        task.Status   `json:"status"`
	Priority      task.Priority `json:"priority"`
	DueDate       *string       `json:"dueDate"`
	CreatedAt     string        `json:"createdAt"`
	UpdatedAt     string        `json:"updatedAt"`
}

type ReportSummaryResponse struct {
	TransactionID  string  `json:"transactionId"`
	Total          int64   `json:"total"`
	Todo           int64   `json:"todo"`
	InProgress     int64   `json:"inProgress"`
	Done           int64   `json:"done"`
	CompletionRate float64 `json:"completionRate"`
}

type StatusCountResponse struct {
	TransactionID string      `json:"transactionId"`
	Status        task.Status `json:"status"`
	Total         int64       `json:"total"`
}

type ErrorResponse struct {
	HTTPStatus    int    `json:"httpStatus"`
	ErrorMessage  string `json:"ErrorMessage"`
	TransactionID string `json:"transactionId"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// FromTask переводит задачу в ответ; даты в UTC, пустой срок остаётся null.
func FromTask(t *task.Task, transactionID string) TaskResponse {
	resp := TaskResponse{
		TransactionID: transactionID,
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		Priority:      t.Priority,
		CreatedAt:     t.CreatedAt.UTC().Format(DateTimeLayout),
		UpdatedAt:     t.UpdatedAt.UTC().Format(DateTimeLayout),
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC().Format(DateLayout)
		resp.DueDate = &due
	}
	return resp
}

func FromTaskList(tasks []*task.Task, transactionID string) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, transactionID)
	}
	return result
}
