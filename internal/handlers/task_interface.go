package handlers

import (
	"context"
	"taskflow/internal/handlers/dto"
	"taskflow/internal/models/task"
)

type TaskService interface {
	CreateTask(ctx context.Context, transactionID string, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	GetTasks(ctx context.Context, transactionID string, filter task.Filter) ([]dto.TaskResponse, error)
	GetTaskByID(ctx context.Context, transactionID string, id int64) (*dto.TaskResponse, error)
	UpdateTask(ctx context.Context, transactionID string, id int64, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	UpdateTaskStatus(ctx context.Context, transactionID string, id int64, req *dto.UpdateTaskStatusRequest) (*dto.TaskResponse, error)
	DeleteTask(ctx context.Context, transactionID string, id int64) error
	HealthCheck(ctx context.Context) error
}

type ReportService interface {
	GetSummary(ctx context.Context, transactionID string) (*dto.ReportSummaryResponse, error)
	GetStatusCount(ctx context.Context, transactionID string) ([]dto.StatusCountResponse, error)
	GetOverdueTasks(ctx context.Context, transactionID string) ([]dto.TaskResponse, error)
}
