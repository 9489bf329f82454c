package service

import (
	"context"
	"taskflow/internal/models/task"
	"time"
)

type TaskRepository interface {
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, int64) (*task.Task, error)
	GetAll(context.Context) ([]*task.Task, error)
	Delete(context.Context, int64) error
	Find(context.Context, task.Filter) ([]*task.Task, error)
	CountByStatus(context.Context) ([]task.StatusCount, error)
	GetOverdue(ctx context.Context, today time.Time) ([]*task.Task, error)
	HealthCheck(context.Context) error
}
