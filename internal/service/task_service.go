package service

import (
	"context"
	"fmt"
	"strings"
	"taskflow/internal/handlers/dto"
	"taskflow/internal/logger"
	"taskflow/internal/models/task"
	"taskflow/internal/transaction"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// begin проверяет transactionId и кладёт его в контекст запроса.
func begin(ctx context.Context, transactionID string) error {
	if err := ValidateTransactionID(transactionID); err != nil {
		return err
	}
	transaction.Set(ctx, transactionID)
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, transactionID string, req *dto.CreateTaskRequest) (resp *dto.TaskResponse, err error) {
	defer func() { err = wrapError(err) }()

	if err := begin(ctx, transactionID); err != nil {
		return nil, err
	}
	if err := ValidateCreateTaskRequest(req, transactionID); err != nil {
		return nil, err
	}

	description := req.Description
	newTask := &task.Task{
		Title:       req.Title,
		Description: &description,
		Status:      *req.Status,
		Priority:    *req.Priority,
		DueDate:     req.DueDate.TimePtr(),
	}
	if err := s.repo.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Ctx(ctx).Info("Service: Задача создана", zap.Int64("task_id", newTask.ID))
	out := dto.FromTask(newTask, transactionID)
	return &out, nil
}

// GetTasks применяет только заданные фильтры; пустой keyword не фильтрует.
func (s *TaskService) GetTasks(ctx context.Context, transactionID string, filter task.Filter) (resp []dto.TaskResponse, err error) {
	defer func() { err = wrapError(err) }()

	if err := begin(ctx, transactionID); err != nil {
		return nil, err
	}

	if filter.Keyword != nil {
		keyword := strings.TrimSpace(*filter.Keyword)
		if keyword == "" {
			filter.Keyword = nil
		} else {
			filter.Keyword = &keyword
		}
	}

	tasks, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return dto.FromTaskList(tasks, transactionID), nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, transactionID string, id int64) (resp *dto.TaskResponse, err error) {
	defer func() { err = wrapError(err) }()

	if err := begin(ctx, transactionID); err != nil {
		return nil, err
	}
	if err := ValidateTaskID(id); err != nil {
		return nil, err
	}

	found, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromTask(found, transactionID)
	return &out, nil
}

// UpdateTask перезаписывает title, description и dueDate;
// status и priority меняются, только если переданы.
func (s *TaskService) UpdateTask(ctx context.Context, transactionID string, id int64, req *dto.UpdateTaskRequest) (resp *dto.TaskResponse, err error) {
	defer func() { err = wrapError(err) }()

	if err := begin(ctx, transactionID); err != nil {
		return nil, err
	}
	if err := ValidateTaskID(id); err != nil {
		return nil, err
	}
	if err := ValidateUpdateTaskRequest(req, transactionID); err != nil {
		return nil, err
	}

	return s.updateTask(ctx, transactionID, id,
		task.WithTitle(req.Title),
		task.WithDescription(req.Description),
		task.WithStatus(req.Status),
		task.WithPriority(req.Priority),
		task.WithDueDate(req.DueDate.TimePtr()),
	)
}

func (s *TaskService) UpdateTaskStatus(ctx context.Context, transactionID string, id int64, req *dto.UpdateTaskStatusRequest) (resp *dto.TaskResponse, err error) {
	defer func() { err = wrapError(err) }()

	if err := begin(ctx, transactionID); err != nil {
		return nil, err
	}
	if err := ValidateTaskID(id); err != nil {
		return nil, err
	}
	if err := ValidateUpdateTaskStatusRequest(req, transactionID); err != nil {
		return nil, err
	}

	return s.updateTask(ctx, transactionID, id, task.WithStatus(req.Status))
}

func (s *TaskService) DeleteTask(ctx context.Context, transactionID string, id int64) (err error) {
	defer func() { err = wrapError(err) }()

	if err := begin(ctx, transactionID); err != nil {
		return err
	}
	if err := ValidateTaskID(id); err != nil {
		return err
	}

	if _, err := s.findTask(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, id)
	}

	logger.Ctx(ctx).Info("Service: Задача удалена", zap.Int64("task_id", id))
	return nil
}

func (s *TaskService) updateTask(ctx context.Context, transactionID string, id int64, options ...task.TaskOption) (*dto.TaskResponse, error) {
	found, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}

	found.Apply(options...)

	if err := s.repo.Update(ctx, found); err != nil {
		return nil, notFoundOr(err, id)
	}

	logger.Ctx(ctx).Info("Service: Задача обновлена", zap.Int64("task_id", id))
	out := dto.FromTask(found, transactionID)
	return &out, nil
}

func (s *TaskService) findTask(ctx context.Context, id int64) (*task.Task, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err = notFoundOr(err, id); isNotFound(err) {
			logger.Ctx(ctx).Info("Service: Задача не найдена", zap.Int64("target_id", id))
		}
		return nil, err
	}
	return found, nil
}

func isNotFound(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == CodeNotFound
}
