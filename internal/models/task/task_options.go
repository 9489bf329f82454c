package task

import (
	"time"
)

type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = title
	}
}

// WithDescription перезаписывает описание, nil очищает его.
func WithDescription(description *string) TaskOption {
	return func(task *Task) {
		task.Description = description
	}
}

func WithDueDate(dueDate *time.Time) TaskOption {
	return func(task *Task) {
		if dueDate == nil {
			task.DueDate = nil
			return
		}
		d := DateOf(*dueDate)
		task.DueDate = &d
	}
}

// WithStatus возвращает nil, если статус не передан: текущее значение сохраняется.
func WithStatus(status *Status) TaskOption {
	if status == nil {
		return nil
	}
	return func(task *Task) {
		task.Status = *status
	}
}

func WithPriority(priority *Priority) TaskOption {
	if priority == nil {
		return nil
	}
	return func(task *Task) {
		task.Priority = *priority
	}
}

func (t *Task) Apply(options ...TaskOption) {
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
}
