package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"taskflow/internal/handlers/dto"
	"taskflow/internal/logger"
	"taskflow/internal/models/task"
	"time"

	"go.uber.org/zap"
)

type ReportService struct {
	repo TaskRepository
	now  func() time.Time
}

type ReportOption func(*ReportService)

// WithClock подменяет источник текущего времени (для отчёта о просрочке).
func WithClock(now func() time.Time) ReportOption {
	return func(s *ReportService) {
		s.now = now
	}
}

func NewReportService(repo TaskRepository, options ...ReportOption) *ReportService {
	s := &ReportService{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *ReportService) GetSummary(ctx context.Context, transactionID string) (resp *dto.ReportSummaryResponse, err error) {
	defer func() { err = wrapError(err) }()

	if err := begin(ctx, transactionID); err != nil {
		return nil, err
	}

	tasks, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("сводный отчёт: %w", err)
	}

	out := &dto.ReportSummaryResponse{
		TransactionID: transactionID,
		Total:         int64(len(tasks)),
	}
	for _, t := range tasks {
		switch t.Status {
		case task.StatusTodo:
			out.Todo++
		case task.StatusInProgress:
			out.InProgress++
		case task.StatusDone:
			out.Done++
		}
	}
	if out.Total > 0 {
		out.CompletionRate = float64(out.Done) / float64(out.Total)
	}

	logger.Ctx(ctx).Info("Service: Сводный отчёт построен", zap.Int64("total", out.Total))
	return out, nil
}

// GetStatusCount отдаёт только статусы, у которых есть задачи, в порядке TODO, IN_PROGRESS, DONE.
func (s *ReportService) GetStatusCount(ctx context.Context, transactionID string) (resp []dto.StatusCountResponse, err error) {
	defer func() { err = wrapError(err) }()

	if err := begin(ctx, transactionID); err != nil {
		return nil, err
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("подсчёт по статусам: %w", err)
	}

	for _, c := range counts {
		if !c.Status.Valid() {
			return nil, fmt.Errorf("неизвестный статус в хранилище: %q", c.Status)
		}
	}
	slices.SortStableFunc(counts, func(a, b task.StatusCount) int {
		return cmp.Compare(a.Status.Ordinal(), b.Status.Ordinal())
	})

	out := make([]dto.StatusCountResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, dto.StatusCountResponse{
			TransactionID: transactionID,
			Status:        c.Status,
			Total:         c.Total,
		})
	}
	return out, nil
}

// GetOverdueTasks: срок раньше сегодняшней даты (UTC) и статус не DONE.
func (s *ReportService) GetOverdueTasks(ctx context.Context, transactionID string) (resp []dto.TaskResponse, err error) {
	defer func() { err = wrapError(err) }()

	if err := begin(ctx, transactionID); err != nil {
		return nil, err
	}

	today := task.DateOf(s.now().UTC())
	tasks, err := s.repo.GetOverdue(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("просроченные задачи: %w", err)
	}

	logger.Ctx(ctx).Info("Service: Просроченные задачи получены",
		zap.Int("count", len(tasks)),
		zap.String("today", today.Format(dto.DateLayout)))
	return dto.FromTaskList(tasks, transactionID), nil
}
