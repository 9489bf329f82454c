package inmemory

import (
	"context"
	"sort"
	"sync"
	"taskflow/internal/logger"
	"taskflow/internal/models/task"
	repo "taskflow/internal/repository"
	"time"
)

type TaskStorage struct {
	storage map[int64]*task.Task
	mtx     *sync.RWMutex
	ids     []int64
	nextID  int64
	now     func() time.Time
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[int64]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []int64{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	taskToCreate.ApplyDefaults()
	now := s.now()
	s.nextID++
	taskToCreate.ID = s.nextID
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now

	s.storage[taskToCreate.ID] = taskToCreate.Clone()
	s.ids = append(s.ids, taskToCreate.ID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existed, ok := s.storage[taskToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}

	now := s.now()
	if now.Before(existed.CreatedAt) {
		now = existed.CreatedAt
	}
	taskToUpdate.CreatedAt = existed.CreatedAt
	taskToUpdate.UpdatedAt = now
	s.storage[taskToUpdate.ID] = taskToUpdate.Clone()

	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return taskToGet.Clone(), nil
}

func (s *TaskStorage) GetAll(ctx context.Context) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*task.Task, 0, len(s.ids))
	for _, id := range s.ids {
		res = append(res, s.storage[id].Clone())
	}
	return res, nil
}

func (s *TaskStorage) Delete(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// поиск по фильтру, новые задачи первыми
func (s *TaskStorage) Find(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		t := s.storage[id]

		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if !filter.MatchesKeyword(t.Title) {
			continue
		}
		if filter.DueDateFrom != nil && (t.DueDate == nil || t.DueDate.Before(*filter.DueDateFrom)) {
			continue
		}
		if filter.DueDateTo != nil && (t.DueDate == nil || t.DueDate.After(*filter.DueDateTo)) {
			continue
		}

		res = append(res, t.Clone())
	}

	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].ID > res[j].ID
	})
	return res, nil
}

// группировка по статусу, только статусы с задачами
func (s *TaskStorage) CountByStatus(ctx context.Context) ([]task.StatusCount, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	counts := make(map[task.Status]int64)
	for _, t := range s.storage {
		counts[t.Status]++
	}

	res := make([]task.StatusCount, 0, len(counts))
	for status, total := range counts {
		res = append(res, task.StatusCount{Status: status, Total: total})
	}
	return res, nil
}

func (s *TaskStorage) GetOverdue(ctx context.Context, today time.Time) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if t.IsOverdue(today) {
			res = append(res, t.Clone())
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].DueDate.Equal(*res[j].DueDate) {
			return res[i].DueDate.Before(*res[j].DueDate)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}
