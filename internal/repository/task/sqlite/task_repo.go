// Package sqlite - хранилище задач на GORM + SQLite для локального запуска без PostgreSQL.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"taskflow/internal/logger"
	"taskflow/internal/models/task"
	repo "taskflow/internal/repository"
	"time"
	"unicode/utf8"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type taskRecord struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	Title       string     `gorm:"size:200;not null"`
	Description *string    `gorm:"type:text"`
	Status      string     `gorm:"size:20;not null;default:TODO;index"`
	Priority    string     `gorm:"size:20;not null;default:MEDIUM;index"`
	DueDate     *time.Time `gorm:"index"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime:false;index"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime:false"`
}

func (taskRecord) TableName() string {
	return "tasks"
}

func toRecord(t *task.Task) *taskRecord {
	return &taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (r *taskRecord) toTask() *task.Task {
	t := &task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      task.Status(r.Status),
		Priority:    task.Priority(r.Priority),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.DueDate != nil {
		d := task.DateOf(r.DueDate.UTC())
		t.DueDate = &d
	}
	return t
}

type Storage struct {
	db  *gorm.DB
	now func() time.Time
}

// New открывает базу SQLite и создаёт таблицу tasks.
func New(path string) (*Storage, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	dbLogger := gormlogger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             100 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:  dbLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		logger.Error("Repository: Ошибка открытия SQLite", err)
		return nil, fmt.Errorf("открытие sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("получение sql.DB: %w", err)
	}
	// одно соединение: база :memory: живёт внутри соединения
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		logger.Error("Repository: Ошибка миграции SQLite", err)
		return nil, fmt.Errorf("миграция sqlite: %w", err)
	}

	logger.Info("Repository: Успешное открытие SQLite")
	return &Storage{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func ensureDir(path string) error {
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		return nil
	}
	clean := strings.Split(strings.TrimPrefix(path, "file:"), "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("создание каталога %q: %w", dir, err)
	}
	return nil
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	logger.Info("Repository: Закрытие SQLite")
	return sqlDB.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return repo.NewStorageError("проверка соединения", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return repo.NewStorageError("проверка соединения", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	taskToCreate.ApplyDefaults()
	now := s.now()
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now

	rec := toRecord(taskToCreate)
	rec.ID = 0
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err)
		return repo.NewStorageError("добавление задачи", err)
	}
	taskToCreate.ID = rec.ID
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	db := s.db.WithContext(ctx)

	var existing taskRecord
	if err := db.First(&existing, taskToUpdate.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.ErrNotFound
		}
		return repo.NewStorageError("обновление задачи", err)
	}

	now := s.now()
	if now.Before(existing.CreatedAt) {
		now = existing.CreatedAt
	}

	rec := toRecord(taskToUpdate)
	rec.UpdatedAt = now
	result := db.Model(&taskRecord{ID: taskToUpdate.ID}).
		Select("title", "description", "status", "priority", "due_date", "updated_at").
		Updates(rec)
	if err := result.Error; err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err)
		return repo.NewStorageError("обновление задачи", err)
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	taskToUpdate.CreatedAt = existing.CreatedAt.UTC()
	taskToUpdate.UpdatedAt = now
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	var rec taskRecord
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err)
		return nil, repo.NewStorageError("получение задачи", err)
	}
	return rec.toTask(), nil
}

func (s *Storage) GetAll(ctx context.Context) ([]*task.Task, error) {
	return s.find(s.db.WithContext(ctx).Order("id ASC"), "получение задач")
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&taskRecord{}, id)
	if err := result.Error; err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err)
		return repo.NewStorageError("удаление задачи", err)
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) Find(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	q := s.db.WithContext(ctx).Model(&taskRecord{})

	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	if filter.Priority != nil {
		q = q.Where("priority = ?", string(*filter.Priority))
	}
	// LIKE в SQLite без учёта регистра только для ASCII, остальное дофильтровываем ниже
	if filter.Keyword != nil && isASCII(*filter.Keyword) {
		q = q.Where(`title LIKE ? ESCAPE '\'`, repo.ContainsPattern(*filter.Keyword))
	}
	if filter.DueDateFrom != nil {
		q = q.Where("due_date >= ?", task.DateOf(*filter.DueDateFrom))
	}
	if filter.DueDateTo != nil {
		q = q.Where("due_date <= ?", task.DateOf(*filter.DueDateTo))
	}

	found, err := s.find(q.Order("created_at DESC").Order("id DESC"), "поиск задач")
	if err != nil || filter.Keyword == nil {
		return found, err
	}
	return slices.DeleteFunc(found, func(t *task.Task) bool {
		return !filter.MatchesKeyword(t.Title)
	}), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func (s *Storage) CountByStatus(ctx context.Context) ([]task.StatusCount, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := s.db.WithContext(ctx).
		Model(&taskRecord{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Repository: Не удалось посчитать задачи", err)
		return nil, repo.NewStorageError("подсчёт по статусам", err)
	}

	counts := make([]task.StatusCount, 0, len(rows))
	for _, r := range rows {
		counts = append(counts, task.StatusCount{Status: task.Status(r.Status), Total: r.Total})
	}
	return counts, nil
}

func (s *Storage) GetOverdue(ctx context.Context, today time.Time) ([]*task.Task, error) {
	q := s.db.WithContext(ctx).
		Where("due_date < ?", task.DateOf(today)).
		Where("status <> ?", string(task.StatusDone)).
		Order("due_date ASC").
		Order("id ASC")
	return s.find(q, "просроченные задачи")
}

func (s *Storage) find(q *gorm.DB, op string) ([]*task.Task, error) {
	var recs []taskRecord
	if err := q.Find(&recs).Error; err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
		return nil, repo.NewStorageError(op, err)
	}

	tasks := make([]*task.Task, 0, len(recs))
	for i := range recs {
		tasks = append(tasks, recs[i].toTask())
	}
	return tasks, nil
}
