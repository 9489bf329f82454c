package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskflow/internal/config"
	"taskflow/internal/logger"
	"taskflow/internal/migrations"
	"taskflow/internal/models/task"
	repo "taskflow/internal/repository"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const taskColumns = `id, title, description, status, priority, due_date, created_at, updated_at`

const slowQuery = 100 * time.Millisecond

type Storage struct {
	pool       *pgxpool.Pool
	connString string
	now        func() time.Time
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		poolConfig.MinConns = int32(cfg.MinConnections)
	}
	if cfg.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{
		pool:       pool,
		connString: cfg.URL,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return repo.NewStorageError("проверка соединения ping", err)
	}
	return nil
}

func logSlow(op string, start time.Time) {
	if d := time.Since(start); d > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.String("operation", op), zap.Duration("ms", d))
	}
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer logSlow("create", start)

	taskToCreate.ApplyDefaults()

	query := `INSERT INTO tasks
				(title, description, status, priority, due_date, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $6)
				RETURNING id, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Status,
		taskToCreate.Priority,
		taskToCreate.DueDate,
		s.now(),
	).Scan(&taskToCreate.ID, &taskToCreate.CreatedAt, &taskToCreate.UpdatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err)
		return repo.NewStorageError("добавление задачи", err)
	}
	return nil
}

// обновление всех изменяемых полей, created_at не трогаем
func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()
	defer logSlow("update", start)

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				status = $3,
				priority = $4,
				due_date = $5,
				updated_at = GREATEST($6, created_at)
			WHERE id = $7
			RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.Status,
		taskToUpdate.Priority,
		taskToUpdate.DueDate,
		s.now(),
		taskToUpdate.ID,
	).Scan(&taskToUpdate.CreatedAt, &taskToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err, zap.Int64("task_id", taskToUpdate.ID))
		return repo.NewStorageError("обновление задачи", err)
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()
	defer logSlow("get_by_id", start)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачу", err)
		return nil, repo.NewStorageError("получение задачи", err)
	}

	found, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[task.Task])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err)
		return nil, repo.NewStorageError("получение задачи", err)
	}
	return found, nil
}

func (s *Storage) GetAll(ctx context.Context) ([]*task.Task, error) {
	return s.query(ctx, "get_all", `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	defer logSlow("delete", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err)
		return repo.NewStorageError("удаление задачи", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// Find применяет только заданные условия фильтра.
func (s *Storage) Find(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	conds := []string{}
	args := []any{}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.Priority != nil {
		add("priority = $%d", *filter.Priority)
	}
	if filter.Keyword != nil {
		add(`title ILIKE $%d ESCAPE '\'`, repo.ContainsPattern(*filter.Keyword))
	}
	if filter.DueDateFrom != nil {
		add("due_date >= $%d", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		add("due_date <= $%d", *filter.DueDateTo)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	return s.query(ctx, "find", query, args...)
}

func (s *Storage) CountByStatus(ctx context.Context) ([]task.StatusCount, error) {
	start := time.Now()
	defer logSlow("count_by_status", start)

	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) AS total FROM tasks GROUP BY status`)
	if err != nil {
		logger.Error("Repository: Не удалось посчитать задачи", err)
		return nil, repo.NewStorageError("подсчёт по статусам", err)
	}

	counts, err := pgx.CollectRows(rows, pgx.RowToStructByName[task.StatusCount])
	if err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, repo.NewStorageError("подсчёт по статусам", err)
	}
	return counts, nil
}

func (s *Storage) GetOverdue(ctx context.Context, today time.Time) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
				WHERE due_date < $1
				  AND status <> $2
				ORDER BY due_date ASC, id ASC`

	return s.query(ctx, "get_overdue", query, task.DateOf(today), task.StatusDone)
}

func (s *Storage) query(ctx context.Context, op, query string, args ...any) ([]*task.Task, error) {
	start := time.Now()
	defer logSlow(op, start)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.String("operation", op))
		return nil, repo.NewStorageError("получение задач", err)
	}

	tasks, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[task.Task])
	if err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err, zap.String("operation", op))
		return nil, repo.NewStorageError("итерация по строкам", err)
	}
	return tasks, nil
}

func (s *Storage) migrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("источник миграций: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrationURL(s.connString))
	if err != nil {
		return nil, fmt.Errorf("инициализация миграций: %w", err)
	}
	return m, nil
}

// migrationURL переводит postgres:// URL на схему драйвера pgx/v5 для golang-migrate.
func migrationURL(connString string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(connString, prefix) {
			return "pgx5://" + strings.TrimPrefix(connString, prefix)
		}
	}
	return connString
}

func run(ctx context.Context, m *migrate.Migrate, step func() error) error {
	defer m.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	if err := step(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *Storage) Migrate(ctx context.Context) error {
	logger.Info("Repository: Применение миграций")

	m, err := s.migrator()
	if err != nil {
		logger.Error("Repository: Ошибка подготовки миграций", err)
		return err
	}
	if err := run(ctx, m, m.Up); err != nil {
		logger.Error("Repository: Ошибка применения миграций", err)
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Repository: Миграции применены")
	return nil
}

func (s *Storage) Down(ctx context.Context) error {
	logger.Info("Repository: Откат миграций")

	m, err := s.migrator()
	if err != nil {
		logger.Error("Repository: Ошибка подготовки миграций", err)
		return err
	}
	if err := run(ctx, m, m.Down); err != nil {
		logger.Error("Repository: Ошибка отката миграций", err)
		return fmt.Errorf("откат миграций: %w", err)
	}

	logger.Info("Repository: Миграции откачены")
	return nil
}
