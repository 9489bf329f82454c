package postgres_test

import (
	"context"
	"fmt"
	"strings"
	"taskflow/internal/config"
	"taskflow/internal/models/task"
	"taskflow/internal/repository"
	"taskflow/internal/repository/task/postgres"
	"taskflow/internal/repository/task/tasktest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestSuite для интеграционных тестов с PostgreSQL
type PostgresTestSuite struct {
	suite.Suite
	container  testcontainers.Container
	storage    *postgres.Storage
	connString string
	ctx        context.Context
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	s.storage, err = postgres.New(s.ctx, config.DatabaseConfig{URL: s.connString, MaxConnections: 5})
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.storage.Migrate(s.ctx))
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает таблицу перед каждым тестом
func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	require.NoError(s.T(), err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, "TRUNCATE tasks RESTART IDENTITY")
	require.NoError(s.T(), err)
}

func TestPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционные тесты в коротком режиме")
	}
	suite.Run(t, new(PostgresTestSuite))
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func ptr[T any](v T) *T {
	return &v
}

func (s *PostgresTestSuite) create(tasks ...*task.Task) {
	for _, tk := range tasks {
		require.NoError(s.T(), s.storage.Create(s.ctx, tk))
	}
}

func (s *PostgresTestSuite) TestStorage_Create() {
	taskToCreate := &task.Task{
		Title:       "Test Task",
		Description: ptr("Test Description"),
		Status:      task.StatusInProgress,
		Priority:    task.PriorityHigh,
		DueDate:     date(2026, 3, 1),
	}

	err := s.storage.Create(s.ctx, taskToCreate)
	require.NoError(s.T(), err)
	assert.Positive(s.T(), taskToCreate.ID)
	assert.False(s.T(), taskToCreate.CreatedAt.IsZero())
	assert.True(s.T(), taskToCreate.CreatedAt.Equal(taskToCreate.UpdatedAt))

	got, err := s.storage.GetByID(s.ctx, taskToCreate.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Test Task", got.Title)
	assert.Equal(s.T(), "Test Description", *got.Description)
	assert.Equal(s.T(), task.StatusInProgress, got.Status)
	assert.Equal(s.T(), task.PriorityHigh, got.Priority)
	assert.Equal(s.T(), "2026-03-01", got.DueDate.Format("2006-01-02"))
}

func (s *PostgresTestSuite) TestStorage_CreateAppliesDefaults() {
	tk := &task.Task{Title: "defaults"}
	s.create(tk)

	got, err := s.storage.GetByID(s.ctx, tk.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), task.StatusTodo, got.Status)
	assert.Equal(s.T(), task.PriorityMedium, got.Priority)
	assert.Nil(s.T(), got.Description)
	assert.Nil(s.T(), got.DueDate)
}

func (s *PostgresTestSuite) TestStorage_CreateTitleTooLong() {
	err := s.storage.Create(s.ctx, &task.Task{Title: strings.Repeat("x", 201)})

	var storageErr *repository.StorageError
	assert.ErrorAs(s.T(), err, &storageErr)
}

func (s *PostgresTestSuite) TestStorage_GetByID_NotFound() {
	_, err := s.storage.GetByID(s.ctx, 999)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestStorage_Update() {
	tk := &task.Task{Title: "Old", Status: task.StatusTodo, Priority: task.PriorityLow, DueDate: date(2026, 3, 1)}
	s.create(tk)
	createdAt := tk.CreatedAt

	tk.Title = "New"
	tk.Status = task.StatusDone
	tk.DueDate = nil
	require.NoError(s.T(), s.storage.Update(s.ctx, tk))

	got, err := s.storage.GetByID(s.ctx, tk.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "New", got.Title)
	assert.Equal(s.T(), task.StatusDone, got.Status)
	assert.Equal(s.T(), task.PriorityLow, got.Priority)
	assert.Nil(s.T(), got.DueDate)
	assert.True(s.T(), createdAt.Equal(got.CreatedAt))
	assert.False(s.T(), got.UpdatedAt.Before(got.CreatedAt))
}

func (s *PostgresTestSuite) TestStorage_Update_NotFound() {
	err := s.storage.Update(s.ctx, &task.Task{ID: 12345, Title: "ghost", Status: task.StatusTodo, Priority: task.PriorityLow})
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestStorage_Delete() {
	tk := &task.Task{Title: "to delete"}
	s.create(tk)

	require.NoError(s.T(), s.storage.Delete(s.ctx, tk.ID))

	_, err := s.storage.GetByID(s.ctx, tk.ID)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
	assert.ErrorIs(s.T(), s.storage.Delete(s.ctx, tk.ID), repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestStorage_Find() {
	authDone := &task.Task{Title: "Fix AUTH flow", Status: task.StatusDone, Priority: task.PriorityHigh, DueDate: date(2026, 3, 5)}
	authTodo := &task.Task{Title: "auth docs", Status: task.StatusTodo, Priority: task.PriorityLow, DueDate: date(2026, 3, 1)}
	other := &task.Task{Title: "Release", Status: task.StatusDone, Priority: task.PriorityHigh, DueDate: date(2026, 4, 1)}
	s.create(authDone, authTodo, other)

	res, err := s.storage.Find(s.ctx, task.Filter{Status: ptr(task.StatusDone), Keyword: ptr("auth")})
	require.NoError(s.T(), err)
	require.Len(s.T(), res, 1)
	assert.Equal(s.T(), authDone.ID, res[0].ID)

	res, err = s.storage.Find(s.ctx, task.Filter{})
	require.NoError(s.T(), err)
	require.Len(s.T(), res, 3)
	assert.Equal(s.T(), other.ID, res[0].ID, "новые задачи первыми")
	assert.Equal(s.T(), authDone.ID, res[2].ID)

	res, err = s.storage.Find(s.ctx, task.Filter{DueDateFrom: date(2026, 3, 1), DueDateTo: date(2026, 3, 5)})
	require.NoError(s.T(), err)
	assert.Len(s.T(), res, 2)

	res, err = s.storage.Find(s.ctx, task.Filter{Priority: ptr(task.PriorityLow)})
	require.NoError(s.T(), err)
	require.Len(s.T(), res, 1)
	assert.Equal(s.T(), authTodo.ID, res[0].ID)
}

func (s *PostgresTestSuite) TestStorage_CountByStatus() {
	s.create(
		&task.Task{Title: "a", Status: task.StatusDone},
		&task.Task{Title: "b", Status: task.StatusDone},
		&task.Task{Title: "c", Status: task.StatusInProgress},
	)

	counts, err := s.storage.CountByStatus(s.ctx)
	require.NoError(s.T(), err)
	assert.ElementsMatch(s.T(), []task.StatusCount{
		{Status: task.StatusDone, Total: 2},
		{Status: task.StatusInProgress, Total: 1},
	}, counts)
}

func (s *PostgresTestSuite) TestStorage_GetOverdue() {
	late := &task.Task{Title: "late", Status: task.StatusInProgress, DueDate: date(2026, 3, 2)}
	later := &task.Task{Title: "later", Status: task.StatusTodo, DueDate: date(2026, 3, 1)}
	s.create(
		late,
		later,
		&task.Task{Title: "done", Status: task.StatusDone, DueDate: date(2026, 2, 1)},
		&task.Task{Title: "today", Status: task.StatusTodo, DueDate: date(2026, 3, 10)},
		&task.Task{Title: "no due", Status: task.StatusTodo},
	)

	res, err := s.storage.GetOverdue(s.ctx, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC))
	require.NoError(s.T(), err)
	require.Len(s.T(), res, 2)
	assert.Equal(s.T(), later.ID, res[0].ID)
	assert.Equal(s.T(), late.ID, res[1].ID)
}

func (s *PostgresTestSuite) TestStorage_HealthCheck() {
	assert.NoError(s.T(), s.storage.HealthCheck(s.ctx))
}

func (s *PostgresTestSuite) TestStorage_MigrateIsIdempotent() {
	assert.NoError(s.T(), s.storage.Migrate(s.ctx))
}

func (s *PostgresTestSuite) TestStorage_FindKeywordIsLiteral() {
	tasktest.KeywordFilter(s.T(), s.storage)
}
