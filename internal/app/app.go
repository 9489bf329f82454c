package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"taskflow/internal/config"
	"taskflow/internal/handlers"
	"taskflow/internal/logger"
	"taskflow/internal/middleware"
	"taskflow/internal/repository/task/inmemory"
	"taskflow/internal/repository/task/postgres"
	"taskflow/internal/repository/task/sqlite"
	"taskflow/internal/service"
	"taskflow/internal/transaction"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository service.TaskRepository // интерфейс!
	shutdowns  []func(context.Context) error // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(context.Context) error, 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func(context.Context) error {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
		return nil
	})

	repo, err := a.initRepository(ctx)
	if err != nil {
		return fmt.Errorf("инициализация хранилища: %w", err)
	}
	a.repository = repo

	taskHandler := handlers.NewTaskHandler(service.NewTaskService(a.repository))
	reportHandler := handlers.NewReportHandler(service.NewReportService(a.repository))

	a.router = chi.NewRouter()
	a.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", transaction.HeaderName},
		ExposedHeaders: []string{transaction.HeaderName},
		MaxAge:         300,
	}))
	a.router.Use(middleware.TransactionID)
	a.router.Use(middleware.Logging)
	a.router.Use(middleware.Recover(handlers.WriteError))

	handlers.RegisterRoutes(a.router, taskHandler, reportHandler)

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr))
	return nil
}

func (a *App) initRepository(ctx context.Context) (service.TaskRepository, error) {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		storage, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return nil, err
		}
		if err := storage.Migrate(ctx); err != nil {
			storage.Close()
			return nil, err
		}
		a.shutdowns = append(a.shutdowns, func(context.Context) error {
			storage.Close()
			return nil
		})
		return storage, nil

	case config.RepositorySQLite:
		storage, err := sqlite.New(a.config.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.shutdowns = append(a.shutdowns, func(context.Context) error {
			return storage.Close()
		})
		return storage, nil

	case config.RepositoryInMemory:
		return inmemory.NewTaskStorage(), nil

	default:
		return nil, fmt.Errorf("неизвестный тип хранилища: %q", a.config.Repository.Type)
	}
}

func (a *App) Handler() http.Handler {
	return a.router
}

// Run блокируется до остановки сервера; штатная остановка не ошибка.
func (a *App) Run() error {
	logger.Info("HTTP сервер запущен", zap.String("addr", a.server.Addr))
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP сервер: %w", err)
	}
	return nil
}

// Shutdown останавливает сервер, затем освобождает ресурсы в обратном порядке.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.server != nil {
		logger.Info("Остановка HTTP сервера...")
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("остановка HTTP сервера: %w", err))
		}
	}
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		if err := a.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) ShutdownOperations() map[string]gfshutdown.Operation {
	return map[string]gfshutdown.Operation{
		"taskflow": a.Shutdown,
	}
}
