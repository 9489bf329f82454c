package handlers

import (
	"net/http"
	"strconv"
	"taskflow/internal/handlers/dto"
	"taskflow/internal/logger"
	"taskflow/internal/models/task"
	"taskflow/internal/transaction"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const serviceName = "taskflow"

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

func transactionID(r *http.Request) string {
	return r.Header.Get(transaction.HeaderName)
}

func parseTaskID(r *http.Request) (int64, error) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.String("id", idParam),
			zap.String("client_ip", r.RemoteAddr))
		return 0, badRequest("id must be an integer")
	}
	return id, nil
}

// parseFilter разбирает необязательные параметры списка; пустое значение = фильтра нет.
func parseFilter(r *http.Request) (task.Filter, error) {
	q := r.URL.Query()
	var filter task.Filter

	if raw := q.Get("status"); raw != "" {
		status, err := task.ParseStatus(raw)
		if err != nil {
			return filter, badRequest("Invalid value for status: " + raw)
		}
		filter.Status = &status
	}

	if raw := q.Get("priority"); raw != "" {
		priority, err := task.ParsePriority(raw)
		if err != nil {
			return filter, badRequest("Invalid value for priority: " + raw)
		}
		filter.Priority = &priority
	}

	if q.Has("keyword") {
		keyword := q.Get("keyword")
		filter.Keyword = &keyword
	}

	dates := []struct {
		name   string
		target **time.Time
	}{
		{"dueDateFrom", &filter.DueDateFrom},
		{"dueDateTo", &filter.DueDateTo},
	}
	for _, d := range dates {
		raw := q.Get(d.name)
		if raw == "" {
			continue
		}
		date, err := dto.ParseDate(raw)
		if err != nil {
			return filter, badRequest("Invalid value for " + d.name + ": " + raw)
		}
		*d.target = date.TimePtr()
	}

	return filter, nil
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	if err := decodeJSON(r, &request); err != nil {
		WriteError(w, r, err)
		return
	}

	logger.Info("HTTP: Вызов сервиса создания задач")
	resp, err := h.TaskService.CreateTask(r.Context(), transactionID(r), &request)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	logger.Ctx(r.Context()).Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", resp.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, resp)
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	filter, err := parseFilter(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	tasks, err := h.TaskService.GetTasks(r.Context(), transactionID(r), filter)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	logger.Ctx(r.Context()).Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseTaskID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	resp, err := h.TaskService.GetTaskByID(r.Context(), transactionID(r), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	logger.Ctx(r.Context()).Info("HTTP_OUT: Задача получена",
		zap.Int64("task_id", resp.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, resp)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseTaskID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var request dto.UpdateTaskRequest
	if err := decodeJSON(r, &request); err != nil {
		WriteError(w, r, err)
		return
	}

	logger.Info("HTTP: запрос к сервису обновления данных")
	resp, err := h.TaskService.UpdateTask(r.Context(), transactionID(r), id, &request)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	logger.Ctx(r.Context()).Info("HTTP_OUT: Задача обновлена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, resp)
}

func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseTaskID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var request dto.UpdateTaskStatusRequest
	if err := decodeJSON(r, &request); err != nil {
		WriteError(w, r, err)
		return
	}

	resp, err := h.TaskService.UpdateTaskStatus(r.Context(), transactionID(r), id, &request)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	logger.Ctx(r.Context()).Info("HTTP_OUT: Статус задачи обновлён",
		zap.Int64("task_id", id),
		zap.String("status", string(resp.Status)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, resp)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseTaskID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	logger.Info("HTTP: Обращение к сервису для удаления задачи")
	if err := h.TaskService.DeleteTask(r.Context(), transactionID(r), id); err != nil {
		WriteError(w, r, err)
		return
	}

	logger.Ctx(r.Context()).Info("HTTP_OUT: Задача удалена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	responseNoContent(w)
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
		responseWithJSON(w, http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable", Service: serviceName})
		return
	}
	responseWithJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok", Service: serviceName})
}
