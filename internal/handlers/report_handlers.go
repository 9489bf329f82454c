package handlers

import (
	"net/http"
	"taskflow/internal/logger"
	"time"

	"go.uber.org/zap"
)

type ReportHandler struct {
	ReportService ReportService
}

func NewReportHandler(reportService ReportService) *ReportHandler {
	return &ReportHandler{
		ReportService: reportService,
	}
}

func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	resp, err := h.ReportService.GetSummary(r.Context(), transactionID(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	logger.Ctx(r.Context()).Info("HTTP_OUT: Сводный отчёт",
		zap.Int64("total", resp.Total),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, resp)
}

func (h *ReportHandler) GetStatusCount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	resp, err := h.ReportService.GetStatusCount(r.Context(), transactionID(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	logger.Ctx(r.Context()).Info("HTTP_OUT: Отчёт по статусам",
		zap.Int("groups", len(resp)),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, resp)
}

func (h *ReportHandler) GetOverdueTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	resp, err := h.ReportService.GetOverdueTasks(r.Context(), transactionID(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	logger.Ctx(r.Context()).Info("HTTP_OUT: Просроченные задачи",
		zap.Int("count", len(resp)),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, resp)
}
