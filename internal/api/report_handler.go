package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/domain/summary"
	"github.com/phrazzld/taskhub/internal/domain/timeline"
	"github.com/phrazzld/taskhub/internal/domain/workload"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/service"
)

// ReportHandler serves the read-only /reports views.
type ReportHandler struct {
	reportService service.ReportService
	logger        *slog.Logger
}

// NewReportHandler creates a new ReportHandler. It panics on a nil logger.
func NewReportHandler(reportService service.ReportService, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReportHandler")
	}
	return &ReportHandler{
		reportService: reportService,
		logger:        logger.With(slog.String("component", "report_handler")),
	}
}

// Workload handles GET /reports/workload.
func (h *ReportHandler) Workload(w http.ResponseWriter, r *http.Request) {
	view, err := workloadView(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	dashboard, err := h.reportService.Workload(r.Context(), view)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build workload dashboard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, dashboard)
}

func workloadView(r *http.Request) (workload.View, error) {
	var view workload.View
	var err error
	if view.UserID, err = queryUUID(r, "user_id"); err != nil {
		return view, err
	}
	if view.ProjectID, err = queryUUID(r, "project_id"); err != nil {
		return view, err
	}
	if view.Status, err = queryStatus(r); err != nil {
		return view, err
	}
	if view.Year, err = queryInt(r, "year", 1, 9999); err != nil {
		return view, err
	}
	month, err := queryInt(r, "month", 1, 12)
	if err != nil {
		return view, err
	}
	view.Month = time.Month(month)
	if view.WeekOfMonth, err = queryInt(r, "week", 1, 6); err != nil {
		return view, err
	}
	view.Availability = workload.Bucket(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("availability"))))
	if !view.Availability.Valid() {
		return view, domain.NewValidationError("availability", "must be one of available busy overload")
	}
	return view, nil
}

// Timeline handles GET /reports/timeline. module_id=none selects tasks
// without a module.
func (h *ReportHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	view, err := timelineView(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	result, err := h.reportService.Timeline(r.Context(), view)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build timeline")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

func timelineView(r *http.Request) (timeline.View, error) {
	var view timeline.View
	var err error
	if view.Year, err = queryInt(r, "year", 1, 9999); err != nil {
		return view, err
	}
	if view.Granularity, err = timeline.ParseGranularity(r.URL.Query().Get("granularity")); err != nil {
		return view, domain.NewValidationError("granularity", "must be one of weekly monthly quarterly")
	}
	if view.ProjectID, err = queryUUID(r, "project_id"); err != nil {
		return view, err
	}
	if view.Status, err = queryStatus(r); err != nil {
		return view, err
	}
	if strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("module_id")), "none") {
		none := uuid.Nil
		view.ModuleID = &none
	} else if view.ModuleID, err = queryUUID(r, "module_id"); err != nil {
		return view, err
	}
	return view, nil
}

// Summary handles GET /reports/summary.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	query := service.SummaryQuery{
		Filter: summary.Filter{Name: strings.TrimSpace(r.URL.Query().Get("name"))},
	}
	var err error
	if query.Filter.Status, err = queryStatus(r); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if query.Filter.ProjectID, err = queryUUID(r, "project_id"); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if query.Year, err = queryInt(r, "year", 1, 9999); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	month, err := queryInt(r, "month", 1, 12)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	query.Month = time.Month(month)

	report, err := h.reportService.Summary(r.Context(), query)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build summary")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// ExportCSV handles GET /reports/tasks.csv. The body is buffered so a failed
// export still answers with a JSON error.
func (h *ReportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.reportService.ExportCSV(r.Context(), &buf); err != nil {
		HandleAPIError(w, r, err, "Failed to export tasks")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Error("failed to write csv export",
			slog.String("error", err.Error()))
	}
}
