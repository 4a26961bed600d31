package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/domain/summary"
	"github.com/phrazzld/taskhub/internal/domain/timeline"
	"github.com/phrazzld/taskhub/internal/domain/workload"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/store"
)

// SummaryQuery selects the summary report. A zero Year or Month means the
// current one.
type SummaryQuery struct {
	Filter summary.Filter
	Year   int
	Month  time.Month
}

// SummaryReport is the summary overview plus member working hours.
type SummaryReport struct {
	summary.Report
	Year         int                    `json:"year"`
	Month        time.Month             `json:"month"`
	WorkingHours []summary.WorkingHours `json:"working_hours"`
}

// ReportService derives the read-only reporting views from the stored users,
// projects and tasks.
type ReportService interface {
	Workload(ctx context.Context, view workload.View) (workload.Dashboard, error)
	Timeline(ctx context.Context, view timeline.View) (timeline.Timeline, error)
	Summary(ctx context.Context, query SummaryQuery) (*SummaryReport, error)

	// ExportCSV writes every task as CSV.
	ExportCSV(ctx context.Context, w io.Writer) error
}

// ReportServiceImpl implements the ReportService interface
type ReportServiceImpl struct {
	userStore    store.UserStore
	projectStore store.ProjectStore
	taskStore    store.TaskStore
	now          func() time.Time
	logger       *slog.Logger
}

// NewReportService creates a new ReportService. A nil clock uses time.Now.
func NewReportService(
	userStore store.UserStore,
	projectStore store.ProjectStore,
	taskStore store.TaskStore,
	clock func() time.Time,
	logger *slog.Logger,
) *ReportServiceImpl {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportServiceImpl{
		userStore:    userStore,
		projectStore: projectStore,
		taskStore:    taskStore,
		now:          clock,
		logger:       logger.With(slog.String("component", "report_service")),
	}
}

var _ ReportService = (*ReportServiceImpl)(nil)

// snapshot is everything a report reads.
type snapshot struct {
	users    []domain.User
	projects []domain.Project
	tasks    []domain.Task
}

func (s *ReportServiceImpl) load(ctx context.Context, operation string, withUsers, withProjects bool) (*snapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	snap := &snapshot{}

	var err error
	if withUsers {
		if snap.users, err = s.userStore.List(ctx); err != nil {
			log.Error("failed to load users", slog.String("error", err.Error()))
			return nil, NewServiceError("report", operation, err)
		}
	}
	if withProjects {
		if snap.projects, err = s.projectStore.List(ctx); err != nil {
			log.Error("failed to load projects", slog.String("error", err.Error()))
			return nil, NewServiceError("report", operation, err)
		}
	}
	if snap.tasks, err = s.taskStore.List(ctx, store.TaskFilter{}); err != nil {
		log.Error("failed to load tasks", slog.String("error", err.Error()))
		return nil, NewServiceError("report", operation, err)
	}

	log.Debug("report data loaded",
		slog.String("report", operation),
		slog.Int("users", len(snap.users)),
		slog.Int("projects", len(snap.projects)),
		slog.Int("tasks", len(snap.tasks)))
	return snap, nil
}

// Workload implements ReportService
func (s *ReportServiceImpl) Workload(ctx context.Context, view workload.View) (workload.Dashboard, error) {
	snap, err := s.load(ctx, "workload", true, false)
	if err != nil {
		return workload.Dashboard{}, err
	}
	return workload.BuildDashboard(snap.users, snap.tasks, view, s.now()), nil
}

// Timeline implements ReportService
func (s *ReportServiceImpl) Timeline(ctx context.Context, view timeline.View) (timeline.Timeline, error) {
	snap, err := s.load(ctx, "timeline", false, true)
	if err != nil {
		return timeline.Timeline{}, err
	}
	return timeline.Build(snap.projects, snap.tasks, view, s.now()), nil
}

// Summary implements ReportService
func (s *ReportServiceImpl) Summary(ctx context.Context, query SummaryQuery) (*SummaryReport, error) {
	snap, err := s.load(ctx, "summary", true, true)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if query.Year == 0 {
		query.Year = now.Year()
	}
	if query.Month == 0 {
		query.Month = now.Month()
	}

	return &SummaryReport{
		Report:       summary.Build(snap.users, snap.projects, snap.tasks, query.Filter),
		Year:         query.Year,
		Month:        query.Month,
		WorkingHours: summary.MemberWorkingHours(snap.users, snap.tasks, query.Year, query.Month),
	}, nil
}

// ExportCSV implements ReportService
func (s *ReportServiceImpl) ExportCSV(ctx context.Context, w io.Writer) error {
	snap, err := s.load(ctx, "export", true, true)
	if err != nil {
		return err
	}
	if err := summary.WriteCSV(w, snap.users, snap.projects, snap.tasks); err != nil {
		return NewServiceError("report", "export", err)
	}
	return nil
}
