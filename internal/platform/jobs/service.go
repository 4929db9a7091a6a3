package jobs

import (
	"context"
	"log/slog"
	"time"

	"adminportal/internal/platform/config"
)

const (
	JobWorkspaceSweep   = "workspace_sweep"
	JobJournalRetention = "journal_retention"
)

// Sweeper evicts idle workspaces; *workspace.Registry satisfies it.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// Purger drops old journal entries; *journal.Service satisfies it.
type Purger interface {
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

type Service struct {
	Cfg       config.Config
	Workspace Sweeper
	Journal   Purger
	queue     chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(cfg config.Config, workspaces Sweeper, journal Purger) *Service {
	return &Service{
		Cfg:       cfg,
		Workspace: workspaces,
		Journal:   journal,
		queue:     make(chan job, 16),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.SweepInterval <= 0 {
		return
	}
	if s.Workspace != nil && s.Cfg.WorkspaceIdleTTL > 0 {
		go s.schedule(ctx, JobWorkspaceSweep, s.Cfg.SweepInterval, s.sweepWorkspaces)
	}
	if s.Journal != nil && s.Cfg.JournalRetention > 0 {
		go s.schedule(ctx, JobJournalRetention, s.Cfg.SweepInterval, s.purgeJournal)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	start := time.Now()
	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	slog.Debug("job run", "jobType", j.Type, "status", status, "durationMs", time.Since(start).Milliseconds(), "details", details)
	return details, err
}

func (s *Service) schedule(ctx context.Context, jobType string, interval time.Duration, run func(context.Context) (any, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(jobType, run)
		}
	}
}

func (s *Service) sweepWorkspaces(context.Context) (any, error) {
	removed := s.Workspace.Sweep(s.Cfg.WorkspaceIdleTTL)
	if removed > 0 {
		slog.Info("idle workspaces evicted", "count", removed)
	}
	return map[string]any{"evicted": removed}, nil
}

func (s *Service) purgeJournal(ctx context.Context) (any, error) {
	deleted, err := s.Journal.Purge(ctx, s.Cfg.JournalRetention)
	return map[string]any{
		"retention": s.Cfg.JournalRetention.String(),
		"deleted":   deleted,
	}, err
}

// SweepNow runs both housekeeping jobs synchronously.
func (s *Service) SweepNow(ctx context.Context) error {
	if s.Workspace != nil {
		if _, err := s.RunNow(ctx, JobWorkspaceSweep, s.sweepWorkspaces); err != nil {
			return err
		}
	}
	if s.Journal != nil && s.Cfg.JournalRetention > 0 {
		if _, err := s.RunNow(ctx, JobJournalRetention, s.purgeJournal); err != nil {
			return err
		}
	}
	return nil
}
