package auth

import (
	"context"
	"fmt"

	jobs "github.com/nhle/too-doo/internal/sync"
)

// SessionPruner is a background job deleting expired sessions.
type SessionPruner struct {
	svc *Service
}

// NewSessionPruner wraps svc as a job.
func NewSessionPruner(svc *Service) *SessionPruner {
	return &SessionPruner{svc: svc}
}

// Name implements jobs.Job.
func (p *SessionPruner) Name() string { return "sessions" }

// RunOnce implements jobs.Job.
func (p *SessionPruner) RunOnce(ctx context.Context) (jobs.Report, error) {
	n, err := p.svc.PruneSessions(ctx)
	if err != nil {
		return jobs.Report{}, fmt.Errorf("pruning sessions: %w", err)
	}
	return jobs.Report{Items: n, Detail: fmt.Sprintf("%d expired sessions removed", n)}, nil
}
