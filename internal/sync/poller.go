package sync

import (
	"context"
	"sort"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/too-doo/internal/logging"
)

// JobState represents the current state of a background job.
type JobState int

const (
	JobIdle JobState = iota
	JobRunning
	JobError
)

func (s JobState) String() string {
	switch s {
	case JobRunning:
		return "running"
	case JobError:
		return "error"
	default:
		return "idle"
	}
}

// Report summarizes one job run.
type Report struct {
	Items  int
	Detail string
}

// Job is a unit of background work run on an interval.
type Job interface {
	Name() string
	RunOnce(ctx context.Context) (Report, error)
}

// JobStatus holds the state of a single job.
type JobStatus struct {
	Name       string
	State      JobState
	LastRun    time.Time
	LastReport Report
	Error      error
}

// JobResultMsg is a tea.Msg sent when a job run completes.
type JobResultMsg struct {
	Name   string
	Report Report
	Error  error
}

// runTimeout is the maximum time allowed for a single job run.
const runTimeout = 2 * time.Minute

// jobEntry holds a registered job and its interval.
type jobEntry struct {
	job      Job
	interval time.Duration
}

// Poller orchestrates background runs of registered jobs.
type Poller struct {
	jobs      []jobEntry
	statuses  map[string]*JobStatus
	resultCh  chan JobResultMsg
	triggerCh map[string]chan struct{}
	stopCh    chan struct{}
	wg        gosync.WaitGroup
	logger    *logging.Logger
	mu        gosync.Mutex
	running   bool
}

// New creates a new Poller.
func New(logger *logging.Logger) *Poller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Poller{
		statuses:  make(map[string]*JobStatus),
		resultCh:  make(chan JobResultMsg, 16),
		triggerCh: make(map[string]chan struct{}),
		stopCh:    make(chan struct{}),
		logger:    logger.Named("poller"),
	}
}

// Register adds a job run every interval. Jobs registered after Start
// are ignored.
func (p *Poller) Register(job Job, interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if interval <= 0 {
		interval = time.Hour
	}
	p.jobs = append(p.jobs, jobEntry{job: job, interval: interval})
	p.statuses[job.Name()] = &JobStatus{Name: job.Name(), State: JobIdle}
	p.triggerCh[job.Name()] = make(chan struct{}, 1)
}

// Start launches a goroutine per job and returns a tea.Cmd that waits
// for the next result. Callers outside Bubble Tea can ignore the command
// and read Results instead.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	entries := make([]jobEntry, len(p.jobs))
	copy(entries, p.jobs)
	p.mu.Unlock()

	for _, entry := range entries {
		p.wg.Add(1)
		go p.loop(entry)
	}

	return p.waitForResult()
}

// Stop halts all job goroutines and waits for in-flight runs to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
}

// Trigger requests an immediate run of the named job. It never blocks;
// a run already queued absorbs the request.
func (p *Poller) Trigger(name string) {
	p.mu.Lock()
	ch, ok := p.triggerCh[name]
	p.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// TriggerAll requests an immediate run of every job.
func (p *Poller) TriggerAll() {
	p.mu.Lock()
	names := make([]string, 0, len(p.jobs))
	for _, e := range p.jobs {
		names = append(names, e.job.Name())
	}
	p.mu.Unlock()

	for _, n := range names {
		p.Trigger(n)
	}
}

// Statuses returns the current status of all jobs ordered by name.
func (p *Poller) Statuses() []JobStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]JobStatus, 0, len(p.statuses))
	for _, s := range p.statuses {
		statuses = append(statuses, *s)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

// Results exposes the result channel. Results are dropped when nobody
// reads them.
func (p *Poller) Results() <-chan JobResultMsg {
	return p.resultCh
}

// loop runs one job until Stop.
func (p *Poller) loop(entry jobEntry) {
	defer p.wg.Done()

	ticker := time.NewTicker(entry.interval)
	defer ticker.Stop()

	p.mu.Lock()
	trigger := p.triggerCh[entry.job.Name()]
	p.mu.Unlock()

	// Run once immediately.
	p.runJob(entry.job)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.runJob(entry.job)
		case <-trigger:
			p.runJob(entry.job)
		}
	}
}

// runJob performs a single run and publishes its result.
func (p *Poller) runJob(job Job) {
	name := job.Name()
	p.setStatus(name, JobRunning, Report{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	report, err := job.RunOnce(ctx)
	if err != nil {
		p.logger.Warn(ctx, "job run failed", zap.String("job", name), zap.Error(err))
		p.setStatus(name, JobError, report, err)
	} else {
		p.setStatus(name, JobIdle, report, nil)
	}

	p.sendResult(JobResultMsg{Name: name, Report: report, Error: err})
}

// setStatus updates the status of a job.
func (p *Poller) setStatus(name string, state JobState, report Report, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[name]
	if !ok {
		return
	}

	status.State = state
	status.Error = err
	if state != JobRunning {
		status.LastRun = time.Now()
		status.LastReport = report
	}
}

// sendResult sends a JobResultMsg without blocking.
func (p *Poller) sendResult(msg JobResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// waitForResult returns a tea.Cmd that waits for the next result.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next job result.
// Call it after handling a JobResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
