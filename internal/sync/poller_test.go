package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) RunOnce(ctx context.Context) (Report, error) {
	n := j.runs.Add(1)
	return Report{Items: int(n)}, j.err
}

func waitResult(t *testing.T, p *Poller) JobResultMsg {
	t.Helper()
	select {
	case msg := <-p.Results():
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job result")
	}
	return JobResultMsg{}
}

func TestPoller_RunsImmediatelyAndOnTrigger(t *testing.T) {
	job := &countingJob{name: "aggregate"}
	p := New(nil)
	p.Register(job, time.Hour)

	p.Start()
	defer p.Stop()

	first := waitResult(t, p)
	assert.Equal(t, "aggregate", first.Name)
	assert.NoError(t, first.Error)
	assert.Equal(t, 1, first.Report.Items)

	p.Trigger("aggregate")
	second := waitResult(t, p)
	assert.Equal(t, 2, second.Report.Items)

	statuses := p.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, JobIdle, statuses[0].State)
	assert.False(t, statuses[0].LastRun.IsZero())
}

func TestPoller_RecordsErrors(t *testing.T) {
	job := &countingJob{name: "mail", err: errors.New("imap down")}
	p := New(nil)
	p.Register(job, time.Hour)

	p.Start()
	defer p.Stop()

	msg := waitResult(t, p)
	assert.EqualError(t, msg.Error, "imap down")

	statuses := p.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, JobError, statuses[0].State)
	assert.Equal(t, "error", statuses[0].State.String())
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	p := New(nil)
	p.Register(&countingJob{name: "a"}, time.Hour)
	p.Start()
	waitResult(t, p)
	p.Stop()
	p.Stop()

	// Unknown names are ignored.
	p.Trigger("missing")
}
