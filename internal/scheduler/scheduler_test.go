package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markelira/elira-insight/models"
)

type fakeJob struct {
	name  string
	spec  string
	runs  int
	err   error
	panic bool
}

func (j *fakeJob) Name() string { return j.name }
func (j *fakeJob) Spec() string { return j.spec }

func (j *fakeJob) Window(now time.Time) time.Time {
	return now.Truncate(time.Hour)
}

func (j *fakeJob) Run(ctx context.Context, now time.Time) (int, error) {
	j.runs++
	if j.panic {
		panic("boom")
	}
	return 5, j.err
}

type fakeRunStore struct {
	mu        sync.Mutex
	completed map[string]bool
	begun     []*models.JobRun
	finishes  []string
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{completed: make(map[string]bool)}
}

func (rs *fakeRunStore) key(job string, window time.Time) string {
	return job + "/" + window.UTC().Format(time.RFC3339)
}

func (rs *fakeRunStore) Completed(ctx context.Context, job string, window time.Time) (bool, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.completed[rs.key(job, window)], nil
}

func (rs *fakeRunStore) Begin(ctx context.Context, run *models.JobRun) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.begun = append(rs.begun, run)
	return nil
}

func (rs *fakeRunStore) Finish(ctx context.Context, run *models.JobRun, status, errMsg string, count int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.finishes = append(rs.finishes, status)
	if status == models.JobRunSucceeded {
		rs.completed[rs.key(run.Job, run.WindowStart)] = true
	}
}

type fakeLocker struct {
	held     bool
	acquires int
	releases int
}

func (l *fakeLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	l.acquires++
	return !l.held, nil
}

func (l *fakeLocker) Release(ctx context.Context, name string) error {
	l.releases++
	return nil
}

func newTestScheduler(t *testing.T, runs RunStore, locker *fakeLocker) *Scheduler {
	t.Helper()
	s, err := New(Config{Timezone: "UTC"}, runs, locker)
	require.NoError(t, err)
	return s
}

func TestRunJob_SecondRunOfSameWindowSkips(t *testing.T) {
	job := &fakeJob{name: "weekly_insights", spec: "0 9 * * MON"}
	runs := newFakeRunStore()
	locker := &fakeLocker{}
	s := newTestScheduler(t, runs, locker)
	require.NoError(t, s.Register(job))

	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	s.RunJob(context.Background(), job.name, now)
	s.RunJob(context.Background(), job.name, now.Add(10*time.Minute))

	assert.Equal(t, 1, job.runs)
	require.Len(t, runs.finishes, 1)
	assert.Equal(t, models.JobRunSucceeded, runs.finishes[0])
	assert.Equal(t, 2, locker.releases)
}

func TestRunJob_LeaseHeldElsewhereSkips(t *testing.T) {
	job := &fakeJob{name: "weekly_insights", spec: "0 9 * * MON"}
	runs := newFakeRunStore()
	s := newTestScheduler(t, runs, &fakeLocker{held: true})
	require.NoError(t, s.Register(job))

	s.RunJob(context.Background(), job.name, time.Now())

	assert.Equal(t, 0, job.runs)
	assert.Empty(t, runs.begun)
}

func TestRunJob_FailureIsRecordedAndWindowStaysOpen(t *testing.T) {
	job := &fakeJob{name: "consultation_reminder_24h", spec: "@every 1h", err: errors.New("bulk write rejected")}
	runs := newFakeRunStore()
	s := newTestScheduler(t, runs, &fakeLocker{})
	require.NoError(t, s.Register(job))

	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	s.RunJob(context.Background(), job.name, now)
	require.Len(t, runs.finishes, 1)
	assert.Equal(t, models.JobRunFailed, runs.finishes[0])

	// a failed window is retryable
	job.err = nil
	s.RunJob(context.Background(), job.name, now.Add(5*time.Minute))
	assert.Equal(t, 2, job.runs)
	assert.Equal(t, models.JobRunSucceeded, runs.finishes[1])
}

func TestRunJob_PanicIsRecovered(t *testing.T) {
	job := &fakeJob{name: "weekly_insights", spec: "0 9 * * MON", panic: true}
	runs := newFakeRunStore()
	locker := &fakeLocker{}
	s := newTestScheduler(t, runs, locker)
	require.NoError(t, s.Register(job))

	assert.NotPanics(t, func() {
		s.RunJob(context.Background(), job.name, time.Now())
	})
	require.Len(t, runs.finishes, 1)
	assert.Equal(t, models.JobRunFailed, runs.finishes[0])
	assert.Equal(t, 1, locker.releases)
}

func TestRegister_RejectsDuplicateAndBadSpec(t *testing.T) {
	s := newTestScheduler(t, newFakeRunStore(), &fakeLocker{})
	job := &fakeJob{name: "weekly_insights", spec: "0 9 * * MON"}
	require.NoError(t, s.Register(job))
	assert.Error(t, s.Register(&fakeJob{name: "weekly_insights", spec: "0 9 * * MON"}))
	assert.Error(t, s.Register(&fakeJob{name: "broken", spec: "not a cron spec"}))
	assert.True(t, s.Has("weekly_insights"))
	assert.False(t, s.Has("broken_registered"))
}

func TestRunJob_UnknownJobIsNoop(t *testing.T) {
	locker := &fakeLocker{}
	s := newTestScheduler(t, newFakeRunStore(), locker)
	s.RunJob(context.Background(), "nope", time.Now())
	assert.Equal(t, 0, locker.acquires)
}
