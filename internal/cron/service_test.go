package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLock struct {
	allow    bool
	acquired int
	released int
}

func (l *fakeLock) Acquire(ctx context.Context) (bool, error) {
	l.acquired++
	return l.allow, nil
}

func (l *fakeLock) Release(ctx context.Context) error {
	l.released++
	return nil
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestServiceRunsJobsOnStartup(t *testing.T) {
	job := &countingJob{name: "order-expiry"}
	lock := &fakeLock{allow: true}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
		Interval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = svc.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Equal(t, 1, job.runs)
	assert.Equal(t, 1, lock.acquired)
	assert.Equal(t, 1, lock.released)
}

func TestServiceSkipsCycleWithoutLock(t *testing.T) {
	job := &countingJob{name: "order-expiry"}
	lock := &fakeLock{allow: false}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
		Interval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = svc.Run(ctx)

	assert.Zero(t, job.runs)
	assert.Zero(t, lock.released)
}

func TestServiceContinuesAfterJobFailure(t *testing.T) {
	failing := &countingJob{name: "first", err: assert.AnError}
	healthy := &countingJob{name: "second"}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(failing, healthy),
		Lock:     &fakeLock{allow: true},
		Interval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = svc.Run(ctx)

	assert.Equal(t, 1, failing.runs)
	assert.Equal(t, 1, healthy.runs)
}

func TestRegistrySkipsNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &countingJob{name: "only"})
	registry.Register(nil)
	assert.Len(t, registry.Jobs(), 1)
}
