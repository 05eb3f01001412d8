package tasks_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/workwatchhq/workwatch/internal/app/system/tasks"
	"go.uber.org/zap"
)

func TestRunner_RunsJobOnStart(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var runs atomic.Int32
	runner.Register(tasks.Job{
		Name:     "counter",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	runner.Start()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1 immediate run before the first tick", runs.Load())
	}
}

func TestRunner_StopTimesOutOnStuckJob(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	started := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "stuck",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			close(started)
			// Ignores its context so Stop has to give up.
			time.Sleep(5 * time.Second)
			return nil
		},
	})

	runner.Start()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := runner.Stop(ctx); err != context.DeadlineExceeded {
		t.Errorf("Stop() error = %v, want DeadlineExceeded", err)
	}
}

func TestRunner_StopWaitsForCompletion(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	finished := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "brief",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			close(finished)
			return nil
		},
	})

	runner.Start()
	<-finished

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
