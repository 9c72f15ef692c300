package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerRunsJobOnStart(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	ran := make(chan struct{})

	s := NewScheduler()
	s.AddJob("closer", time.Hour, func(context.Context) error {
		if runs.Add(1) == 1 {
			close(ran)
		}
		return nil
	})
	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run at start")
	}
}

func TestSchedulerRunOnceContinuesPastFailures(t *testing.T) {
	t.Parallel()

	var second atomic.Int32

	s := NewScheduler()
	s.AddJob("first", time.Hour, func(context.Context) error {
		return errors.New("transient")
	})
	s.AddJob("second", time.Hour, func(context.Context) error {
		second.Add(1)
		return nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, int32(1), second.Load())
}
