package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// job is one registered background task and its run interval.
type job struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) error
}

// Scheduler runs registered jobs on fixed intervals until stopped. Every
// job also runs once at Start, so a restarted service closes overdue work
// days immediately instead of waiting out a full interval.
type Scheduler struct {
	mu     sync.Mutex
	jobs   []job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{ctx: ctx, cancel: cancel}
}

// AddJob registers a named job. Register before Start; jobs added later
// never run.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job{name: name, interval: interval, fn: fn})
	slog.Info("background job registered", "job", name, "interval", interval)
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(j)
	}
	slog.Info("background scheduler started", "jobs", len(s.jobs))
}

// Stop cancels every job context and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("background scheduler stopped")
}

func (s *Scheduler) loop(j job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	s.execute(j)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.execute(j)
		}
	}
}

func (s *Scheduler) execute(j job) {
	start := time.Now()
	if err := j.fn(s.ctx); err != nil {
		slog.Error("background job failed", "job", j.name, "took", time.Since(start), "error", err)
		return
	}
	slog.Debug("background job finished", "job", j.name, "took", time.Since(start))
}

// RunOnce executes every registered job a single time with ctx. A failing
// job never stops the ones after it.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		if err := j.fn(ctx); err != nil {
			slog.Error("background job failed", "job", j.name, "error", err)
		}
	}
}
