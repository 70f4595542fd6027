package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"callog/internal/adapters/notify"
	celcore "callog/internal/core/cel"
	"callog/internal/modkit/repokit"
	grepo "callog/internal/services/generator/repo"
)

// syncRepo mimics the database contract: a ready linkedid stays listed
// until its call log has been written
type syncRepo struct {
	mu     sync.Mutex
	events map[string][]celcore.Event
	writes map[string]int
}

func newSyncRepo(events map[string][]celcore.Event) *syncRepo {
	return &syncRepo{events: events, writes: make(map[string]int)}
}

func (r *syncRepo) ListReadyLinkedIDs(context.Context, int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for id := range r.events {
		if r.writes[id] == 0 {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *syncRepo) FetchByLinkedID(_ context.Context, linkedID string) ([]celcore.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[linkedID], nil
}

func (r *syncRepo) WriteCallLog(_ context.Context, _ celcore.CDR, linkedID string, _ []int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes[linkedID]++
	return "cl-" + linkedID, nil
}

func (r *syncRepo) writeCount(linkedID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes[linkedID]
}

// slowDirectory blocks each lookup and records peak concurrency
type slowDirectory struct {
	delay time.Duration

	mu        sync.Mutex
	active    int
	maxActive int
}

func (d *slowDirectory) ListLines(ctx context.Context, _ string) ([]celcore.Line, error) {
	d.mu.Lock()
	d.active++
	if d.active > d.maxActive {
		d.maxActive = d.active
	}
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.active--
		d.mu.Unlock()
	}()

	select {
	case <-time.After(d.delay):
	case <-ctx.Done():
	}
	return nil, nil
}

func (d *slowDirectory) GetUser(context.Context, string) (celcore.User, error) {
	return celcore.User{}, nil
}

func (d *slowDirectory) peak() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxActive
}

func newWorkerSvc(r *syncRepo, dir celcore.DirectoryPort, cfg Config) *Svc {
	return &Svc{
		db:     fakeTx{},
		binder: repokit.BindFunc[grepo.Repo](func(repokit.Queryer) grepo.Repo { return r }),
		repo:   r,
		disp:   celcore.NewDispatcher(dir),
		pub:    notify.NewMockPublisher(),
		cfg:    cfg,
	}
}

func TestRun_SlowCallIsNotPickedUpTwice(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	repo := newSyncRepo(map[string][]celcore.Event{"L1": callEvents(t0)})
	dir := &slowDirectory{delay: 80 * time.Millisecond}
	s := newWorkerSvc(repo, dir, Config{
		Interval:    10 * time.Millisecond,
		Concurrency: 4,
		BatchSize:   8,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// interpretation spans many ticks; the worker keeps seeing L1 listed
	time.Sleep(400 * time.Millisecond)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	if n := repo.writeCount("L1"); n != 1 {
		t.Fatalf("L1 written %d times, want exactly once", n)
	}
}

func TestRun_SemaphoreBoundsConcurrency(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	events := map[string][]celcore.Event{
		"L1": callEvents(t0),
		"L2": callEvents(t0),
		"L3": callEvents(t0),
	}
	repo := newSyncRepo(events)
	dir := &slowDirectory{delay: 50 * time.Millisecond}
	s := newWorkerSvc(repo, dir, Config{
		Interval:    5 * time.Millisecond,
		Concurrency: 1,
		BatchSize:   8,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(300 * time.Millisecond)
	cancel()
	<-done

	if p := dir.peak(); p > 1 {
		t.Fatalf("observed %d concurrent interpretations, want at most 1", p)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	repo := newSyncRepo(map[string][]celcore.Event{})
	s := newWorkerSvc(repo, &slowDirectory{}, Config{Interval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
