package control

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"pfeifer.dev/avsim/obstacles"
	"pfeifer.dev/avsim/utils"
)

var ErrRunnerStopped = errors.New("runner is not running")

// Status is the most recent completed tick as seen from outside the loop.
type Status struct {
	Mode      string               `json:"mode"`
	Scenario  string               `json:"scenario"`
	Running   bool                 `json:"running"`
	Paused    bool                 `json:"paused"`
	Record    TickRecord           `json:"record"`
	Summary   Summary              `json:"summary"`
	Obstacles []obstacles.Obstacle `json:"obstacles"`
	Hz        float64              `json:"hz"`
	Dropped   uint64               `json:"dropped"`
}

type commandKind int

const (
	cmdPause commandKind = iota
	cmdResume
	cmdReset
	cmdRestart
)

func (k commandKind) String() string {
	switch k {
	case cmdPause:
		return "pause"
	case cmdResume:
		return "resume"
	case cmdReset:
		return "reset"
	case cmdRestart:
		return "restart"
	}
	return "unknown"
}

type command struct {
	kind   commandKind
	config Config
	done   chan error
}

type observer struct {
	id int
	ch chan TickRecord
}

// Runner drives a session on its own goroutine. Commands are applied between
// ticks, never during one.
type Runner struct {
	session   *Session
	period    time.Duration
	maxCycles int

	commands chan command
	status   atomic.Pointer[Status]
	running  atomic.Bool
	dropped  atomic.Uint64

	mu        sync.Mutex
	observers []observer
	nextID    int

	paused bool
	rate   utils.UpdateTracker
}

// NewRunner wraps session. A zero period ticks as fast as possible; a
// positive maxCycles stops the loop after that many ticks.
func NewRunner(session *Session, period time.Duration, maxCycles int) *Runner {
	r := &Runner{
		session:   session,
		period:    period,
		maxCycles: maxCycles,
		commands:  make(chan command),
	}
	r.rate.Init(10)
	r.publishStatus()
	return r
}

// Snapshot returns the last published status without waiting for a tick.
func (r *Runner) Snapshot() Status {
	return *r.status.Load()
}

// Subscribe registers an observer. Records are delivered without blocking the
// loop; when the buffer is full the record is dropped for that observer.
func (r *Runner) Subscribe(buffer int) (<-chan TickRecord, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	ch := make(chan TickRecord, buffer)
	r.observers = append(r.observers, observer{id: id, ch: ch})

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, o := range r.observers {
				if o.id == id {
					r.observers = append(r.observers[:i], r.observers[i+1:]...)
					close(o.ch)
					return
				}
			}
		})
	}
}

func (r *Runner) notify(rec TickRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.observers {
		select {
		case o.ch <- rec:
		default:
			r.dropped.Add(1)
		}
	}
}

func (r *Runner) publishStatus() {
	config := r.session.Config()
	r.status.Store(&Status{
		Mode:      config.Mode.Name,
		Scenario:  config.Layout.Name,
		Running:   r.running.Load(),
		Paused:    r.paused,
		Record:    r.session.Last(),
		Summary:   r.session.Summary(),
		Obstacles: r.session.Obstacles(),
		Hz:        r.rate.Hz(),
		Dropped:   r.dropped.Load(),
	})
}

func (r *Runner) send(ctx context.Context, cmd command) error {
	if !r.running.Load() {
		return ErrRunnerStopped
	}
	cmd.done = make(chan error, 1)
	select {
	case r.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) Pause(ctx context.Context) error {
	return r.send(ctx, command{kind: cmdPause})
}

func (r *Runner) Resume(ctx context.Context) error {
	return r.send(ctx, command{kind: cmdResume})
}

// Reset swaps in a new configuration at the next tick boundary. An invalid
// config is rejected and the current run continues.
func (r *Runner) Reset(ctx context.Context, config Config) error {
	return r.send(ctx, command{kind: cmdReset, config: config})
}

// Restart rewinds the current configuration to its first tick.
func (r *Runner) Restart(ctx context.Context) error {
	return r.send(ctx, command{kind: cmdRestart})
}

func (r *Runner) apply(cmd command) {
	var err error
	switch cmd.kind {
	case cmdPause:
		r.paused = true
	case cmdResume:
		r.paused = false
	case cmdReset:
		err = r.session.Reset(cmd.config)
		utils.Logwe(err, "rejected session reset", "mode", cmd.config.Mode.Name, "scenario", cmd.config.Layout.Name)
	case cmdRestart:
		r.session.Restart()
	}
	if err == nil {
		slog.Info("runner command applied", "command", cmd.kind, "cycle", r.session.Cycle())
	}
	r.publishStatus()
	cmd.done <- err
}

// Run blocks until ctx is cancelled or maxCycles ticks have run.
func (r *Runner) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return errors.New("runner already running")
	}
	defer func() {
		r.running.Store(false)
		r.publishStatus()
	}()

	var ticks <-chan time.Time
	if r.period > 0 {
		ticker := time.NewTicker(r.period)
		defer ticker.Stop()
		ticks = ticker.C
	} else {
		ready := make(chan time.Time)
		close(ready)
		ticks = ready
	}

	slog.Info("runner started", "mode", r.session.Config().Mode.Name, "scenario", r.session.Config().Layout.Name, "period", r.period)
	r.publishStatus()
	for {
		tick := ticks
		if r.paused {
			tick = nil
		}
		select {
		case <-ctx.Done():
			slog.Info("runner stopped", "cycle", r.session.Cycle())
			return nil
		case cmd := <-r.commands:
			r.apply(cmd)
		case <-tick:
			rec := r.session.Tick()
			r.rate.Update()
			r.publishStatus()
			r.notify(rec)
			if r.maxCycles > 0 && r.session.Cycle() >= r.maxCycles {
				slog.Info("runner finished", "cycles", r.session.Cycle())
				return nil
			}
		}
	}
}
