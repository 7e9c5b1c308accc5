package interpreter

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/AaronC81/conker/pkg/ast"
	"github.com/AaronC81/conker/pkg/runtime"
)

// Cause classifies why a program stopped running.
type Cause int

const (
	CauseNone Cause = iota
	CauseExit
	CauseDeadlock
	CauseError
)

func (c Cause) String() string {
	switch c {
	case CauseExit:
		return "exit"
	case CauseDeadlock:
		return "deadlock"
	case CauseError:
		return "error"
	default:
		return "none"
	}
}

// Termination is the first-cause-wins outcome of a run: whichever task
// (or the registry's own deadlock detector) reports first is the one
// diagnostic the scheduler keeps. Every other task observes ctx
// cancelled and unwinds without contributing a second cause.
type Termination struct {
	Cause Cause
	Err   error // nil for CauseExit
}

// Scheduler runs every task instance of a loaded program to completion
// and reports the first termination cause. One Scheduler runs one
// program exactly once.
type Scheduler struct {
	loaded   *Loaded
	registry *runtime.Registry
	cancel   context.CancelFunc

	mu          sync.Mutex
	termination *Termination
}

// NewScheduler builds a scheduler for prog. Values sent to $out are
// written to out, one line per value. seed drives the registry's
// tie-break RNG; see CONKER_SEED in cmd/conker.
func NewScheduler(prog *ast.Program, seed int64, out io.Writer) (*Scheduler, error) {
	loaded, err := Load(prog)
	if err != nil {
		return nil, err
	}
	sink := runtime.NewOutSink(out)

	s := &Scheduler{loaded: loaded}
	s.registry = runtime.NewRegistry(loaded.InstanceCount(), seed, sink.Emit, s.onDeadlock)
	return s, nil
}

// Run starts every task instance in its own goroutine and blocks until
// all of them have returned, then reports the outcome. A run cancelled
// through ctx before any task declared a cause reports CauseError with
// ctx's error.
func (s *Scheduler) Run(ctx context.Context) *Termination {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	defer cancel()

	var wg sync.WaitGroup
	for _, id := range s.loaded.Order {
		id := id
		def := s.loaded.Defs[id]
		index := s.loaded.Index[id]
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runInstance(ctx, id, def, index)
		}()
	}
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.termination == nil {
		if err := ctx.Err(); err != nil {
			// Only the caller's ctx can cancel without a declared cause.
			s.termination = &Termination{Cause: CauseError, Err: err}
		} else {
			s.termination = &Termination{Cause: CauseExit}
		}
	}
	return s.termination
}

func (s *Scheduler) runInstance(ctx context.Context, id runtime.TaskID, def *ast.TaskDef, index int) {
	ev := NewEvaluator(id, def, index, s.loaded, s.registry)
	err := runGuarded(ctx, ev)
	switch {
	case err == nil:
		// A graceful finish can itself be the event that completes a
		// deadlock among the tasks left running; Finish is what
		// checks for that, so it must see its natural live/blocked
		// counts with no cause declared yet.
		s.registry.Finish(id)
	case err == ErrExitRequested:
		// Declare and cancel before touching the registry's live
		// count: Finish re-checks the deadlock condition, and an
		// exiting task dropping out of `live` can make every
		// remaining task look deadlocked even though they're only
		// about to be cancelled. First-cause-wins makes any such
		// spurious deadlock report from Finish a no-op once this has
		// already declared CauseExit.
		s.declare(&Termination{Cause: CauseExit})
		s.cancel()
		s.registry.Finish(id)
	case isCancelled(err):
		s.registry.Finish(id)
	default:
		s.declare(&Termination{Cause: CauseError, Err: err})
		s.cancel()
		s.registry.Finish(id)
	}
}

// runGuarded recovers a panic escaping task evaluation (an interpreter
// bug, not a Conker-level error) and reports it the same way any other
// runtime error is reported, naming the offending task.
func runGuarded(ctx context.Context, ev *Evaluator) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RuntimeError{Task: ev.name, Err: panicError{r}}
		}
	}()
	return ev.Run(ctx)
}

type panicError struct{ value any }

func (p panicError) Error() string { return fmt.Sprintf("internal error: %v", p.value) }

func (s *Scheduler) onDeadlock() {
	s.declare(&Termination{Cause: CauseDeadlock, Err: &DeadlockError{}})
	s.cancel()
}

// declare records t as the termination cause if none has been recorded
// yet. First cause wins; later callers are no-ops.
func (s *Scheduler) declare(t *Termination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.termination == nil {
		s.termination = t
	}
}
