package interpreter

import (
	"errors"
	"fmt"
)

// ChannelError reports a send or receive whose target did not resolve to
// a channel: a non-channel value used as a channel expression, or a bare
// reference to a multi-task where an index was required.
type ChannelError struct {
	Reason string
}

func (e *ChannelError) Error() string { return "channel error: " + e.Reason }

// DeadlockError is the program-level error raised when every remaining
// task is suspended in the registry and no rendezvous is possible.
type DeadlockError struct{}

func (*DeadlockError) Error() string { return "deadlock: no task can make progress" }

// exitRequested is the cooperative termination signal raised by an
// `exit` statement. It is deliberately not exported as an error type a
// Conker program could inspect: per §7 it is a signal, not an error.
type exitRequested struct{}

func (exitRequested) Error() string { return "exit requested" }

// ErrExitRequested is returned up through evaluation by an `exit`
// statement.
var ErrExitRequested error = exitRequested{}

// cancelled is returned by a task whose blocking send/receive woke up
// because some other task already triggered termination (exit,
// deadlock, or a sibling's runtime error). It is not itself a fresh
// cause of termination: the scheduler's first recorded cause wins.
type cancelled struct{ cause error }

func (c cancelled) Error() string { return "cancelled: " + c.cause.Error() }
func (c cancelled) Unwrap() error { return c.cause }

func isCancelled(err error) bool {
	var c cancelled
	return errors.As(err, &c)
}

// RuntimeError wraps an evaluation failure with the task instance it
// occurred in, which is how propagation (§7) identifies the offending
// task in diagnostics.
type RuntimeError struct {
	Task string
	Err  error
}

func (e *RuntimeError) Error() string { return fmt.Sprintf("%s: %v", e.Task, e.Err) }
func (e *RuntimeError) Unwrap() error { return e.Err }
