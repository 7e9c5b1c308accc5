package interpreter

import (
	"context"
	"fmt"

	"github.com/AaronC81/conker/pkg/ast"
	"github.com/AaronC81/conker/pkg/runtime"
)

// Evaluator is the tree-walking executor for one task instance. It owns
// that instance's local environment and nothing else: all cross-task
// state lives in the shared *runtime.Registry.
type Evaluator struct {
	self    runtime.TaskID
	name    string
	isMulti bool
	body    *ast.Block

	env      *runtime.Environment
	loaded   *Loaded
	registry *runtime.Registry
}

// NewEvaluator builds the evaluator for one task instance. index is
// meaningless (and unused) unless def.IsMulti.
func NewEvaluator(self runtime.TaskID, def *ast.TaskDef, index int, loaded *Loaded, registry *runtime.Registry) *Evaluator {
	env := runtime.NewEnvironment()
	if def.IsMulti {
		env.Define("$index", runtime.Integer{Val: int64(index)})
	}
	return &Evaluator{
		self:     self,
		name:     loaded.Names[self],
		isMulti:  def.IsMulti,
		body:     def.Body,
		env:      env,
		loaded:   loaded,
		registry: registry,
	}
}

// Run executes the task body to completion, to an `exit` request, or
// until ctx is cancelled by some other task's termination. It never
// returns context.Canceled directly: callers see the typed cancelled
// error instead, keeping "why did the program end" a question the
// scheduler answers once, centrally.
func (ev *Evaluator) Run(ctx context.Context) error {
	err := ev.execBlock(ctx, ev.body)
	if err == nil || err == ErrExitRequested || isCancelled(err) {
		return err
	}
	return &RuntimeError{Task: ev.name, Err: err}
}

func (ev *Evaluator) execBlock(ctx context.Context, block *ast.Block) error {
	for _, stmt := range block.Statements {
		if err := ctx.Err(); err != nil {
			return cancelled{cause: err}
		}
		if err := ev.execStmt(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

//-----------------------------------------------------------------------------
// Channel resolution
//-----------------------------------------------------------------------------

// channelFromValue requires v to already be a channel reference, which is
// the case for anything but a bare task/index expression: a local
// binding, $out, or a more complex expression that still must denote a
// channel.
func channelFromValue(v runtime.Value) (runtime.ChannelID, error) {
	cr, ok := v.(runtime.ChannelRef)
	if !ok {
		return 0, &ChannelError{Reason: fmt.Sprintf("%s is not a channel", v.Kind())}
	}
	return cr.ID, nil
}

// taskInstanceChannel resolves the directed channel identity between self
// and target, from self's point of view as given by senderSide.
func (ev *Evaluator) taskInstanceChannel(target runtime.TaskID, senderSide bool) runtime.ChannelID {
	if senderSide {
		return ev.registry.Identify(ev.self, target)
	}
	return ev.registry.Identify(target, ev.self)
}

// resolveChannel resolves a Send's or an explicit Receive's channel
// expression to a concrete ChannelID, from self's point of view as given
// by senderSide (true for Send, false for receive).
func (ev *Evaluator) resolveChannel(ctx context.Context, expr ast.Expression, senderSide bool) (runtime.ChannelID, error) {
	switch e := expr.(type) {
	case *ast.Identifier:
		if ev.env.Has(e.Name) {
			v, _ := ev.env.Get(e.Name)
			return channelFromValue(v)
		}
		if group, ok := ev.loaded.Groups[e.Name]; ok {
			return ev.resolveGroupChannel(ctx, group, nil, senderSide)
		}
		if e.Name == "$out" {
			return ev.registry.Identify(ev.self, runtime.OutTaskID), nil
		}
		v, err := ev.evalExpr(ctx, expr)
		if err != nil {
			return 0, err
		}
		return channelFromValue(v)

	case *ast.IndexExpr:
		group, ok := ev.loaded.Groups[e.Task]
		if !ok {
			return 0, &runtime.NameError{Name: e.Task}
		}
		return ev.resolveGroupChannel(ctx, group, e.Index, senderSide)

	default:
		v, err := ev.evalExpr(ctx, expr)
		if err != nil {
			return 0, err
		}
		return channelFromValue(v)
	}
}

// resolveGroupChannel resolves a task group reference to a channel,
// requiring an explicit index for a multi-task. indexExpr is nil for a
// bare (non-multi) reference.
func (ev *Evaluator) resolveGroupChannel(ctx context.Context, group *TaskGroup, indexExpr ast.Expression, senderSide bool) (runtime.ChannelID, error) {
	if group.IsMulti && indexExpr == nil {
		return 0, &ChannelError{Reason: fmt.Sprintf("bare reference to multi-task %s requires an index", group.Name)}
	}
	idx := 0
	if indexExpr != nil {
		v, err := ev.evalExpr(ctx, indexExpr)
		if err != nil {
			return 0, err
		}
		i, ok := v.(runtime.Integer)
		if !ok {
			return 0, &runtime.TypeError{Op: "index", Got: []runtime.Kind{v.Kind()}}
		}
		idx = int(i.Val)
	}
	if idx < 0 || idx >= len(group.Instances) {
		return 0, &ChannelError{Reason: fmt.Sprintf("%s[%d] is out of range", group.Name, idx)}
	}
	return ev.taskInstanceChannel(group.Instances[idx], senderSide), nil
}
