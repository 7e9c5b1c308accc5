package interpreter

import (
	"context"
	"errors"

	"github.com/AaronC81/conker/pkg/ast"
	"github.com/AaronC81/conker/pkg/runtime"
)

func (ev *Evaluator) execStmt(ctx context.Context, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.Assignment:
		v, err := ev.evalExpr(ctx, s.Value)
		if err != nil {
			return err
		}
		ev.env.Define(s.Target, v)
		return nil

	case *ast.Loop:
		for {
			if err := ctx.Err(); err != nil {
				return cancelled{cause: err}
			}
			if err := ev.execBlock(ctx, s.Body); err != nil {
				return err
			}
		}

	case *ast.While:
		for {
			if err := ctx.Err(); err != nil {
				return cancelled{cause: err}
			}
			cond, err := ev.evalExpr(ctx, s.Cond)
			if err != nil {
				return err
			}
			if !runtime.IsTruthy(cond) {
				return nil
			}
			if err := ev.execBlock(ctx, s.Body); err != nil {
				return err
			}
		}

	case *ast.If:
		cond, err := ev.evalExpr(ctx, s.Cond)
		if err != nil {
			return err
		}
		if runtime.IsTruthy(cond) {
			return ev.execBlock(ctx, s.Then)
		}
		if s.Else != nil {
			return ev.execBlock(ctx, s.Else)
		}
		return nil

	case *ast.Exit:
		return ErrExitRequested

	case *ast.Send:
		return ev.execSend(ctx, s)

	case *ast.Receive:
		return ev.execReceive(ctx, s)

	default:
		return &ChannelError{Reason: "unrecognised statement"}
	}
}

func (ev *Evaluator) execSend(ctx context.Context, s *ast.Send) error {
	value, err := ev.evalExpr(ctx, s.Value)
	if err != nil {
		return err
	}
	channel, err := ev.resolveChannel(ctx, s.Channel, true)
	if err != nil {
		return err
	}
	if err := ev.registry.Send(ctx, ev.self, channel, value); err != nil {
		return wrapSuspensionError(err)
	}
	return nil
}

func (ev *Evaluator) execReceive(ctx context.Context, s *ast.Receive) error {
	switch spec := s.Channel.(type) {
	case *ast.ExplicitChannel:
		channel, err := ev.resolveChannel(ctx, spec.Expr, false)
		if err != nil {
			return err
		}
		value, err := ev.registry.ReceiveExplicit(ctx, ev.self, channel)
		if err != nil {
			return wrapSuspensionError(err)
		}
		ev.bind(s.Target, value)
		return nil

	case *ast.BindingChannel:
		value, channel, err := ev.registry.ReceiveBinding(ctx, ev.self)
		if err != nil {
			return wrapSuspensionError(err)
		}
		ev.env.Define(spec.Name, runtime.ChannelRef{ID: channel})
		ev.bind(s.Target, value)
		return nil

	default:
		return &ChannelError{Reason: "unrecognised channel spec"}
	}
}

func (ev *Evaluator) bind(target string, value runtime.Value) {
	if target == "_" {
		return
	}
	ev.env.Define(target, value)
}

// wrapSuspensionError turns the context cancellation a suspended send or
// receive observes into the typed cancelled error, so the only raw
// context.Canceled in the system is the one the registry itself returns.
func wrapSuspensionError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return cancelled{cause: err}
	}
	return err
}
