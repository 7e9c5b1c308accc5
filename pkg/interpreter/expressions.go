package interpreter

import (
	"context"

	"github.com/AaronC81/conker/pkg/ast"
	"github.com/AaronC81/conker/pkg/runtime"
)

// evalExpr evaluates expr to a value in a non-channel context. A bare
// task or indexed-task reference still produces a value here: the only
// value Conker has for "the task over there" is the channel from self to
// it, so referencing one plainly and later sending on it behave the
// same as referencing it directly in a send statement.
func (ev *Evaluator) evalExpr(ctx context.Context, expr ast.Expression) (runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return runtime.Integer{Val: e.Value}, nil

	case *ast.BooleanLiteral:
		return runtime.Boolean{Val: e.Value}, nil

	case *ast.NullLiteral:
		return runtime.Null{}, nil

	case *ast.Identifier:
		return ev.evalIdentifier(e)

	case *ast.IndexExpr:
		group, ok := ev.loaded.Groups[e.Task]
		if !ok {
			return nil, &runtime.NameError{Name: e.Task}
		}
		id, err := ev.resolveGroupChannel(ctx, group, e.Index, true)
		if err != nil {
			return nil, err
		}
		return runtime.ChannelRef{ID: id}, nil

	case *ast.BinaryExpr:
		return ev.evalBinary(ctx, e)

	default:
		return nil, &ChannelError{Reason: "unrecognised expression"}
	}
}

// evalIdentifier implements the lookup order of a bare name: task-local
// binding, then task reference, then magic endpoint.
func (ev *Evaluator) evalIdentifier(id *ast.Identifier) (runtime.Value, error) {
	if ev.env.Has(id.Name) {
		return ev.env.Get(id.Name)
	}
	if group, ok := ev.loaded.Groups[id.Name]; ok {
		if group.IsMulti {
			return nil, &ChannelError{Reason: "bare reference to multi-task " + id.Name}
		}
		return runtime.ChannelRef{ID: ev.taskInstanceChannel(group.Instances[0], true)}, nil
	}
	if id.Name == "$out" {
		return runtime.ChannelRef{ID: ev.registry.Identify(ev.self, runtime.OutTaskID)}, nil
	}
	return nil, &runtime.NameError{Name: id.Name}
}

func (ev *Evaluator) evalBinary(ctx context.Context, e *ast.BinaryExpr) (runtime.Value, error) {
	left, err := ev.evalExpr(ctx, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := ev.evalExpr(ctx, e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "+":
		return runtime.Add(left, right)
	case "-":
		return runtime.Sub(left, right)
	case "*":
		return runtime.Mul(left, right)
	case "/":
		return runtime.Div(left, right)
	case "<", ">", "<=", ">=":
		return runtime.Compare(e.Op, left, right)
	case "==":
		return runtime.Boolean{Val: runtime.Equals(left, right)}, nil
	case "!=":
		return runtime.Boolean{Val: !runtime.Equals(left, right)}, nil
	default:
		return nil, &runtime.TypeError{Op: e.Op, Got: []runtime.Kind{left.Kind(), right.Kind()}}
	}
}
