package interpreter

import (
	"fmt"

	"github.com/AaronC81/conker/pkg/ast"
	"github.com/AaronC81/conker/pkg/runtime"
)

// TaskGroup is everything the rest of the runtime needs to know about one
// `task` declaration: its instances (one for a plain task, n for a
// multi-task) and whether indexing is required to name one of them.
type TaskGroup struct {
	Name      string
	IsMulti   bool
	Instances []runtime.TaskID
}

// Loaded is a Program after task instances have been assigned ids. It is
// shared read-only by every task's evaluator once built; no field is
// mutated after Load returns.
type Loaded struct {
	Groups map[string]*TaskGroup
	Names  map[runtime.TaskID]string
	Defs   map[runtime.TaskID]*ast.TaskDef
	Index  map[runtime.TaskID]int // $index for multi-task instances
	Order  []runtime.TaskID
}

// Load assigns a TaskID to every task instance named by prog, expanding
// each multi-task `task T[n]` into n instances indexed 0..n-1.
// runtime.OutTaskID is reserved, so real instances start at 1.
func Load(prog *ast.Program) (*Loaded, error) {
	l := &Loaded{
		Groups: make(map[string]*TaskGroup),
		Names:  make(map[runtime.TaskID]string),
		Defs:   make(map[runtime.TaskID]*ast.TaskDef),
		Index:  make(map[runtime.TaskID]int),
	}

	next := runtime.OutTaskID + 1
	for _, task := range prog.Tasks {
		if _, dup := l.Groups[task.Name]; dup {
			return nil, fmt.Errorf("task %q defined more than once", task.Name)
		}
		if task.Multiplicity < 1 {
			return nil, fmt.Errorf("task %q declared with multiplicity < 1", task.Name)
		}
		group := &TaskGroup{Name: task.Name, IsMulti: task.IsMulti}
		for idx := 0; idx < task.Multiplicity; idx++ {
			id := next
			next++
			group.Instances = append(group.Instances, id)
			displayName := task.Name
			if task.IsMulti {
				displayName = fmt.Sprintf("%s[%d]", task.Name, idx)
			}
			l.Names[id] = displayName
			l.Defs[id] = task
			l.Index[id] = idx
			l.Order = append(l.Order, id)
		}
		l.Groups[task.Name] = group
	}
	return l, nil
}

// InstanceCount returns the number of task instances in the program,
// the initial live count that deadlock detection compares against.
func (l *Loaded) InstanceCount() int { return len(l.Order) }
