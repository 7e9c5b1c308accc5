package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/AaronC81/conker/pkg/interpreter"
	"github.com/AaronC81/conker/pkg/parser"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 1 {
		printUsage()
		return 1
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", args[0], err)
		return 1
	}

	program, err := parser.Parse(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		return 1
	}

	sched, err := interpreter.NewScheduler(program, resolveSeed(), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		return 1
	}

	term := sched.Run(context.Background())
	switch term.Cause {
	case interpreter.CauseExit:
		return 0
	case interpreter.CauseDeadlock:
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], term.Err)
		return 1
	case interpreter.CauseError:
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], term.Err)
		return 1
	default:
		return 0
	}
}

// resolveSeed reads CONKER_SEED if set, falling back to the current
// time so that unseeded runs still vary from one invocation to the
// next rather than sharing a fixed default tie-break order.
func resolveSeed() int64 {
	if raw := os.Getenv("CONKER_SEED"); raw != "" {
		if seed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return seed
		}
		fmt.Fprintf(os.Stderr, "warning: CONKER_SEED %q is not a valid integer, ignoring\n", raw)
	}
	return time.Now().UnixNano()
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  conker <program-file>")
}
