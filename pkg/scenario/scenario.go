// Package scenario runs whole Conker programs end to end from YAML
// fixtures, the same source-to-stdout path the conker binary takes,
// and checks their observable behaviour: exit cause and stdout.
package scenario

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AaronC81/conker/pkg/interpreter"
	"github.com/AaronC81/conker/pkg/parser"
)

// Outcome names the expected termination cause of a scenario, matching
// interpreter.Cause's String() form.
type Outcome string

const (
	OutcomeExit     Outcome = "exit"
	OutcomeDeadlock Outcome = "deadlock"
	OutcomeError    Outcome = "error"
)

// Scenario is one end-to-end fixture: a program plus the stdout and
// termination it is expected to produce.
type Scenario struct {
	Name    string   `yaml:"name"`
	Source  string   `yaml:"source"`
	Outcome Outcome  `yaml:"outcome"`
	Stdout  []string `yaml:"stdout"`     // exact, in order
	AnyOf   []string `yaml:"stdout_set"` // same lines, any order, each exactly once
}

// Load reads and parses a single scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	return &s, nil
}

// LoadDir reads every *.yaml fixture in dir, sorted by filename.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []*Scenario
	for _, name := range names {
		s, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Result is what running a scenario actually produced.
type Result struct {
	Stdout []string
	Cause  interpreter.Cause
	Err    error
}

// Run parses and executes the scenario's source once with the given
// tie-break seed, under a deadline so a genuinely stuck program fails
// the test instead of hanging the suite.
func (s *Scenario) Run(seed int64) (*Result, error) {
	program, err := parser.Parse(s.Source)
	if err != nil {
		return nil, fmt.Errorf("parsing scenario %q: %w", s.Name, err)
	}

	var buf bytes.Buffer
	sched, err := interpreter.NewScheduler(program, seed, &buf)
	if err != nil {
		return nil, fmt.Errorf("loading scenario %q: %w", s.Name, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	term := sched.Run(ctx)

	var lines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return &Result{Stdout: lines, Cause: term.Cause, Err: term.Err}, nil
}

// MatchesStdout reports whether got satisfies whichever of Stdout /
// AnyOf the scenario declared.
func (s *Scenario) MatchesStdout(got []string) bool {
	if s.Stdout != nil {
		return equalSlices(s.Stdout, got)
	}
	if s.AnyOf != nil {
		return equalAsSets(s.AnyOf, got)
	}
	return len(got) == 0
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalAsSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]string{}, a...)
	sb := append([]string{}, b...)
	sort.Strings(sa)
	sort.Strings(sb)
	return equalSlices(sa, sb)
}
