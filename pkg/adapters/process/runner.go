package process

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"github.com/aretw0/htn/pkg/domain"
	"github.com/aretw0/htn/pkg/registry"
)

// Runner turns allow-listed local commands into primitive task actions.
// Only registered commands can run; task documents refer to them by name.
type Runner struct {
	processes map[string]ProcessConfig
	baseDir   string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithConfig populates the allow-list from a loaded config.
func WithConfig(actions map[string]ProcessConfig) RunnerOption {
	return func(r *Runner) {
		for name, a := range actions {
			a.Name = name
			r.processes[name] = a
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{processes: make(map[string]ProcessConfig)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name, command string, args ...string) {
	r.processes[name] = ProcessConfig{Name: name, Command: command, Args: args}
}

// Names lists the allow-listed actions in lexical order.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.processes))
	for name := range r.processes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns an execution capability running the named command.
// The command succeeds when it exits with status zero; its stdout is discarded.
func (r *Runner) Lookup(name string) (domain.ExecuteFunc, bool) {
	proc, ok := r.processes[name]
	if !ok {
		return nil, false
	}
	return func(ctx context.Context) error {
		return r.run(ctx, proc)
	}, true
}

// Export registers every allow-listed action in reg.
func (r *Runner) Export(reg *registry.Registry) {
	for _, name := range r.Names() {
		fn, _ := r.Lookup(name)
		reg.Register(name, fn)
	}
}

func (r *Runner) run(ctx context.Context, proc ProcessConfig) error {
	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir

	env := []string{"HTN_ACTION=" + proc.Name}
	for k, v := range proc.Environment {
		env = append(env, k+"="+v)
	}
	cmd.Env = append(cmd.Environ(), env...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("action %s: %w: %s", proc.Name, err, msg)
		}
		return fmt.Errorf("action %s: %w", proc.Name, err)
	}
	return nil
}
