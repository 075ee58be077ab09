// Package testutil provides shared helpers for outfit's tests.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/runner"
)

// FakeRunner records command invocations and replays scripted results.
type FakeRunner struct {
	mu sync.Mutex

	// Calls holds every invocation in order.
	Calls []runner.Opts

	// Outputs maps a command line ("name arg1 arg2") to stdout.
	Outputs map[string]string

	// Errors maps a command line to an error.
	Errors map[string]error

	// MissingBinaries makes LookPath fail for the listed names.
	MissingBinaries map[string]bool

	// matchErrors errors any call whose command line contains the key.
	matchErrors map[string]error
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Outputs:         make(map[string]string),
		Errors:          make(map[string]error),
		MissingBinaries: make(map[string]bool),
	}
}

func key(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// Stub scripts the stdout for a command line.
func (f *FakeRunner) Stub(cmdline, stdout string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Outputs[cmdline] = stdout
}

// StubError scripts an error for a command line.
func (f *FakeRunner) StubError(cmdline string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[cmdline] = err
}

// StubErrorMatch errors every call whose command line contains substr.
// Useful when invocations embed unpredictable temp paths.
func (f *FakeRunner) StubErrorMatch(substr string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.matchErrors == nil {
		f.matchErrors = make(map[string]error)
	}
	f.matchErrors[substr] = err
}

// Run implements runner.Runner.
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) error {
	_, err := f.RunWith(ctx, runner.Opts{Name: name, Args: args})
	return err
}

// Output implements runner.Runner.
func (f *FakeRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	res, err := f.RunWith(ctx, runner.Opts{Name: name, Args: args})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// RunWith implements runner.Runner.
func (f *FakeRunner) RunWith(ctx context.Context, opts runner.Opts) (runner.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, opts)

	k := key(opts.Name, opts.Args)
	if err, ok := f.Errors[k]; ok {
		return runner.Result{ExitCode: 1, Stderr: err.Error()}, err
	}
	for substr, err := range f.matchErrors {
		if strings.Contains(k, substr) {
			return runner.Result{ExitCode: 1, Stderr: err.Error()}, err
		}
	}
	return runner.Result{Stdout: f.Outputs[k]}, nil
}

// LookPath implements runner.Runner.
func (f *FakeRunner) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.MissingBinaries[name] {
		return "", errors.Newf(errors.ErrNotFound, "%s not found on PATH", name)
	}
	return "/usr/bin/" + name, nil
}

// CalledWith reports whether any recorded call matches the command line.
func (f *FakeRunner) CalledWith(cmdline string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, call := range f.Calls {
		if key(call.Name, call.Args) == cmdline {
			return true
		}
	}
	return false
}

// CallLines returns every recorded call as a command line string.
func (f *FakeRunner) CallLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines := make([]string, 0, len(f.Calls))
	for _, call := range f.Calls {
		lines = append(lines, key(call.Name, call.Args))
	}
	return lines
}

var _ runner.Runner = (*FakeRunner)(nil)
