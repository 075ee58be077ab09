// Package runner abstracts subprocess execution so installers can be
// tested without touching the host.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/logging"
)

const maxCommandError = 2048

// Opts describes a single command invocation.
type Opts struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string
}

// Result captures the outcome of a command invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes commands.
type Runner interface {
	// Run executes a command, discarding output on success.
	Run(ctx context.Context, name string, args ...string) error

	// Output executes a command and returns trimmed stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)

	// RunWith executes a command with full options.
	RunWith(ctx context.Context, opts Opts) (Result, error)

	// LookPath reports whether a binary is available.
	LookPath(name string) (string, error)
}

type execRunner struct{}

// New returns a Runner backed by os/exec.
func New() Runner {
	return &execRunner{}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) error {
	_, err := r.RunWith(ctx, Opts{Name: name, Args: args})
	return err
}

func (r *execRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	res, err := r.RunWith(ctx, Opts{Name: name, Args: args})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

func (r *execRunner) RunWith(ctx context.Context, opts Opts) (Result, error) {
	logging.LogCommand(opts.Name, opts.Args)

	cmd := exec.CommandContext(ctx, opts.Name, opts.Args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	cmd.Env = os.Environ()
	for key, value := range opts.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		return res, errors.Wrapf(err, errors.ErrCommandRun,
			"%s %s: %s", opts.Name, strings.Join(opts.Args, " "), trimOutput(res.Stderr))
	}
	return res, nil
}

func (r *execRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrNotFound, "%s not found on PATH", name)
	}
	return path, nil
}

func trimOutput(out string) string {
	clean := strings.TrimSpace(out)
	if clean == "" {
		return "command failed"
	}
	if len(clean) > maxCommandError {
		return clean[:maxCommandError] + "..."
	}
	return clean
}
