package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/safedep/dry/log"
)

// Command is a process to spawn.
type Command struct {
	Exe  string
	Args []string

	// Dir is the working directory of the process. Empty means the
	// working directory of the current process.
	Dir string

	// Env is appended to the environment of the current process.
	Env []string
}

// String renders the command line for logs and reports.
func (c Command) String() string {
	return strings.TrimSpace(c.Exe + " " + strings.Join(c.Args, " "))
}

// Result is the outcome of a process that was started and waited for.
type Result struct {
	ExitCode int
}

// Success reports whether the process exited with status zero.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// CommandRunner is the contract for spawning external processes.
//
// A process that ran and exited with a non-zero status is not an error: Run
// returns a Result carrying the exit code and a nil error. An error is returned
// only when the process could not be started (ErrSpawnFailed) or waiting for
// it failed.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

type ExecRunnerConfig struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultExecRunnerConfig inherits the standard streams of the current process.
func DefaultExecRunnerConfig() ExecRunnerConfig {
	return ExecRunnerConfig{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

type execRunner struct {
	config ExecRunnerConfig
}

var _ CommandRunner = (*execRunner)(nil)

func NewExecRunner(config ExecRunnerConfig) (*execRunner, error) {
	return &execRunner{
		config: config,
	}, nil
}

// Run spawns the command and blocks until it exits. There is no timeout: a
// hung child blocks the caller until ctx is cancelled, at which point the child
// is interrupted and Run still waits for it to exit.
func (r *execRunner) Run(ctx context.Context, c Command) (*Result, error) {
	if len(c.Exe) == 0 {
		return nil, ErrSpawnFailed.Wrap(fmt.Errorf("no command to execute"))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.Exe, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = r.config.Stdin
	cmd.Stdout = r.config.Stdout
	cmd.Stderr = r.config.Stderr
	cmd.Cancel = func() error {
		return platformInterruptProcess(cmd)
	}

	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	log.Debugf("Executing command: %s (dir: %s)", c.String(), c.Dir)

	if err := cmd.Start(); err != nil {
		return nil, ErrSpawnFailed.Wrap(fmt.Errorf("%s: %w", c.Exe, err))
	}

	err := cmd.Wait()
	if err == nil {
		return &Result{ExitCode: 0}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode := exitErr.ExitCode()

		// Terminated by a signal
		if exitCode < 0 {
			exitCode = 1
		}

		log.Debugf("Command %s exited with code %d", c.Exe, exitCode)
		return &Result{ExitCode: exitCode}, nil
	}

	return nil, fmt.Errorf("failed to wait for %s: %w", c.Exe, err)
}
