/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/deployctl/pkg/defaults"
	apperrors "github.com/NVIDIA/deployctl/pkg/errors"
)

// Spec describes a single external command invocation. Environment
// values are mapped explicitly per invocation; the child never inherits
// ad hoc global mutations.
type Spec struct {
	// Name is the binary to invoke (resolved via PATH).
	Name string
	// Args are the command arguments.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds additional environment variables for the child, appended
	// to the parent environment.
	Env map[string]string
	// Stdin optionally feeds the child's standard input (e.g., rendered
	// manifests piped to kubectl apply -f -).
	Stdin io.Reader
	// Timeout bounds the invocation. Zero means no per-command timeout
	// beyond the caller's context.
	Timeout time.Duration
}

// Result captures the outcome of one invocation for diagnostics.
type Result struct {
	Command  string        `json:"command" yaml:"command"`
	ExitCode int           `json:"exitCode" yaml:"exitCode"`
	Stdout   string        `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr   string        `json:"stderr,omitempty" yaml:"stderr,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Invoker executes external commands. It is an interface so pipeline
// steps can be tested against a stub.
type Invoker interface {
	Run(ctx context.Context, spec Spec) (*Result, error)
}

// Runner executes external binaries as child processes. Children run in
// their own process group; cancellation kills the whole group so no
// orphaned builds or applies survive an interrupt.
type Runner struct {
	// Echo, when non-nil, receives the child's combined output as it
	// streams (operator-facing progress). Output is always captured for
	// diagnostics regardless.
	Echo io.Writer
}

// New creates a Runner that streams child output to stderr.
func New() *Runner {
	return &Runner{Echo: os.Stderr}
}

// NewQuiet creates a Runner that only captures output.
func NewQuiet() *Runner {
	return &Runner{}
}

// Run executes the command described by spec. A non-zero exit is never
// swallowed: it returns the Result alongside a STEP_FAILED error carrying
// the captured output.
func (r *Runner) Run(ctx context.Context, spec Spec) (*Result, error) {
	if spec.Name == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "command name is required")
	}

	runCtx := ctx
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Stdin = spec.Stdin
	cmd.Env = scopedEnv(spec.Env)

	// Place the child in its own process group and take the whole group
	// down on cancellation, including any grandchildren the tool spawns.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = defaults.CommandWaitDelay

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to open stdout pipe", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to open stderr pipe", err)
	}

	commandLine := commandString(spec)
	slog.Debug("running command", "command", commandLine, "dir", spec.Dir)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeStepFailed,
			"failed to start command", err,
			map[string]any{"command": commandLine})
	}

	var stdout, stderr bytes.Buffer
	g := new(errgroup.Group)
	g.Go(func() error {
		_, err := io.Copy(r.sink(&stdout), stdoutPipe)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(r.sink(&stderr), stderrPipe)
		return err
	})
	streamErr := g.Wait()
	waitErr := cmd.Wait()

	result := &Result{
		Command:  commandLine,
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if waitErr != nil {
		msg := fmt.Sprintf("command %q failed", commandLine)
		if runCtx.Err() != nil {
			return result, apperrors.WrapWithContext(apperrors.ErrCodeTimeout,
				msg, runCtx.Err(),
				map[string]any{"command": commandLine, "stderr": tail(result.Stderr)})
		}
		return result, apperrors.WrapWithContext(apperrors.ErrCodeStepFailed,
			msg, waitErr,
			map[string]any{
				"command":   commandLine,
				"exit_code": result.ExitCode,
				"stderr":    tail(result.Stderr),
			})
	}
	if streamErr != nil {
		return result, apperrors.Wrap(apperrors.ErrCodeInternal,
			"failed to capture command output", streamErr)
	}

	slog.Debug("command completed",
		"command", commandLine,
		"duration_ms", result.Duration.Milliseconds())
	return result, nil
}

func (r *Runner) sink(buf *bytes.Buffer) io.Writer {
	if r.Echo != nil {
		return io.MultiWriter(buf, r.Echo)
	}
	return buf
}

// scopedEnv maps the spec's environment on top of the parent environment.
func scopedEnv(extra map[string]string) []string {
	env := os.Environ()
	for k, v := range extra {
		env = append(env, k+"="+v)
	}
	return env
}

func commandString(spec Spec) string {
	if len(spec.Args) == 0 {
		return spec.Name
	}
	return spec.Name + " " + strings.Join(spec.Args, " ")
}

// tail returns the last few lines of s for compact error context.
func tail(s string) string {
	const maxLines = 10
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}
