// Package command runs external collaborators (gpg, gpgconf, trezor-gpg) to
// completion and reports their exit status.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const (
	// maxStderrBytes is at most how many trailing stderr bytes are kept for
	// error messages.
	maxStderrBytes = 4096
	// waitDelay bounds how long a canceled command may take to exit after
	// SIGTERM before it is killed.
	waitDelay = 5 * time.Second
)

// ExitError is returned when a command ran but exited unsuccessfully.
type ExitError struct {
	Path   string
	Status int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", filepath.Base(e.Path), e.Status)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// ExitStatus returns the command's exit status.
func (e *ExitError) ExitStatus() int { return e.Status }

type config struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	env    []string
}

// Option configures a command.
type Option func(*config)

// WithStdin connects the command's stdin to r.
func WithStdin(r io.Reader) Option { return func(c *config) { c.stdin = r } }

// WithStdout sends the command's stdout to w.
func WithStdout(w io.Writer) Option { return func(c *config) { c.stdout = w } }

// WithStderr sends the command's stderr to w instead of the process stderr.
func WithStderr(w io.Writer) Option { return func(c *config) { c.stderr = w } }

// WithEnv appends variables to the inherited environment.
func WithEnv(env ...string) Option { return func(c *config) { c.env = append(c.env, env...) } }

// WithTerminal hands the process's own stdio to the command, for
// collaborators that run an interactive text UI.
func WithTerminal() Option {
	return func(c *config) {
		c.stdin = os.Stdin
		c.stdout = os.Stdout
		c.stderr = os.Stderr
	}
}

// Run executes nameAndArgs and waits for it. Unless redirected, stderr is
// passed through to the process stderr; its tail is kept for the error.
func Run(ctx context.Context, logger logrus.FieldLogger, nameAndArgs []string, opts ...Option) error {
	if len(nameAndArgs) == 0 {
		panic("command spawned without name")
	}

	cfg := config{stderr: os.Stderr}
	for _, opt := range opts {
		opt(&cfg)
	}

	cmd := exec.CommandContext(ctx, nameAndArgs[0], nameAndArgs[1:]...)
	cmd.Stdin = cfg.stdin
	cmd.Stdout = cfg.stdout
	tail := &tailBuffer{max: maxStderrBytes}
	cmd.Stderr = io.MultiWriter(cfg.stderr, tail)
	if len(cfg.env) > 0 {
		cmd.Env = append(os.Environ(), cfg.env...)
	}
	cmd.Cancel = func() error { return cmd.Process.Signal(unix.SIGTERM) }
	cmd.WaitDelay = waitDelay

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", nameAndArgs[0], err)
	}
	entry := logger.WithFields(logrus.Fields{
		"pid":  cmd.Process.Pid,
		"path": nameAndArgs[0],
		"args": nameAndArgs[1:],
	})
	entry.Debug("spawn")

	err := cmd.Wait()
	entry.WithFields(logrus.Fields{
		"duration": time.Since(start).Round(time.Millisecond).String(),
		"status":   cmd.ProcessState.ExitCode(),
	}).Debug("exited")

	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", filepath.Base(nameAndArgs[0]), ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{
			Path:   nameAndArgs[0],
			Status: Status(exitErr.ProcessState),
			Stderr: tail.String(),
		}
	}
	return err
}

// Output runs the command like Run and returns its stdout.
func Output(ctx context.Context, logger logrus.FieldLogger, nameAndArgs []string, opts ...Option) ([]byte, error) {
	var stdout bytes.Buffer
	opts = append(opts, WithStdout(&stdout))
	if err := Run(ctx, logger, nameAndArgs, opts...); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Status converts a process state into a shell-style exit status: the exit
// code, or 128 plus the signal number for a signaled process.
func Status(ps *os.ProcessState) int {
	if ps == nil {
		return -1
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return ps.ExitCode()
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return strings.TrimSpace(string(t.buf))
}
