// Package shell runs the user's interactive shell inside a session.
//
// The shell shares the terminal and the foreground process group with
// hwgpg, so terminal-generated signals (Ctrl-C, Ctrl-Z) reach it directly.
// When the session is torn down from outside, the shell receives SIGHUP,
// which interactive shells honour even though they ignore SIGTERM.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"hwgpg/internal/command"
	"hwgpg/internal/domain"
)

// Fallback is used when neither the configuration nor $SHELL names a shell.
const Fallback = "/bin/sh"

// Resolve picks the shell to run: configured, then $SHELL, then Fallback.
func Resolve(configured string) string {
	if s := strings.TrimSpace(configured); s != "" {
		return s
	}
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	return Fallback
}

// Environ returns base with GNUPGHOME set to home and, when tty is not
// empty, GPG_TTY set to tty. Existing values of both are replaced.
func Environ(base []string, home, tty string) []string {
	env := make([]string, 0, len(base)+2)
	for _, kv := range base {
		if strings.HasPrefix(kv, "GNUPGHOME=") || (tty != "" && strings.HasPrefix(kv, "GPG_TTY=")) {
			continue
		}
		env = append(env, kv)
	}
	env = append(env, "GNUPGHOME="+home)
	if tty != "" {
		env = append(env, "GPG_TTY="+tty)
	}
	return env
}

// TTYName returns the terminal device behind f, or "" when f is not a
// terminal.
func TTYName(f *os.File) string {
	if !term.IsTerminal(int(f.Fd())) {
		return ""
	}
	name, err := os.Readlink(fmt.Sprintf("/proc/self/fd/%d", f.Fd()))
	if err != nil || !strings.HasPrefix(name, "/dev/") {
		return ""
	}
	return name
}

// Runner runs a shell attached to the process's stdio.
type Runner struct {
	Path string
	// Grace is how long the shell may take to exit after SIGHUP before it
	// is killed.
	Grace time.Duration

	log logrus.FieldLogger
}

// NewRunner returns a Runner for the shell at path.
func NewRunner(path string, grace time.Duration, logger logrus.FieldLogger) *Runner {
	return &Runner{Path: path, Grace: grace, log: logger.WithField("component", "shell")}
}

// Run starts the shell with env and waits for it. The returned status is the
// shell's exit code, or 128 plus the signal number when it was killed by a
// signal. An error is returned only when the shell could not be started.
func (r *Runner) Run(ctx context.Context, env []string) (int, error) {
	cmd := exec.CommandContext(ctx, r.Path)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Cancel = func() error { return cmd.Process.Signal(unix.SIGHUP) }
	cmd.WaitDelay = r.Grace

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting %s: %w", r.Path, err)
	}
	entry := r.log.WithFields(logrus.Fields{"pid": cmd.Process.Pid, "path": r.Path})
	entry.Debug("spawn")

	err := cmd.Wait()
	status := command.Status(cmd.ProcessState)
	entry.WithField("status", status).Debug("exited")

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) && cmd.ProcessState == nil {
		return 0, fmt.Errorf("waiting for %s: %w", r.Path, err)
	}
	return status, nil
}

// Compile-time assertion that Runner implements domain.ShellRunner.
var _ domain.ShellRunner = (*Runner)(nil)
