// Package agent starts and stops the background signing agent.
//
// The agent runs in its own process group so that stopping it also reaches
// any helper processes it spawned. Stop is idempotent: once the agent has
// exited and been reaped, stopping it again is a no-op.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"hwgpg/internal/domain"
)

// Config describes how to start the agent.
type Config struct {
	// Command is the agent's argv, e.g. ["trezor-gpg", "agent"].
	Command []string
	// Home is exported to the agent as GNUPGHOME.
	Home string
	// Output receives the agent's stdout and stderr; discarded when nil.
	Output io.Writer
}

// Runner starts agents from Config.
type Runner struct {
	cfg Config
	log logrus.FieldLogger
}

// NewRunner returns a Runner for cfg.
func NewRunner(cfg Config, logger logrus.FieldLogger) *Runner {
	return &Runner{cfg: cfg, log: logger.WithField("component", "agent")}
}

// Start launches the agent in the background. The agent is not tied to ctx:
// it runs until Stop is called or it exits by itself.
func (r *Runner) Start(ctx context.Context) (domain.AgentProcess, error) {
	if len(r.cfg.Command) == 0 {
		return nil, errors.New("agent command is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(r.cfg.Command[0], r.cfg.Command[1:]...)
	cmd.Env = append(os.Environ(), "GNUPGHOME="+r.cfg.Home)
	cmd.Stdout = r.cfg.Output
	cmd.Stderr = r.cfg.Output
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	// Helpers that inherit the output pipe must not stall the reaper.
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", r.cfg.Command[0], err)
	}

	p := &Process{
		cmd:  cmd,
		done: make(chan struct{}),
		log:  r.log.WithField("pid", cmd.Process.Pid),
	}
	go p.wait()

	p.log.WithField("args", r.cfg.Command).Info("signing agent started")
	return p, nil
}

// Process is a running agent.
type Process struct {
	cmd     *exec.Cmd
	done    chan struct{}
	waitErr error
	log     logrus.FieldLogger
}

func (p *Process) wait() {
	p.waitErr = p.cmd.Wait()
	close(p.done)
}

// PID returns the agent's process id, which is also its process group id.
func (p *Process) PID() int { return p.cmd.Process.Pid }

// Done is closed once the agent has exited.
func (p *Process) Done() <-chan struct{} { return p.done }

// Err returns the agent's wait error; valid after Done is closed.
func (p *Process) Err() error {
	select {
	case <-p.done:
		return p.waitErr
	default:
		return nil
	}
}

// Stop sends SIGTERM to the agent's process group and escalates to SIGKILL
// when the agent is still running after grace. It returns once the agent
// has been reaped or ctx is done.
func (p *Process) Stop(ctx context.Context, grace time.Duration) error {
	select {
	case <-p.done:
		p.log.Debug("signing agent already exited")
		return nil
	default:
	}

	if err := p.signal(unix.SIGTERM); err != nil {
		return err
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-p.done:
		p.log.Info("signing agent stopped")
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}

	p.log.WithField("grace", grace.String()).Warn("signing agent ignored SIGTERM, killing it")
	if err := p.signal(unix.SIGKILL); err != nil {
		return err
	}
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for signing agent %d: %w", p.PID(), ctx.Err())
	}
}

// signal delivers sig to the agent's process group. A group that is already
// gone is not an error.
func (p *Process) signal(sig unix.Signal) error {
	err := unix.Kill(-p.PID(), sig)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("signaling signing agent %d: %w", p.PID(), err)
	}
	return nil
}

// Compile-time assertions that Runner and Process implement the domain contracts.
var (
	_ domain.AgentRunner  = (*Runner)(nil)
	_ domain.AgentProcess = (*Process)(nil)
)
