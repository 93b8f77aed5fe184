package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"hwgpg/internal/backoff"
	"hwgpg/internal/crypto"
	"hwgpg/internal/domain"
	"hwgpg/internal/shell"
)

// ErrNotReady is the cause reported when the agent did not answer within
// the ready timeout.
var ErrNotReady = errors.New("agent did not become ready in time")

// Options tune a session.
type Options struct {
	// AgentProcessName identifies running agents to terminate before start.
	AgentProcessName string
	// Probe enables the socket readiness probe; otherwise StartupDelay is
	// slept instead.
	Probe        bool
	ReadyTimeout time.Duration
	StartupDelay time.Duration
	// StopGrace is how long agents get between SIGTERM and SIGKILL.
	StopGrace   time.Duration
	LockTimeout time.Duration
	// TTY is exported to the shell as GPG_TTY when set.
	TTY string
	// OnState observes every state transition.
	OnState func(domain.SessionState)
}

// Deps are the collaborators of a session.
type Deps struct {
	Store     domain.IdentityStore
	Lock      domain.Locker
	Keyring   domain.Keyring
	Processes domain.ProcessTable
	Agents    domain.AgentRunner
	Probe     domain.ReadinessProbe
	Shell     domain.ShellRunner
	Signals   SignalSource
	// Environ is the environment the shell starts from.
	Environ []string
	// Output receives the key listing shown before the shell starts.
	Output io.Writer
	Logger logrus.FieldLogger
}

// Service launches sessions.
type Service struct {
	deps    Deps
	opts    Options
	backoff backoff.Strategy
	log     logrus.FieldLogger
}

// New returns a session Service.
func New(deps Deps, opts Options) *Service {
	if deps.Signals == nil {
		deps.Signals = OSSignals{}
	}
	if deps.Output == nil {
		deps.Output = io.Discard
	}
	return &Service{
		deps:    deps,
		opts:    opts,
		backoff: backoff.NewReadinessExponential(rand.New(rand.NewSource(time.Now().UnixNano()))),
		log:     deps.Logger.WithField("component", "session"),
	}
}

// Launch runs one session and returns the shell's exit status.
//
// Errors before the shell runs are LaunchErrors of kind ErrAgentStart; a
// shell that cannot be started yields ErrShellLaunch. Once an agent has
// been started it is stopped on every return path, including panics.
func (s *Service) Launch(ctx context.Context) (int, error) {
	s.setState(domain.StateIdle)
	defer s.setState(domain.StateTerminated)

	if err := s.deps.Lock.Acquire(ctx, s.opts.LockTimeout); err != nil {
		return 0, domain.NewLaunchError(domain.ErrAgentStart, err)
	}
	defer func() {
		if err := s.deps.Lock.Release(); err != nil {
			s.log.WithError(err).Warn("releasing identity lock")
		}
	}()

	ctx, cancel := context.WithCancelCause(ctx)
	var shellRunning atomic.Bool
	stopWatch := s.watchSignals(ctx, cancel, &shellRunning)
	defer stopWatch()

	s.showIdentity(ctx)

	if err := s.terminateStale(ctx); err != nil {
		return 0, domain.NewLaunchError(domain.ErrAgentStart, err)
	}

	s.setState(domain.StateAgentStarting)
	proc, err := s.deps.Agents.Start(ctx)
	if err != nil {
		return 0, domain.NewLaunchError(domain.ErrAgentStart, causeOr(ctx, err))
	}
	defer s.stopAgent(context.WithoutCancel(ctx), proc)

	if err := s.waitReady(ctx, proc); err != nil {
		return 0, domain.NewLaunchError(domain.ErrAgentStart, err)
	}
	s.setState(domain.StateAgentReady)

	if ctx.Err() != nil {
		return 0, domain.NewLaunchError(domain.ErrAgentStart, context.Cause(ctx))
	}

	env := shell.Environ(s.deps.Environ, s.deps.Store.Dir(), s.opts.TTY)
	shellRunning.Store(true)
	s.setState(domain.StateShellRunning)
	status, err := s.deps.Shell.Run(ctx, env)
	shellRunning.Store(false)
	if err != nil {
		return 0, domain.NewLaunchError(domain.ErrShellLaunch, causeOr(ctx, err))
	}

	entry := s.log.WithField("status", status)
	if cause := context.Cause(ctx); cause != nil {
		entry = entry.WithField("cause", cause.Error())
	}
	entry.Info("shell exited")
	return status, nil
}

// watchSignals cancels ctx with a SignalError for every intercepted signal,
// except SIGINT while the shell runs. The returned func stops watching and
// waits for the watcher to exit.
func (s *Service) watchSignals(
	ctx context.Context,
	cancel context.CancelCauseFunc,
	shellRunning *atomic.Bool,
) func() {
	sigs := make(chan os.Signal, 1)
	s.deps.Signals.Notify(sigs)
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case sig := <-sigs:
				if sig == unix.SIGINT && shellRunning.Load() {
					s.log.Debug("SIGINT left to the shell")
					continue
				}
				s.log.WithField("signal", sig.String()).Info("signal received, ending session")
				cancel(&SignalError{Signal: sig})
			case <-quit:
				return
			}
		}
	}()

	return func() {
		close(quit)
		<-done
		s.deps.Signals.Stop(sigs)
		cancel(nil)
	}
}

// showIdentity prints the manifest identity and the keyring contents.
// Nothing here is fatal.
func (s *Service) showIdentity(ctx context.Context) {
	out := s.deps.Output

	if m, ok, err := s.deps.Store.LoadManifest(); err != nil {
		s.log.WithError(err).Warn("reading identity manifest")
	} else if ok {
		fmt.Fprintf(out, "identity: %s (%s, %s)\n", m.UserID, m.Fingerprint.Short(), m.Curve)
		s.checkCertificate(m)
	}

	keys, err := s.deps.Keyring.ListKeys(ctx)
	switch {
	case err != nil:
		s.log.WithError(err).Warn("listing keys")
	case len(keys) == 0:
		s.log.WithField("home", s.deps.Store.Dir()).Warn("keyring is empty, run `hwgpg init` first")
	default:
		for _, k := range keys {
			for _, uid := range k.UserIDs {
				fmt.Fprintf(out, "key %s %s %s\n", k.KeyID, k.Algorithm, uid)
			}
		}
	}
}

func (s *Service) checkCertificate(m domain.Manifest) {
	armored, ok, err := s.deps.Store.LoadCertificate()
	if err != nil || !ok {
		s.log.WithError(err).Warn("identity certificate is missing")
		return
	}
	if crypto.Digest(armored) != m.CertificateDigest {
		s.log.Warn("identity certificate does not match the manifest, re-run `hwgpg init`")
	}
}

// terminateStale stops agents left behind by other or crashed sessions.
func (s *Service) terminateStale(ctx context.Context) error {
	if s.opts.AgentProcessName == "" {
		return nil
	}
	pids, err := s.deps.Processes.FindByName(s.opts.AgentProcessName)
	if err != nil {
		return err
	}
	for _, pid := range pids {
		s.log.WithField("pid", pid).Info("terminating running agent")
		if err := s.deps.Processes.Terminate(ctx, pid, s.opts.StopGrace); err != nil {
			return causeOr(ctx, err)
		}
	}
	return nil
}

// waitReady blocks until the agent is usable, it exits, the ready timeout
// elapses or ctx is canceled.
func (s *Service) waitReady(ctx context.Context, proc domain.AgentProcess) error {
	if !s.opts.Probe {
		timer := time.NewTimer(s.opts.StartupDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-proc.Done():
			return agentExited(proc)
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}

	readyCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	readyCtx, cancelTimeout := context.WithTimeoutCause(readyCtx, s.opts.ReadyTimeout, ErrNotReady)
	defer cancelTimeout()

	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		select {
		case <-proc.Done():
			cancel(agentExited(proc))
		case <-readyCtx.Done():
		}
	}()
	defer func() {
		cancelTimeout()
		<-watchDone
	}()

	socket, err := s.deps.Keyring.AgentSocket(readyCtx)
	if err != nil {
		return causeOr(readyCtx, err)
	}
	s.log.WithField("socket", socket).Debug("waiting for agent")

	err = backoff.Retry(readyCtx, s.backoff, func(ctx context.Context) error {
		return s.deps.Probe.Probe(ctx, socket)
	})
	if err != nil {
		return fmt.Errorf("%w (last probe: %v)", context.Cause(readyCtx), err)
	}
	return nil
}

// stopAgent runs the cleanup step.
func (s *Service) stopAgent(ctx context.Context, proc domain.AgentProcess) {
	s.setState(domain.StateCleanup)
	if err := proc.Stop(ctx, s.opts.StopGrace); err != nil {
		s.log.WithError(err).WithField("pid", proc.PID()).Error("stopping signing agent")
		return
	}
	s.log.WithField("pid", proc.PID()).Info("signing agent stopped")
}

func (s *Service) setState(st domain.SessionState) {
	s.log.WithField("state", st.String()).Debug("session state")
	if s.opts.OnState != nil {
		s.opts.OnState(st)
	}
}

func agentExited(proc domain.AgentProcess) error {
	if err := proc.Err(); err != nil {
		return fmt.Errorf("agent exited during startup: %w", err)
	}
	return errors.New("agent exited during startup")
}

// causeOr prefers the cancellation cause of ctx over err, so that a signal
// is reported instead of the error it provoked.
func causeOr(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); cause != nil {
		return cause
	}
	return err
}

// Compile-time assertion that Service implements domain.SessionService.
var _ domain.SessionService = (*Service)(nil)
