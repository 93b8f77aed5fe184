package app

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"hwgpg/internal/agent"
	"hwgpg/internal/domain"
	"hwgpg/internal/gpg"
	"hwgpg/internal/lock"
	"hwgpg/internal/procs"
	"hwgpg/internal/protocol/assuan"
	identitysvc "hwgpg/internal/services/identity"
	sessionsvc "hwgpg/internal/services/session"
	"hwgpg/internal/shell"
	"hwgpg/internal/store"
	"hwgpg/internal/trezor"
)

// Wire bundles all collaborators and services for the CLI.
type Wire struct {
	Store    domain.IdentityStore
	Keyring  domain.Keyring
	Identity domain.IdentityService
	Sessions domain.SessionService
}

// Options carries what the CLI knows beyond Config.
type Options struct {
	// Verbosity is the -v count, passed on to trezor-gpg.
	Verbosity int
	Confirmer domain.Confirmer
	// Output receives user-facing text such as the key listing.
	Output io.Writer
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, logger *logrus.Logger, opts Options) (*Wire, error) {
	// File-based store and lock for the identity directory
	identityStore := store.NewIdentityFileStore(cfg.Home)
	identityLock := lock.New(cfg.Home)

	keyring := gpg.New(gpg.Config{
		Binary:     cfg.GPG.Binary,
		Gpgconf:    cfg.GPG.Gpgconf,
		Home:       cfg.Home,
		MinVersion: cfg.GPG.MinVersion,
	}, logger)

	bridge := trezor.Config{Binary: cfg.Trezor.Binary, Verbosity: opts.Verbosity}
	agents := agent.NewRunner(agent.Config{
		Command: bridge.AgentCommand(),
		Home:    cfg.Home,
		Output:  logger.WriterLevel(logrus.DebugLevel),
	}, logger)

	processes, err := procs.New("", logger)
	if err != nil {
		return nil, err
	}

	sessionSvc := sessionsvc.New(sessionsvc.Deps{
		Store:     identityStore,
		Lock:      identityLock,
		Keyring:   keyring,
		Processes: processes,
		Agents:    agents,
		Probe:     assuan.NewProber(),
		Shell:     shell.NewRunner(shell.Resolve(cfg.Shell), cfg.Agent.StopGrace, logger),
		Signals:   sessionsvc.OSSignals{},
		Environ:   os.Environ(),
		Output:    opts.Output,
		Logger:    logger,
	}, sessionsvc.Options{
		AgentProcessName: cfg.Agent.ProcessName,
		Probe:            cfg.Agent.Probe,
		ReadyTimeout:     cfg.Agent.ReadyTimeout,
		StartupDelay:     cfg.Agent.StartupDelay,
		StopGrace:        cfg.Agent.StopGrace,
		LockTimeout:      cfg.LockTimeout,
		TTY:              shell.TTYName(os.Stdin),
	})

	identitySvc := identitysvc.New(identitysvc.Deps{
		Store:     identityStore,
		Lock:      identityLock,
		KeyGen:    trezor.NewKeyGenerator(bridge, logger),
		Keyring:   keyring,
		Confirmer: opts.Confirmer,
		Sessions:  sessionSvc,
		Logger:    logger,
	}, cfg.LockTimeout)

	return &Wire{
		Store:    identityStore,
		Keyring:  keyring,
		Identity: identitySvc,
		Sessions: sessionSvc,
	}, nil
}
