package interfaces

import (
	"context"
	"time"

	domaintypes "hwgpg/internal/domain/types"
)

// KeyGenerator creates a hardware-backed key and returns its armored
// public certificate.
type KeyGenerator interface {
	Create(
		ctx context.Context,
		user domaintypes.UserID,
		curve domaintypes.Curve,
		created time.Time,
	) ([]byte, error)
}

// Keyring is the local GPG keyring rooted at the identity directory.
type Keyring interface {
	CheckVersion(ctx context.Context) error
	Import(ctx context.Context, certificatePath string) error
	// EditTrust hands the terminal to gpg's interactive trust editor.
	EditTrust(ctx context.Context, user domaintypes.UserID) error
	ListKeys(ctx context.Context) ([]domaintypes.KeyRecord, error)
	// AgentSocket returns the socket path agents bind for this keyring.
	AgentSocket(ctx context.Context) (string, error)
}

// AgentProcess is the handle of a background signing agent.
type AgentProcess interface {
	PID() int
	// Done is closed once the process has exited and been reaped.
	Done() <-chan struct{}
	// Err returns the wait error after Done is closed.
	Err() error
	// Stop terminates the agent, escalating after grace. Stopping an
	// agent that already exited is not an error.
	Stop(ctx context.Context, grace time.Duration) error
}

// AgentRunner starts signing agents bound to the identity directory.
type AgentRunner interface {
	Start(ctx context.Context) (AgentProcess, error)
}

// ProcessTable finds and terminates processes by name.
type ProcessTable interface {
	FindByName(name string) ([]int, error)
	Terminate(ctx context.Context, pid int, grace time.Duration) error
}

// ReadinessProbe performs one readiness check against an agent socket.
type ReadinessProbe interface {
	Probe(ctx context.Context, socketPath string) error
}

// ShellRunner runs the interactive shell to completion.
type ShellRunner interface {
	Run(ctx context.Context, env []string) (exitStatus int, err error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}
