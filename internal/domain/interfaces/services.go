package interfaces

import (
	"context"

	domaintypes "hwgpg/internal/domain/types"
)

// IdentityService provisions a hardware-backed identity and opens a
// verification session on success.
type IdentityService interface {
	Provision(ctx context.Context, req domaintypes.ProvisionRequest) (exitStatus int, err error)
}

// SessionService runs an interactive shell against a freshly started agent.
type SessionService interface {
	Launch(ctx context.Context) (exitStatus int, err error)
}
