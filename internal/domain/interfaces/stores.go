package interfaces

import (
	"context"
	"time"

	domaintypes "hwgpg/internal/domain/types"
)

// IdentityStore owns the identity directory on disk.
type IdentityStore interface {
	// Dir returns the identity directory path.
	Dir() string
	// Exists reports whether the directory exists and holds any entries.
	Exists() (bool, error)
	// Recreate removes the directory with all contents and creates it empty
	// with owner-only permissions.
	Recreate() error

	SaveCertificate(armored []byte) (path string, err error)
	LoadCertificate() (armored []byte, ok bool, err error)

	SaveManifest(m domaintypes.Manifest) error
	LoadManifest() (domaintypes.Manifest, bool, error)
}

// Locker is a single-writer advisory lock scoped to the identity directory.
type Locker interface {
	Acquire(ctx context.Context, timeout time.Duration) error
	Release() error
}
