package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidUserID is returned for an empty user identity.
	ErrInvalidUserID = errors.New("user identity must not be empty")
	// ErrInvalidCurve is returned for a curve outside Curves.
	ErrInvalidCurve = errors.New("unsupported curve")
	// ErrUnsupportedGPG is returned when the installed gpg is too old.
	ErrUnsupportedGPG = errors.New("unsupported gpg version")
	// ErrNotConfirmed is returned when replacing an existing identity was declined.
	ErrNotConfirmed = errors.New("replacing the existing identity was not confirmed")
	// ErrLocked is returned when another session or provisioning run holds
	// the identity directory.
	ErrLocked = errors.New("identity directory is locked by another process")

	// Provisioning error kinds.
	ErrKeyGen    = errors.New("key generation failed")
	ErrImport    = errors.New("certificate import failed")
	ErrTrustEdit = errors.New("trust edit failed")

	// Session launch error kinds.
	ErrAgentStart  = errors.New("signing agent failed to start")
	ErrShellLaunch = errors.New("shell failed to launch")
)

// ProvisionError reports the provisioning step that failed.
type ProvisionError struct {
	Kind   error // ErrKeyGen, ErrImport or ErrTrustEdit
	Status int   // collaborator exit status, 0 when none was observed
	Err    error
}

// NewProvisionError classifies err under kind, keeping the collaborator's
// exit status when one is carried by err.
func NewProvisionError(kind, err error) *ProvisionError {
	return &ProvisionError{Kind: kind, Status: collaboratorStatus(err), Err: err}
}

func (e *ProvisionError) Error() string { return formatStepError(e.Kind, e.Status, e.Err) }

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *ProvisionError) Unwrap() []error { return []error{e.Kind, e.Err} }

// ExitStatus returns the status the process should exit with.
func (e *ProvisionError) ExitStatus() int { return nonZero(e.Status) }

// LaunchError reports why a session could not be run.
type LaunchError struct {
	Kind   error // ErrAgentStart or ErrShellLaunch
	Status int
	Err    error
}

// NewLaunchError classifies err under kind.
func NewLaunchError(kind, err error) *LaunchError {
	return &LaunchError{Kind: kind, Status: collaboratorStatus(err), Err: err}
}

func (e *LaunchError) Error() string { return formatStepError(e.Kind, e.Status, e.Err) }

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *LaunchError) Unwrap() []error { return []error{e.Kind, e.Err} }

// ExitStatus returns the status the process should exit with.
func (e *LaunchError) ExitStatus() int { return nonZero(e.Status) }

// exitStatuser is implemented by errors that know which exit status the
// process should report.
type exitStatuser interface {
	ExitStatus() int
}

// ExitStatus returns the exit status carried by err, 1 if err carries none
// and 0 for a nil error.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var es exitStatuser
	if errors.As(err, &es) {
		return nonZero(es.ExitStatus())
	}
	return 1
}

func collaboratorStatus(err error) int {
	var es exitStatuser
	if errors.As(err, &es) {
		return es.ExitStatus()
	}
	return 0
}

func nonZero(status int) int {
	if status <= 0 {
		return 1
	}
	return status
}

func formatStepError(kind error, status int, cause error) string {
	var b strings.Builder
	b.WriteString(kind.Error())
	switch {
	case cause != nil:
		b.WriteString(": ")
		b.WriteString(cause.Error())
	case status > 0:
		fmt.Fprintf(&b, " (exit status %d)", status)
	}
	return b.String()
}

// ParseCurve validates a curve name.
func ParseCurve(name string) (Curve, error) {
	c := Curve(strings.ToLower(strings.TrimSpace(name)))
	if !c.Valid() {
		return "", fmt.Errorf("%w %q (want one of %v)", ErrInvalidCurve, name, CurveNames())
	}
	return c, nil
}

// CurveNames returns the supported curve names.
func CurveNames() []string {
	names := make([]string, 0, len(Curves))
	for _, c := range Curves {
		names = append(names, c.String())
	}
	return names
}
