package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"hwgpg/internal/domain"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("exit status %d", int(e)) }
func (e statusErr) ExitStatus() int { return int(e) }

func TestProvisionError_MatchesKindAndCause(t *testing.T) {
	cause := fmt.Errorf("trezor-gpg: %w", statusErr(3))
	err := fmt.Errorf("provisioning: %w", domain.NewProvisionError(domain.ErrKeyGen, cause))

	require.ErrorIs(t, err, domain.ErrKeyGen)
	require.NotErrorIs(t, err, domain.ErrImport)

	var se statusErr
	require.ErrorAs(t, err, &se)
	require.Equal(t, 3, domain.ExitStatus(err))
}

func TestLaunchError_WithoutStatus_ExitsOne(t *testing.T) {
	err := domain.NewLaunchError(domain.ErrAgentStart, errors.New("no such file"))

	require.ErrorIs(t, err, domain.ErrAgentStart)
	require.Equal(t, 1, domain.ExitStatus(err))
	require.Equal(t, "signing agent failed to start: no such file", err.Error())
}

func TestExitStatus_PlainErrors(t *testing.T) {
	require.Equal(t, 0, domain.ExitStatus(nil))
	require.Equal(t, 1, domain.ExitStatus(errors.New("boom")))
}

func TestParseCurve(t *testing.T) {
	c, err := domain.ParseCurve(" Ed25519 ")
	require.NoError(t, err)
	require.Equal(t, domain.CurveEd25519, c)

	_, err = domain.ParseCurve("secp256k1")
	require.ErrorIs(t, err, domain.ErrInvalidCurve)
}

func TestSessionState_String(t *testing.T) {
	require.Equal(t, "shell-running", domain.StateShellRunning.String())
	require.Equal(t, "unknown", domain.SessionState(42).String())
}
