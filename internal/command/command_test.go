package command_test

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hwgpg/internal/command"
	"hwgpg/internal/domain"
	"hwgpg/internal/log"
)

func TestOutput_CapturesStdout(t *testing.T) {
	out, err := command.Output(context.Background(), log.Discard(),
		[]string{"sh", "-c", `printf '%s' "$HWGPG_TEST_VALUE"`},
		command.WithEnv("HWGPG_TEST_VALUE=hello"),
	)
	require.NoError(t, err)
	require.Equal(t, "hello", string(out))
}

func TestRun_NonZeroExit_ReturnsExitError(t *testing.T) {
	var stderr bytes.Buffer
	err := command.Run(context.Background(), log.Discard(),
		[]string{"sh", "-c", "echo 'device not found' >&2; exit 3"},
		command.WithStderr(&stderr),
	)

	var exitErr *command.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 3, exitErr.Status)
	require.Equal(t, "device not found", exitErr.Stderr)
	require.Equal(t, 3, domain.ExitStatus(err))
	require.Equal(t, "device not found\n", stderr.String())
}

func TestRun_Signaled_MapsTo128PlusSignal(t *testing.T) {
	err := command.Run(context.Background(), log.Discard(),
		[]string{"sh", "-c", "kill -SEGV $$"},
		command.WithStderr(&bytes.Buffer{}),
	)

	var exitErr *command.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 139, exitErr.Status)
}

func TestRun_MissingBinary(t *testing.T) {
	err := command.Run(context.Background(), log.Discard(), []string{"/nonexistent/hwgpg-collaborator"})
	require.Error(t, err)
	require.True(t, errors.Is(err, exec.ErrNotFound) || strings.Contains(err.Error(), "no such file"))
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := command.Run(ctx, log.Discard(), []string{"sleep", "30"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 10*time.Second)
}
