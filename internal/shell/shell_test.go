package shell_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hwgpg/internal/log"
	"hwgpg/internal/shell"
)

func script(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shell.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestResolve_Order(t *testing.T) {
	t.Setenv("SHELL", "/bin/zsh")
	require.Equal(t, "/bin/fish", shell.Resolve("/bin/fish"))
	require.Equal(t, "/bin/zsh", shell.Resolve(""))

	t.Setenv("SHELL", "")
	require.Equal(t, shell.Fallback, shell.Resolve("  "))
}

func TestEnviron_ReplacesGnupgHome(t *testing.T) {
	base := []string{"PATH=/usr/bin", "GNUPGHOME=/old", "GPG_TTY=/dev/pts/9"}

	env := shell.Environ(base, "/new", "/dev/pts/1")
	require.ElementsMatch(t, []string{"PATH=/usr/bin", "GNUPGHOME=/new", "GPG_TTY=/dev/pts/1"}, env)

	env = shell.Environ(base, "/new", "")
	require.ElementsMatch(t, []string{"PATH=/usr/bin", "GPG_TTY=/dev/pts/9", "GNUPGHOME=/new"}, env)
}

func TestRun_ExitStatusPropagated(t *testing.T) {
	r := shell.NewRunner(script(t, "exit 3"), time.Second, log.Discard())
	status, err := r.Run(context.Background(), os.Environ())
	require.NoError(t, err)
	require.Equal(t, 3, status)
}

func TestRun_SeesEnvironment(t *testing.T) {
	out := filepath.Join(t.TempDir(), "home")
	r := shell.NewRunner(script(t, `printf %s "$GNUPGHOME" > "$OUT"`), time.Second, log.Discard())

	env := shell.Environ(append(os.Environ(), "OUT="+out), "/tmp/hwgpg-home", "")
	status, err := r.Run(context.Background(), env)
	require.NoError(t, err)
	require.Zero(t, status)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "/tmp/hwgpg-home", string(got))
}

func TestRun_KilledBySignal_128PlusSignal(t *testing.T) {
	r := shell.NewRunner(script(t, "kill -SEGV $$"), time.Second, log.Discard())
	status, err := r.Run(context.Background(), os.Environ())
	require.NoError(t, err)
	require.Equal(t, 139, status)
}

func TestRun_Canceled_ShellHungUp(t *testing.T) {
	// The orphaned background job would otherwise keep the test binary's
	// stdout open and stall `go test` until it exits.
	r := shell.NewRunner(script(t, "sleep 30 >/dev/null 2>&1 & wait"), time.Second, log.Discard())
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	status, err := r.Run(ctx, os.Environ())
	require.NoError(t, err)
	require.Equal(t, 129, status)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_MissingBinary_Error(t *testing.T) {
	r := shell.NewRunner(filepath.Join(t.TempDir(), "nope"), time.Second, log.Discard())
	_, err := r.Run(context.Background(), os.Environ())
	require.Error(t, err)
}
