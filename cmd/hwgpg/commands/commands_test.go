package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hwgpg/internal/domain"
)

type harness struct {
	cli    *cli
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	home   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Chdir(dir)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = r.Close()
		_ = w.Close()
	})

	h := &harness{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		home:   filepath.Join(dir, "trezor"),
	}
	h.cli = &cli{stdin: r, stdout: h.stdout, stderr: h.stderr}
	return h
}

func (h *harness) run(args ...string) (int, error) {
	return h.cli.execute(context.Background(), append([]string{"--home", h.home}, args...))
}

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestExecute_ConfigWrite_UserConfig(t *testing.T) {
	h := newHarness(t)

	status, err := h.run("config", "write")
	require.NoError(t, err)
	require.Zero(t, status)

	path := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "hwgpg", "hwgpg.yaml")
	require.Contains(t, h.stdout.String(), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "home: "+h.home)
	require.Contains(t, string(data), "process_name: trezor-gpg")
}

func TestExecute_InitInvalidCurve_NothingCreated(t *testing.T) {
	h := newHarness(t)

	status, err := h.run("init", "Alice <alice@example.com>", "--curve", "p384")
	require.ErrorIs(t, err, domain.ErrInvalidCurve)
	require.Equal(t, 1, status)
	require.NoDirExists(t, h.home)
}

func TestExecute_InitCurveFromEnvironment(t *testing.T) {
	h := newHarness(t)
	t.Setenv("HWGPG_CURVE", "secp256k1")

	_, err := h.run("init", "Alice <alice@example.com>")
	require.ErrorIs(t, err, domain.ErrInvalidCurve)
}

func TestExecute_InitWithoutUserID_Error(t *testing.T) {
	h := newHarness(t)

	status, err := h.run("init")
	require.Error(t, err)
	require.Equal(t, 1, status)
}

func TestExecute_InitOldGpg_Refused(t *testing.T) {
	h := newHarness(t)
	t.Setenv("HWGPG_GPG_BINARY", writeScript(t, "gpg2", `echo "gpg (GnuPG) 2.0.30"`))

	_, err := h.run("init", "Alice <alice@example.com>", "--curve", "ed25519")
	require.ErrorIs(t, err, domain.ErrUnsupportedGPG)
	require.NoDirExists(t, h.home)
}

func TestExecute_KeysEmptyKeyring(t *testing.T) {
	h := newHarness(t)
	t.Setenv("HWGPG_GPG_BINARY", writeScript(t, "gpg2", "exit 0"))

	status, err := h.run("keys")
	require.NoError(t, err)
	require.Zero(t, status)
	require.Equal(t, "No keys in "+h.home+".\n", h.stdout.String())
}

func TestExecute_InvalidLogFormat_Error(t *testing.T) {
	h := newHarness(t)
	t.Setenv("HWGPG_LOG_FORMAT", "xml")

	_, err := h.run("keys")
	require.ErrorContains(t, err, "invalid log format")
}

func TestReadAnswer(t *testing.T) {
	for input, want := range map[string]bool{
		"y\n":   true,
		"YES\n": true,
		" yes ": true,
		"n\n":   false,
		"\n":    false,
		"":      false,
		"maybe": false,
	} {
		var out bytes.Buffer
		got, err := readAnswer(strings.NewReader(input), &out, "Replace?")
		require.NoError(t, err)
		require.Equal(t, want, got, "input %q", input)
		require.Equal(t, "Replace? [y/N] ", out.String())
	}
}

func TestTerminalConfirmer_NotATerminal_Error(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	_, err = newTerminalConfirmer(r, &bytes.Buffer{}).Confirm("Replace?")
	require.ErrorContains(t, err, "--yes")
}
