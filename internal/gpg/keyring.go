package gpg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"

	"hwgpg/internal/command"
	"hwgpg/internal/crypto"
	"hwgpg/internal/domain"
)

// DefaultMinVersion is the oldest gpg that can talk to an external agent
// holding hardware-backed keys.
const DefaultMinVersion = "2.1.15"

// Config selects the gpg binaries and the keyring directory.
type Config struct {
	Binary     string // gpg, e.g. "gpg2"
	Gpgconf    string // gpgconf
	Home       string // identity directory
	MinVersion string // semver constraint floor, DefaultMinVersion when empty
}

// Keyring is the gpg keyring rooted at an identity directory.
type Keyring struct {
	cfg Config
	log logrus.FieldLogger
}

// New returns a Keyring for cfg.
func New(cfg Config, logger logrus.FieldLogger) *Keyring {
	if cfg.MinVersion == "" {
		cfg.MinVersion = DefaultMinVersion
	}
	return &Keyring{cfg: cfg, log: logger.WithField("component", "gpg")}
}

func (k *Keyring) gpg(args ...string) []string {
	return append([]string{k.cfg.Binary, "--homedir", k.cfg.Home}, args...)
}

// Version returns the installed gpg version, e.g. "2.2.27".
func (k *Keyring) Version(ctx context.Context) (string, error) {
	out, err := command.Output(ctx, k.log, []string{k.cfg.Binary, "--version"})
	if err != nil {
		return "", err
	}
	return parseVersion(out)
}

// CheckVersion fails with domain.ErrUnsupportedGPG when gpg is older than
// the configured minimum.
func (k *Keyring) CheckVersion(ctx context.Context) error {
	raw, err := k.Version(ctx)
	if err != nil {
		return fmt.Errorf("querying gpg version: %w", err)
	}
	constraint, err := semver.NewConstraint(">= " + k.cfg.MinVersion)
	if err != nil {
		return fmt.Errorf("invalid minimum gpg version %q: %w", k.cfg.MinVersion, err)
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("%w: cannot parse %q: %v", domain.ErrUnsupportedGPG, raw, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: existing gpg has version %q (>= %s required)",
			domain.ErrUnsupportedGPG, raw, k.cfg.MinVersion)
	}
	k.log.WithField("version", raw).Debug("gpg version accepted")
	return nil
}

// Import adds the certificate at path to the keyring.
func (k *Keyring) Import(ctx context.Context, path string) error {
	return command.Run(ctx, k.log, k.gpg("--import", path))
}

// EditTrust runs gpg's interactive trust editor for user on the terminal.
func (k *Keyring) EditTrust(ctx context.Context, user domain.UserID) error {
	return command.Run(ctx, k.log, k.gpg("--edit-key", user.String(), "trust"), command.WithTerminal())
}

// ListKeys returns every public key in the keyring.
func (k *Keyring) ListKeys(ctx context.Context) ([]domain.KeyRecord, error) {
	out, err := command.Output(ctx, k.log, k.gpg("--export"))
	if err != nil {
		return nil, err
	}
	return crypto.ReadKeyRing(out)
}

// AgentSocket asks gpgconf where the agent socket for this keyring lives,
// falling back to S.gpg-agent inside the identity directory. gpgconf's
// stderr only reaches the debug log since the fallback makes its failure
// harmless.
func (k *Keyring) AgentSocket(ctx context.Context) (string, error) {
	fallback := filepath.Join(k.cfg.Home, "S.gpg-agent")

	out, err := command.Output(ctx, k.log,
		[]string{k.cfg.Gpgconf, "--list-dirs", "agent-socket"},
		command.WithEnv("GNUPGHOME="+k.cfg.Home),
		command.WithStderr(io.Discard),
	)
	if err != nil {
		k.log.WithError(err).Debug("gpgconf unavailable, using default agent socket")
		return fallback, nil
	}
	path, err := unescape(strings.TrimSpace(string(out)))
	if err != nil || path == "" {
		return fallback, nil
	}
	return path, nil
}

// parseVersion takes the last field of the first line of `gpg --version`,
// e.g. "gpg (GnuPG) 2.2.27".
func parseVersion(out []byte) (string, error) {
	line, _, _ := bytes.Cut(out, []byte("\n"))
	fields := strings.Fields(string(line))
	if len(fields) == 0 {
		return "", fmt.Errorf("unexpected gpg --version output %q", line)
	}
	return fields[len(fields)-1], nil
}

// unescape decodes gpgconf's percent escaping (":" is printed as "%3a").
func unescape(s string) (string, error) {
	line, _, _ := strings.Cut(s, "\n")
	return url.PathUnescape(line)
}

// Compile-time assertion that Keyring implements domain.Keyring.
var _ domain.Keyring = (*Keyring)(nil)
