// Package trezor invokes the trezor-gpg hardware bridge.
//
// The bridge derives keys on the device and prints an armored public key
// block; it never hands out private key material. The same user identity,
// curve and creation time on the same device yield the same key again.
package trezor

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"hwgpg/internal/command"
	"hwgpg/internal/domain"
)

// DefaultBinary is the bridge executable looked up on PATH.
const DefaultBinary = "trezor-gpg"

// Config selects the bridge binary.
type Config struct {
	Binary string
	// Verbosity is forwarded as repeated -v flags.
	Verbosity int
}

// AgentCommand returns the argv that runs the bridge's signing agent.
func (c Config) AgentCommand() []string {
	return append(c.base(), "agent")
}

func (c Config) base() []string {
	argv := []string{c.Binary}
	for i := 0; i < c.Verbosity; i++ {
		argv = append(argv, "-v")
	}
	return argv
}

// KeyGenerator creates identities on the hardware device.
type KeyGenerator struct {
	cfg Config
	log logrus.FieldLogger
}

// NewKeyGenerator returns a KeyGenerator for cfg.
func NewKeyGenerator(cfg Config, logger logrus.FieldLogger) *KeyGenerator {
	return &KeyGenerator{cfg: cfg, log: logger.WithField("component", "trezor")}
}

// Create generates the key for user on the device and returns the armored
// certificate printed by the bridge. The device prompts on the terminal.
func (g *KeyGenerator) Create(
	ctx context.Context,
	user domain.UserID,
	curve domain.Curve,
	created time.Time,
) ([]byte, error) {
	ts := strconv.FormatInt(created.Unix(), 10)
	g.log.WithFields(logrus.Fields{
		"user_id": user.String(),
		"curve":   curve.String(),
		"created": ts,
	}).Warn("to re-generate the exact same GPG key later, pass --time=" + ts)

	argv := append(g.cfg.base(), "create", user.String(), "--ecdsa-curve", curve.String(), "--time", ts)
	return command.Output(ctx, g.log, argv, command.WithStdin(os.Stdin))
}

// Compile-time assertion that KeyGenerator implements domain.KeyGenerator.
var _ domain.KeyGenerator = (*KeyGenerator)(nil)
