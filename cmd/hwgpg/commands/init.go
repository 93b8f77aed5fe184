package commands

import (
	"time"

	"github.com/spf13/cobra"

	"hwgpg/internal/domain"
)

func (c *cli) initCmd() *cobra.Command {
	var (
		created int64
		yes     bool
	)
	cmd := &cobra.Command{
		Use:   "init <user-id>",
		Short: "Create a hardware-backed identity and open a shell to verify it",
		Long: "Create a hardware-backed identity and open a shell to verify it.\n\n" +
			"The identity directory is replaced. Pass the same --time again to\n" +
			"regenerate the same key on the same device.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.ProvisionRequest{
				UserID:    domain.UserID(args[0]),
				Curve:     domain.Curve(c.cfg.Curve),
				Confirmed: yes,
			}
			if created > 0 {
				req.Created = time.Unix(created, 0)
			}
			status, err := c.wire.Identity.Provision(cmd.Context(), req)
			if err != nil {
				return err
			}
			c.status = status
			return nil
		},
	}
	cmd.Flags().String("curve", "", "elliptic curve: ed25519 or nist256p1 (default nist256p1)")
	cmd.Flags().Int64Var(&created, "time", 0, "key creation time as unix seconds (default now)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "replace an existing identity without asking")
	return cmd
}
