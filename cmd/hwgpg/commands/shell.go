package commands

import (
	"github.com/spf13/cobra"
)

func (c *cli) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start a signing agent and open a shell that uses it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := c.wire.Sessions.Launch(cmd.Context())
			if err != nil {
				return err
			}
			c.status = status
			return nil
		},
	}
}
