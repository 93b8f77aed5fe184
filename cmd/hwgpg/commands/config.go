package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"hwgpg/internal/config"
)

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the hwgpg configuration file",
	}

	var system bool
	write := &cobra.Command{
		Use:   "write",
		Short: "Write the effective configuration to the user or system config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteFile(&c.cfg, system)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "Configuration written to %s\n", path)
			return nil
		},
	}
	write.Flags().BoolVar(&system, "system", false, "write /etc/hwgpg/hwgpg.yaml instead of the user config")
	cmd.AddCommand(write)
	return cmd
}
