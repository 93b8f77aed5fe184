package commands

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func (c *cli) keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the keys in the identity keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := c.wire.Keyring.ListKeys(cmd.Context())
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Fprintf(c.stdout, "No keys in %s.\n", c.cfg.Home)
				return nil
			}

			table := tablewriter.NewWriter(c.stdout)
			table.SetHeader([]string{"KEY_ID", "ALGORITHM", "CREATED", "USER_ID"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAutoFormatHeaders(false)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetCenterSeparator("")
			table.SetColumnSeparator("")
			table.SetRowSeparator("")
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetTablePadding("\t")
			table.SetNoWhiteSpace(true)

			for _, k := range keys {
				created := k.Created.UTC().Format(time.DateOnly)
				if len(k.UserIDs) == 0 {
					table.Append([]string{k.KeyID, k.Algorithm, created, ""})
				}
				for _, uid := range k.UserIDs {
					table.Append([]string{k.KeyID, k.Algorithm, created, uid.String()})
				}
			}
			table.Render()
			return nil
		},
	}
}
