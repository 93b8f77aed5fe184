package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hwgpg/internal/app"
	"hwgpg/internal/config"
	"hwgpg/internal/domain"
	"hwgpg/internal/log"
)

// cli is the state shared by the root command and its subcommands.
type cli struct {
	stdin  *os.File
	stdout io.Writer
	stderr io.Writer

	home       string
	configFile string
	verbosity  int

	cfg    app.Config
	logger *logrus.Logger
	wire   *app.Wire
	status int
}

// Execute runs the CLI and returns the process exit status.
func Execute() int {
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	status, err := c.execute(context.Background(), os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return status
}

func (c *cli) execute(ctx context.Context, args []string) (int, error) {
	root := c.rootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return domain.ExitStatus(err), err
	}
	return c.status, nil
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hwgpg",
		Short:         "Provision and use hardware-backed GPG identities",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load[app.Config](cmd.Flags(), app.Defaults(), c.configFile)
			if err != nil {
				return err
			}
			logger, err := log.Configure(c.stderr, cfg.Log.Format, log.LevelForVerbosity(cfg.Log.Level, c.verbosity))
			if err != nil {
				return err
			}
			c.cfg, c.logger = cfg, logger
			logger.WithField("home", cfg.Home).Debug("configuration loaded")

			c.wire, err = app.NewWire(cfg, logger, app.Options{
				Verbosity: c.verbosity,
				Confirmer: newTerminalConfirmer(c.stdin, c.stderr),
				Output:    c.stdout,
			})
			return err
		},
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	root.PersistentFlags().StringVar(&c.home, "home", "", "identity directory (default ~/.gnupg/trezor)")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file")
	root.PersistentFlags().CountVarP(&c.verbosity, "verbose", "v", "increase verbosity (-v info, -vv debug)")

	root.AddCommand(c.initCmd(), c.shellCmd(), c.keysCmd(), c.configCmd())
	return root
}
