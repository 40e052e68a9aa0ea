package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/podguild/internal/client/config"
	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/spf13/cobra"
)

// appFactory builds the App for one command run. Tests replace it to wire fakes.
type appFactory func(ctx context.Context, cfg *config.Config, cmd *cobra.Command) (*App, error)

func defaultFactory(ctx context.Context, cfg *config.Config, cmd *cobra.Command) (*App, error) {
	return NewApp(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// commands carries the App between the root pre-run hook and subcommands.
type commands struct {
	factory appFactory
	app     *App
}

// NewRootCommand returns the podcli command tree. The App opened for a run
// is closed after a successful command; Execute also closes it on failure.
func NewRootCommand() *cobra.Command {
	return newCommands(defaultFactory).root()
}

func newCommands(factory appFactory) *commands {
	return &commands{factory: factory}
}

func (c *commands) closeApp() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

func (c *commands) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "podcli",
		Short:         "Pods marketplace client: apply to jobs with encrypted CVs stored on Walrus",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			app, err := c.factory(cmd.Context(), cfg, cmd)
			if err != nil {
				return err
			}
			c.app = app
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.closeApp()
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		c.walletCommand(),
		c.applyCommand(),
		c.cvCommand(),
		c.blobCommand(),
		c.podCommand(),
		c.jobCommand(),
		c.hireCommand(),
		c.podsCommand(),
		c.jobsCommand(),
		c.applicationsCommand(),
		c.profileCommand(),
		c.historyCommand(),
	)
	return root
}

// Execute runs the command tree and prints a failure with its kind to errOut.
// It returns the process exit code.
func Execute(ctx context.Context, args []string, errOut io.Writer) int {
	c := newCommands(defaultFactory)
	defer func() { _ = c.closeApp() }()

	root := c.root()
	root.SetArgs(args)
	root.SetErr(errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		printError(errOut, err)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error) {
	kind := common.KindOf(err)
	if kind == common.KindUnknown {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Error [%s]: %v\n", kind, err)
}
