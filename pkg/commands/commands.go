// Package commands provides the infractl CLI commands.
//
// Commands are created through the Commands factory, which shares a logger and the injectable
// dependencies between them:
//
//	cmds := commands.New(lggr).WithLevel(&level)
//	if err := cmds.Root().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
//
// Tests inject fakes through [Commands.WithDeps].
package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartcontractkit/interchain-infra/pkg/commands/flags"
	"github.com/smartcontractkit/interchain-infra/pkg/commands/text"
	"github.com/smartcontractkit/interchain-infra/pkg/logger"
)

var (
	rootShort = "Operate on the chains of a deployment environment"

	rootLong = text.LongDesc(`
		infractl runs checks and commands against every chain of a deployment environment.

		An environment is a directory holding a networks manifest (networks.yaml or networks.toml),
		optional settings (settings.yaml) and an optional address book (addresses.json).
		Chains are processed in batches of --concurrency chains at a time.
	`)
)

// Commands provides a factory for creating CLI commands with shared configuration.
type Commands struct {
	lggr  logger.Logger
	level *zap.AtomicLevel
	deps  Deps
}

// New creates a new Commands factory with the given logger and the production dependencies.
func New(lggr logger.Logger) *Commands {
	c := &Commands{lggr: lggr}
	c.deps.applyDefaults()

	return c
}

// WithDeps overrides the dependencies of the commands. Nil fields keep the production defaults.
func (c *Commands) WithDeps(deps Deps) *Commands {
	deps.applyDefaults()
	c.deps = deps

	return c
}

// WithLevel gives the commands control over the level of their logger. Verbose runs lower it to
// debug so that executed commands and their output are logged.
func (c *Commands) WithLevel(level *zap.AtomicLevel) *Commands {
	c.level = level

	return c
}

// Root creates the infractl root command with every subcommand attached.
func (c *Commands) Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "infractl",
		Short:         rootShort,
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags.Environment(cmd)
	flags.Concurrency(cmd)
	flags.Chains(cmd)
	flags.Verbose(cmd)

	cmd.AddCommand(c.Check())
	cmd.AddCommand(c.Balances())
	cmd.AddCommand(c.Exec())

	return cmd
}
