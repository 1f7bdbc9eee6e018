package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/smartcontractkit/interchain-infra/config"
	"github.com/smartcontractkit/interchain-infra/config/env"
	"github.com/smartcontractkit/interchain-infra/config/network"
	"github.com/smartcontractkit/interchain-infra/pkg/commands/flags"
	"github.com/smartcontractkit/interchain-infra/pkg/logger"
)

// loadEnvironment loads the environment selected on the command line and applies the persistent
// flags overriding its settings.
func (c *Commands) loadEnvironment(cmd *cobra.Command) (*config.Environment, error) {
	envDir := flags.MustString(cmd.Flags().GetString("environment"))

	e, err := c.deps.EnvironmentLoader(envDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment %s: %w", envDir, err)
	}

	if e.Settings == nil {
		e.Settings = env.Defaults()
	}

	if n := flags.MustInt(cmd.Flags().GetInt("concurrency")); n != 0 {
		if n < 0 {
			return nil, fmt.Errorf("concurrency must be at least 1, got %d", n)
		}
		e.Settings.Concurrency = n
	}

	if flags.MustBool(cmd.Flags().GetBool("verbose")) {
		e.Settings.Verbose = true
	}

	if e.Settings.Verbose && c.level != nil {
		c.level.SetLevel(zapcore.DebugLevel)
	}

	refs, err := flags.ParseChainRefs(flags.MustStringSlice(cmd.Flags().GetStringSlice("chains")))
	if err != nil {
		return nil, err
	}

	selectors, err := resolveChains(e.Networks, refs)
	if err != nil {
		return nil, err
	}

	if err := e.OnlyChains(selectors...); err != nil {
		return nil, err
	}

	warnMainnet(c.lggr, e)

	return e, nil
}

// resolveChains turns chain references into selectors. Names are matched against the networks of
// the environment.
func resolveChains(networks *network.Config, refs []flags.ChainRef) ([]uint64, error) {
	selectors := make([]uint64, 0, len(refs))
	for _, ref := range refs {
		if ref.Name == "" {
			selectors = append(selectors, ref.Selector)
			continue
		}

		found := false
		for _, n := range networks.Networks() {
			if n.ChainName() == ref.Name {
				selectors = append(selectors, n.ChainSelector)
				found = true

				break
			}
		}

		if !found {
			return nil, fmt.Errorf("chain %q is not part of the environment", ref.Name)
		}
	}

	return selectors, nil
}

func warnMainnet(lggr logger.Logger, e *config.Environment) {
	mainnets := e.Networks.FilterWith(network.TypesFilter(network.NetworkTypeMainnet)).Networks()
	if len(mainnets) > 0 {
		logger.WarnBanner(lggr, fmt.Sprintf("environment %s includes %d mainnet chains", e.Name, len(mainnets)), true)
	}
}
