package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/interchain-infra/artifacts"
	"github.com/smartcontractkit/interchain-infra/checker"
	"github.com/smartcontractkit/interchain-infra/internal/jsonutils"
	"github.com/smartcontractkit/interchain-infra/pkg/commands/flags"
	"github.com/smartcontractkit/interchain-infra/pkg/commands/text"
)

// CheckArtifactName is the name of the report artifact written by the check command.
const CheckArtifactName = "check"

// ErrViolations is returned by the check command when the environment does not match its chains.
var ErrViolations = errors.New("environment has violations")

var (
	checkShort = "Check the chains of an environment"

	checkLong = text.LongDesc(`
		Checks that every RPC of the environment serves the chain its selector identifies, and that
		every contract of the address book has code deployed.

		The report is saved to the artifacts directory of the environment, or to --out when given.
		The command fails when any violation is found.
	`)

	checkExample = text.Examples(`
		# Check the staging environment, two chains at a time
		infractl check -e environments/staging -c 2

		# Only check ethereum and write the report to a file
		infractl check -e environments/mainnet --chains ethereum-mainnet -o report.json
	`)
)

type checkFlags struct {
	out string
}

func (c *Commands) Check() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "check",
		Short:   checkShort,
		Long:    checkLong,
		Example: checkExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := checkFlags{
				out: flags.MustString(cmd.Flags().GetString("out")),
			}

			return c.runCheck(cmd, f)
		},
	}

	flags.Output(cmd, "")

	return cmd
}

func (c *Commands) runCheck(cmd *cobra.Command, f checkFlags) error {
	e, err := c.loadEnvironment(cmd)
	if err != nil {
		return err
	}

	dial := c.deps.DialerFactory(c.lggr, e.Settings)

	report, err := checker.Check(cmd.Context(), c.lggr, e, dial)
	if err != nil {
		return fmt.Errorf("check of %s failed: %w", e.Name, err)
	}

	path := f.out
	if path != "" {
		err = jsonutils.WriteFile(path, report)
	} else {
		path, err = artifacts.NewDir(e.Settings.ArtifactsDir, e.Name).Save(CheckArtifactName, report)
	}
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	if report.OK() {
		cmd.Printf("✅ %d chains of %s are healthy\n", len(report.Chains), e.Name)
		cmd.Printf("Report saved to %s\n", path)

		return nil
	}

	renderViolations(cmd.OutOrStdout(), report.Violations)
	cmd.Printf("Report saved to %s\n", path)

	return fmt.Errorf("%w: %d found in %s", ErrViolations, len(report.Violations), e.Name)
}
