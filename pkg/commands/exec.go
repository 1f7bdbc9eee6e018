package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/interchain-infra/config"
	"github.com/smartcontractkit/interchain-infra/config/network"
	"github.com/smartcontractkit/interchain-infra/helper"
	"github.com/smartcontractkit/interchain-infra/pkg/commands/text"
	"github.com/smartcontractkit/interchain-infra/pkg/concurrency"
	"github.com/smartcontractkit/interchain-infra/pkg/execcmd"
)

var (
	execShort = "Run a shell command once per chain"

	execLong = text.LongDesc(`
		Renders the command as a Go template for every chain of the environment and runs it in a shell.

		The template has access to {{.Selector}}, {{.Name}}, {{.ChainID}}, {{.Family}}, {{.RPC}} (the
		preferred endpoint of the first RPC of the chain) and {{.Contracts}}, the address book of the
		chain. The strip0x and ensure0x functions are available to format hex values. The same values
		are exported to the command as CHAIN_SELECTOR, CHAIN_NAME, CHAIN_ID and CHAIN_RPC.

		Outputs are printed in chain order once every command has finished, while stderr is streamed
		as it is written. The first failing command stops the run.
	`)

	execExample = text.Examples(`
		# Print the latest block of every chain
		infractl exec -e environments/testnet -- cast block-number --rpc-url {{.RPC}}

		# Read the owner of the mailbox of every chain
		infractl exec -e environments/testnet -- cast call {{index .Contracts "Mailbox"}} "owner()" --rpc-url {{.RPC}}
	`)
)

// ChainTemplateData is the data a command template of exec is rendered with.
type ChainTemplateData struct {
	Selector  uint64
	Name      string
	ChainID   string
	Family    string
	RPC       string
	Contracts map[string]string
}

var templateFuncs = template.FuncMap{
	"strip0x":  helper.Strip0x,
	"ensure0x": helper.Ensure0x,
}

func newChainTemplateData(n network.Network, contracts map[string]common.Address) ChainTemplateData {
	data := ChainTemplateData{
		Selector:  n.ChainSelector,
		Name:      n.ChainName(),
		Contracts: make(map[string]string, len(contracts)),
	}

	for name, addr := range contracts {
		data.Contracts[name] = addr.Hex()
	}

	// Selectors unknown to chain-selectors leave the chain id and family empty.
	data.ChainID, _ = n.ChainID()
	data.Family, _ = n.ChainFamily()

	if len(n.RPCs) > 0 {
		data.RPC = n.RPCs[0].PreferredEndpoint()
	}

	return data
}

type execResult struct {
	chain  ChainTemplateData
	stdout string
}

func (c *Commands) Exec() *cobra.Command {
	return &cobra.Command{
		Use:     "exec -- <command>",
		Short:   execShort,
		Long:    execLong,
		Example: execExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExec(cmd, strings.Join(args, " "))
		},
	}
}

func (c *Commands) runExec(cmd *cobra.Command, command string) error {
	tmpl, err := template.New("command").Funcs(templateFuncs).Option("missingkey=error").Parse(command)
	if err != nil {
		return fmt.Errorf("invalid command template: %w", err)
	}

	e, err := c.loadEnvironment(cmd)
	if err != nil {
		return err
	}

	errOut := &syncWriter{w: cmd.ErrOrStderr()}

	results, err := concurrency.Map(cmd.Context(), e.Concurrency(), e.Networks.Networks(),
		func(ctx context.Context, n network.Network, _ int) (execResult, error) {
			return c.execOnChain(ctx, e, tmpl, n, errOut)
		},
	)
	if err != nil {
		return err
	}

	for _, r := range results {
		cmd.Printf("# %s (%d)\n", r.chain.Name, r.chain.Selector)
		cmd.Println(strings.TrimRight(r.stdout, "\n"))
	}

	return nil
}

func (c *Commands) execOnChain(
	ctx context.Context, e *config.Environment, tmpl *template.Template, n network.Network, errOut io.Writer,
) (execResult, error) {
	data := newChainTemplateData(n, e.Addresses[n.ChainSelector])

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return execResult{}, fmt.Errorf("chain %s: failed to render command: %w", data.Name, err)
	}

	// stdout is printed in chain order once every command has finished, only stderr is streamed.
	stdout, _, err := c.deps.CommandRunner(ctx, rendered.String(),
		execcmd.WithLogger(c.lggr.Named("exec").Named(data.Name)),
		execcmd.WithVerbose(e.Settings.Verbose),
		execcmd.WithOutputWriters(io.Discard, errOut),
		execcmd.WithEnv(chainEnv(data)...),
	)
	if err != nil {
		return execResult{}, fmt.Errorf("chain %s: %w", data.Name, err)
	}

	return execResult{chain: data, stdout: stdout}, nil
}

// chainEnv returns the environment variables describing the chain a command runs for.
func chainEnv(data ChainTemplateData) []string {
	vars := map[string]string{
		"CHAIN_SELECTOR": strconv.FormatUint(data.Selector, 10),
		"CHAIN_NAME":     data.Name,
	}
	maps.Copy(vars, helper.IncludeIf(data.ChainID != "", map[string]string{"CHAIN_ID": data.ChainID}))
	maps.Copy(vars, helper.IncludeIf(data.RPC != "", map[string]string{"CHAIN_RPC": data.RPC}))

	env := make([]string, 0, len(vars))
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		env = append(env, k+"="+vars[k])
	}

	return env
}

// syncWriter serializes writes of the commands running at the same time.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.w.Write(p)
}
