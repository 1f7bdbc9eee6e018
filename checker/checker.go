// Package checker verifies that the RPCs and the deployed contracts of an environment match its
// configuration.
package checker

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	chainsel "github.com/smartcontractkit/chain-selectors"
	"golang.org/x/sync/errgroup"

	"github.com/smartcontractkit/interchain-infra/chain/evm"
	"github.com/smartcontractkit/interchain-infra/config"
	"github.com/smartcontractkit/interchain-infra/config/network"
	"github.com/smartcontractkit/interchain-infra/pkg/concurrency"
	"github.com/smartcontractkit/interchain-infra/pkg/logger"
)

// ViolationKind is the type of mismatch found on a chain.
type ViolationKind string

const (
	// KindChainIDMismatch means the RPC serves a different chain than the selector identifies.
	KindChainIDMismatch ViolationKind = "chain_id_mismatch"
	// KindMissingCode means a contract of the address book has no code on chain.
	KindMissingCode ViolationKind = "missing_code"
)

// Violation is a single mismatch between the environment and a chain.
type Violation struct {
	Selector uint64        `json:"selector"`
	Chain    string        `json:"chain"`
	Kind     ViolationKind `json:"kind"`
	Contract string        `json:"contract,omitempty"`
	Actual   string        `json:"actual"`
	Expected string        `json:"expected"`
}

func (v Violation) String() string {
	if v.Contract != "" {
		return fmt.Sprintf("%s: %s %s: expected %s, got %s", v.Chain, v.Kind, v.Contract, v.Expected, v.Actual)
	}

	return fmt.Sprintf("%s: %s: expected %s, got %s", v.Chain, v.Kind, v.Expected, v.Actual)
}

// Report is the outcome of a check of an environment.
type Report struct {
	Env        string      `json:"env"`
	Chains     []uint64    `json:"chains"`
	Violations []Violation `json:"violations"`
}

// OK reports whether no violation was found.
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// Check checks every EVM network of e, at most e.Concurrency() chains at a time.
//
// Violations are collected in the report. Any error talking to a chain aborts the check and is
// returned instead.
func Check(ctx context.Context, lggr logger.Logger, e *config.Environment, dial evm.Dialer) (*Report, error) {
	lggr = lggr.Named("checker")

	networks := e.Networks.FilterWith(network.ChainFamilyFilter(chainsel.FamilyEVM)).Networks()
	if skipped := len(e.Networks.Networks()) - len(networks); skipped > 0 {
		lggr.Warnf("Skipping %d non EVM networks", skipped)
	}

	perChain, err := concurrency.Map(ctx, e.Concurrency(), networks,
		func(ctx context.Context, n network.Network, _ int) ([]Violation, error) {
			return checkChain(ctx, lggr, n, e.Addresses[n.ChainSelector], dial)
		},
	)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Env:        e.Name,
		Chains:     make([]uint64, 0, len(networks)),
		Violations: []Violation{},
	}
	for i, n := range networks {
		report.Chains = append(report.Chains, n.ChainSelector)
		report.Violations = append(report.Violations, perChain[i]...)
	}

	return report, nil
}

// checkChain checks the chain id and the contracts of a single network. The individual checks
// run concurrently and the first RPC error cancels the others.
func checkChain(
	ctx context.Context, lggr logger.Logger, n network.Network, contracts map[string]common.Address, dial evm.Dialer,
) ([]Violation, error) {
	chainName := n.ChainName()
	lggr.Infow("Checking chain", "chain", chainName, "selector", n.ChainSelector, "contracts", len(contracts))

	expectedID, err := n.ChainID()
	if err != nil {
		return nil, fmt.Errorf("chain %s: %w", chainName, err)
	}

	client, err := dial(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("chain %s: %w", chainName, err)
	}
	defer client.Close()

	var (
		mu         sync.Mutex
		violations []Violation
	)
	report := func(v Violation) {
		mu.Lock()
		defer mu.Unlock()

		v.Selector = n.ChainSelector
		v.Chain = chainName
		violations = append(violations, v)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		id, err := client.ChainID(gctx)
		if err != nil {
			return fmt.Errorf("chain %s: failed to get chain id: %w", chainName, err)
		}

		if id.String() != expectedID {
			report(Violation{Kind: KindChainIDMismatch, Actual: id.String(), Expected: expectedID})
		}

		return nil
	})

	for name, addr := range contracts {
		g.Go(func() error {
			code, err := client.CodeAt(gctx, addr, nil)
			if err != nil {
				return fmt.Errorf("chain %s: failed to get code of %s at %s: %w", chainName, name, addr, err)
			}

			if len(code) == 0 {
				report(Violation{Kind: KindMissingCode, Contract: name, Actual: "no code", Expected: "code at " + addr.Hex()})
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(violations, func(a, b Violation) int {
		return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.Contract, b.Contract))
	})

	if len(violations) > 0 {
		lggr.Warnw("Chain has violations", "chain", chainName, "violations", len(violations))
	}

	return violations, nil
}
