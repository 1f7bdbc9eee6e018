package commands

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/smartcontractkit/interchain-infra/balances"
	"github.com/smartcontractkit/interchain-infra/checker"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorders(tablewriter.Border{Left: true, Right: true, Top: true, Bottom: true})

	return table
}

func renderViolations(w io.Writer, violations []checker.Violation) {
	table := newTable(w, []string{"Chain", "Selector", "Kind", "Contract", "Expected", "Actual"})
	for _, v := range violations {
		table.Append([]string{
			v.Chain,
			strconv.FormatUint(v.Selector, 10),
			string(v.Kind),
			v.Contract,
			v.Expected,
			v.Actual,
		})
	}
	table.Render()
}

func renderBalances(w io.Writer, bals []balances.Balance) {
	table := newTable(w, []string{"Chain", "Selector", "Balance"})
	for _, b := range bals {
		table.Append([]string{b.Chain, strconv.FormatUint(b.Selector, 10), b.Ether()})
	}
	table.Render()
}
