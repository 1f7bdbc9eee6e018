// Package flags provides the flags shared by several infractl commands.
//
// Command specific flags are defined next to the command that uses them.
package flags

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// MustString returns the string value, ignoring the error.
// Safe to use with registered flags where GetString cannot fail.
func MustString(s string, _ error) string { return s }

// MustBool returns the bool value, ignoring the error.
// Safe to use with registered flags where GetBool cannot fail.
func MustBool(b bool, _ error) bool { return b }

// MustInt returns the int value, ignoring the error.
// Safe to use with registered flags where GetInt cannot fail.
func MustInt(i int, _ error) int { return i }

// MustStringSlice returns the string slice value, ignoring the error.
// Safe to use with registered flags where GetStringSlice cannot fail.
func MustStringSlice(s []string, _ error) []string { return s }

// Environment adds the required persistent --environment/-e flag to a command. The value is the
// directory holding the environment.
func Environment(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("environment", "e", "", "Environment directory (required)")
	_ = cmd.MarkPersistentFlagRequired("environment")
}

// Concurrency adds the persistent --concurrency/-c flag. Zero keeps the value of the environment
// settings.
func Concurrency(cmd *cobra.Command) {
	cmd.PersistentFlags().IntP("concurrency", "c", 0, "Chains processed at the same time (default from settings)")
}

// Chains adds the persistent --chains flag restricting a command to some chains, given by
// selector or name.
func Chains(cmd *cobra.Command) {
	cmd.PersistentFlags().StringSlice("chains", nil, "Only process these chains, by selector or name")
}

// Verbose adds the persistent --verbose/-v flag.
func Verbose(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log executed commands and their output")
}

// Output adds the --out/-o flag for specifying output file path.
// Also supports the --outputPath alias.
func Output(cmd *cobra.Command, defaultValue string) {
	cmd.Flags().StringP("out", "o", defaultValue, "Output file path")

	existingNormalize := cmd.Flags().GetNormalizeFunc()
	cmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "outputPath" {
			return pflag.NormalizedName("out")
		}
		if existingNormalize != nil {
			return existingNormalize(f, name)
		}

		return pflag.NormalizedName(name)
	})
}

// ChainRef is a chain given on the command line, either by selector or by name.
type ChainRef struct {
	Selector uint64
	Name     string
}

// ParseChainRefs parses the values of the --chains flag. Numeric values are selectors, anything
// else is a chain name.
func ParseChainRefs(values []string) ([]ChainRef, error) {
	refs := make([]ChainRef, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, fmt.Errorf("empty chain in %q", strings.Join(values, ","))
		}

		if sel, err := strconv.ParseUint(v, 10, 64); err == nil {
			refs = append(refs, ChainRef{Selector: sel})
			continue
		}

		refs = append(refs, ChainRef{Name: v})
	}

	return refs, nil
}
