package commands

import (
	"context"

	"github.com/smartcontractkit/interchain-infra/chain/evm"
	"github.com/smartcontractkit/interchain-infra/config"
	"github.com/smartcontractkit/interchain-infra/config/env"
	"github.com/smartcontractkit/interchain-infra/pkg/execcmd"
	"github.com/smartcontractkit/interchain-infra/pkg/logger"
)

// EnvironmentLoaderFunc loads the environment stored in a directory.
type EnvironmentLoaderFunc func(envDir string) (*config.Environment, error)

// DialerFactoryFunc returns the Dialer used to connect to the chains of an environment.
type DialerFactoryFunc func(lggr logger.Logger, settings *env.Config) evm.Dialer

// CommandRunnerFunc runs a shell command and returns its stdout and stderr.
type CommandRunnerFunc func(ctx context.Context, command string, opts ...execcmd.Option) (string, string, error)

// defaultDialerFactory dials real RPCs, retrying as configured in the settings.
func defaultDialerFactory(lggr logger.Logger, settings *env.Config) evm.Dialer {
	retryConfig := evm.DefaultRetryConfig()
	if settings != nil {
		retryConfig = evm.RetryConfigFromSettings(settings.RPC)
	}

	return evm.NewDialer(lggr, retryConfig)
}

// Deps holds the injectable dependencies of the commands.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// EnvironmentLoader loads the environment given with --environment.
	// Default: config.Load
	EnvironmentLoader EnvironmentLoaderFunc

	// DialerFactory creates the chain Dialer.
	// Default: evm.NewDialer
	DialerFactory DialerFactoryFunc

	// CommandRunner runs the commands of exec.
	// Default: execcmd.Run
	CommandRunner CommandRunnerFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.EnvironmentLoader == nil {
		d.EnvironmentLoader = config.Load
	}
	if d.DialerFactory == nil {
		d.DialerFactory = defaultDialerFactory
	}
	if d.CommandRunner == nil {
		d.CommandRunner = execcmd.Run
	}
}
