// Package config loads the environment the CLI operates on: the networks it spans, the runtime
// settings, and the contracts deployed to each network.
package config

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/smartcontractkit/interchain-infra/config/env"
	"github.com/smartcontractkit/interchain-infra/config/network"
	"github.com/smartcontractkit/interchain-infra/helper"
	"github.com/smartcontractkit/interchain-infra/internal/fileutils"
	"github.com/smartcontractkit/interchain-infra/internal/jsonutils"
)

const (
	// SettingsFileName is the optional settings file inside an environment directory.
	SettingsFileName = "settings.yaml"
	// AddressBookFileName is the optional address book inside an environment directory.
	AddressBookFileName = "addresses.json"
)

// networkFileNames are the network manifests looked up in an environment directory. Every one
// that exists is loaded and merged in this order.
var networkFileNames = []string{"networks.yaml", "networks.yml", "networks.toml"}

// AddressBook maps a chain selector to the contracts deployed on that chain, keyed by contract
// name.
type AddressBook map[uint64]map[string]common.Address

// Environment is everything known about a deployment environment.
type Environment struct {
	Name      string
	Dir       string
	Networks  *network.Config
	Settings  *env.Config
	Addresses AddressBook
}

// Load loads the environment stored in envDir. The environment is named after the directory.
func Load(envDir string) (*Environment, error) {
	networks, err := loadNetworks(envDir)
	if err != nil {
		return nil, err
	}

	settings, err := env.Load(filepath.Join(envDir, SettingsFileName))
	if err != nil {
		return nil, err
	}

	addresses, err := loadAddressBook(filepath.Join(envDir, AddressBookFileName))
	if err != nil {
		return nil, err
	}

	e := &Environment{
		Name:      filepath.Base(filepath.Clean(envDir)),
		Dir:       envDir,
		Networks:  networks,
		Settings:  settings,
		Addresses: addresses,
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}

	return e, nil
}

// Validate checks that every chain in the address book is a configured network.
func (e *Environment) Validate() error {
	unknown := helper.SetDifference(
		helper.SetOf(slices.Collect(maps.Keys(e.Addresses))...),
		helper.SetOf(e.Networks.ChainSelectors()...),
	)

	errs := make([]error, 0, len(unknown))
	for _, sel := range slices.Sorted(maps.Keys(unknown)) {
		errs = append(errs, fmt.Errorf("address book: network with selector %d not found in configuration", sel))
	}

	return errors.Join(errs...)
}

// Concurrency returns how many chains may be processed at the same time.
func (e *Environment) Concurrency() int {
	if e.Settings == nil || e.Settings.Concurrency < 1 {
		return env.DefaultConcurrency
	}

	return e.Settings.Concurrency
}

// OnlyChains restricts the environment to the given chain selectors. An empty list keeps every
// chain. Selectors that are not part of the environment are reported as an error.
func (e *Environment) OnlyChains(selectors ...uint64) error {
	if len(selectors) == 0 {
		return nil
	}

	for _, sel := range selectors {
		if _, err := e.Networks.NetworkBySelector(sel); err != nil {
			return err
		}
	}

	e.Networks = e.Networks.FilterWith(network.ChainSelectorFilter(selectors...))

	return nil
}

func loadNetworks(envDir string) (*network.Config, error) {
	var paths []string
	for _, name := range networkFileNames {
		p := filepath.Join(envDir, name)

		ok, err := fileutils.Exists(p)
		if err != nil {
			return nil, err
		}
		if ok {
			paths = append(paths, p)
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no network manifest found in %s", envDir)
	}

	cfg, err := network.Load(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load networks for %s: %w", envDir, err)
	}

	return cfg, nil
}

// loadAddressBook reads the address book at path. A missing file yields an empty book.
func loadAddressBook(path string) (AddressBook, error) {
	book := AddressBook{}

	ok, err := fileutils.Exists(path)
	if err != nil || !ok {
		return book, err
	}

	raw, err := jsonutils.LoadFile[map[string]map[string]string](path)
	if err != nil {
		return nil, err
	}

	for key, contracts := range raw {
		sel, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("address book: invalid chain selector %q: %w", key, err)
		}

		book[sel] = make(map[string]common.Address, len(contracts))
		for name, addr := range contracts {
			addr = helper.Ensure0x(strings.TrimSpace(addr))
			if !common.IsHexAddress(addr) {
				return nil, fmt.Errorf("address book: chain %d: contract %s: invalid address %q", sel, name, addr)
			}

			book[sel][name] = common.HexToAddress(addr)
		}
	}

	return book, nil
}
