package network

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Manifest is the file representation of network configuration.
type Manifest struct {
	// An array of networks.
	Networks []Network `yaml:"networks" toml:"networks"`
}

// Config represents the configuration of a collection of networks. This is loaded from the
// manifest file/s.
type Config struct {
	// networks is a map of networks by their chain selector. This differs from the manifest
	// representation of the networks so that we can ensure uniqueness and quickly lookup a network
	// by its chain selector.
	networks map[uint64]Network
}

// NewConfig creates a new config from a slice of networks. Any duplicate chain selectors will
// be overwritten.
func NewConfig(networks []Network) *Config {
	nmap := make(map[uint64]Network)

	for _, network := range networks {
		nmap[network.ChainSelector] = network
	}

	return &Config{
		networks: nmap,
	}
}

// Validate ensures that all networks are valid.
func (c *Config) Validate() error {
	for _, network := range c.Networks() {
		if err := network.Validate(); err != nil {
			return fmt.Errorf("network %d: %w", network.ChainSelector, err)
		}
	}

	return nil
}

// Networks returns all networks in the config, ordered by chain selector.
func (c *Config) Networks() []Network {
	networks := make([]Network, 0, len(c.networks))
	for _, sel := range c.ChainSelectors() {
		networks = append(networks, c.networks[sel])
	}

	return networks
}

// NetworkBySelector retrieves a network by its chain selector. If the network is not found, an
// error is returned.
func (c *Config) NetworkBySelector(selector uint64) (Network, error) {
	network, ok := c.networks[selector]
	if !ok {
		return Network{}, fmt.Errorf("network with selector %d not found in configuration", selector)
	}

	return network, nil
}

// ChainSelectors returns the sorted chain selectors of the Config.
func (c *Config) ChainSelectors() []uint64 {
	return slices.Sorted(maps.Keys(c.networks))
}

// Merge merges another config into the current config.
// It overwrites any networks with the same chain selector.
func (c *Config) Merge(other *Config) {
	maps.Copy(c.networks, other.networks)
}

// MarshalYAML implements the yaml.Marshaler interface for the Config struct.
func (c *Config) MarshalYAML() (any, error) {
	return Manifest{Networks: c.Networks()}, nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for the Config struct.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	node := Manifest{}

	if err := value.Decode(&node); err != nil {
		return err
	}

	*c = *NewConfig(node.Networks)

	return nil
}

// NetworkFilter defines a function type that filters networks based on certain criteria.
type NetworkFilter func(Network) bool

// FilterWith returns a new Config containing only Networks that pass all provided filter functions.
func (c *Config) FilterWith(filters ...NetworkFilter) *Config {
	networks := c.Networks()

	for _, filter := range filters {
		networks = slices.DeleteFunc(networks, func(network Network) bool {
			return !filter(network)
		})
	}

	return NewConfig(networks)
}

// TypesFilter returns a filter function that matches chains with the specified network types.
func TypesFilter(networkTypes ...NetworkType) NetworkFilter {
	return func(network Network) bool {
		return slices.Contains(networkTypes, network.Type)
	}
}

// ChainSelectorFilter returns a filter function that matches chains with one of the specified
// chain selectors.
func ChainSelectorFilter(selectors ...uint64) NetworkFilter {
	return func(network Network) bool {
		return slices.Contains(selectors, network.ChainSelector)
	}
}

// ChainFamilyFilter returns a filter function that matches chains with the specified chain family.
func ChainFamilyFilter(chainFamily string) NetworkFilter {
	return func(network Network) bool {
		family, err := network.ChainFamily()
		if err != nil {
			return false
		}

		return family == chainFamily
	}
}

// Load loads configuration from the specified file paths, and merges them into a single Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
func Load(filePaths ...string) (*Config, error) {
	cfg := NewConfig([]Network{})

	for _, fp := range filePaths {
		fileCfg, err := loadFile(fp)
		if err != nil {
			return nil, err
		}

		cfg.Merge(fileCfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate networks configuration: %w", err)
	}

	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read networks file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var manifest Manifest
		if err := toml.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal networks TOML: %w", err)
		}

		return NewConfig(manifest.Networks), nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal networks YAML: %w", err)
	}

	// An empty document leaves the map unset.
	if cfg.networks == nil {
		cfg.networks = map[uint64]Network{}
	}

	return &cfg, nil
}
