package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultConcurrency  = 4
	DefaultArtifactsDir = "artifacts"
	DefaultRPCAttempts  = 3
	DefaultRPCDelay     = time.Second
	DefaultRPCTimeout   = 10 * time.Second
)

// RPCConfig controls how chain RPC calls are retried.
type RPCConfig struct {
	Attempts uint          `mapstructure:"attempts" yaml:"attempts"` // Attempts per endpoint before falling back to the next one
	Delay    time.Duration `mapstructure:"delay" yaml:"delay"`       // Delay between attempts
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`   // Timeout of a single attempt
}

// Config holds the runtime settings shared by every command.
type Config struct {
	Concurrency  int       `mapstructure:"concurrency" yaml:"concurrency"`     // Chains processed at the same time
	Verbose      bool      `mapstructure:"verbose" yaml:"verbose"`             // Log executed commands and their output
	ArtifactsDir string    `mapstructure:"artifacts_dir" yaml:"artifacts_dir"` // Where reports are written
	RPC          RPCConfig `mapstructure:"rpc" yaml:"rpc"`
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}

	if c.RPC.Attempts < 1 {
		return errors.New("rpc attempts must be at least 1")
	}

	if c.ArtifactsDir == "" {
		return errors.New("artifacts dir is required")
	}

	return nil
}

// Defaults returns the settings used when neither a file nor env vars provide a value.
func Defaults() *Config {
	return &Config{
		Concurrency:  DefaultConcurrency,
		ArtifactsDir: DefaultArtifactsDir,
		RPC: RPCConfig{
			Attempts: DefaultRPCAttempts,
			Delay:    DefaultRPCDelay,
			Timeout:  DefaultRPCTimeout,
		},
	}
}

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
func Load(filePath string) (*Config, error) {
	v := newViper()

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if filePath != "" {
		v.SetConfigFile(filePath)

		if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read settings file %s: %w", filePath, err)
			}
		}
	}

	return unmarshal(v)
}

// LoadEnv loads the config from the environment variables.
func LoadEnv() (*Config, error) {
	return Load("")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("verbose", false)
	v.SetDefault("artifacts_dir", DefaultArtifactsDir)
	v.SetDefault("rpc.attempts", DefaultRPCAttempts)
	v.SetDefault("rpc.delay", DefaultRPCDelay)
	v.SetDefault("rpc.timeout", DefaultRPCTimeout)

	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return cfg, nil
}

var (
	// envBindings maps config keys to the environment variables that can provide their value.
	// The first name is preferred, later ones are kept for existing scripts.
	envBindings = map[string][]string{
		"concurrency":   {"INFRA_CONCURRENCY"},
		"verbose":       {"INFRA_VERBOSE", "VERBOSE"},
		"artifacts_dir": {"INFRA_ARTIFACTS_DIR"},
		"rpc.attempts":  {"INFRA_RPC_ATTEMPTS"},
		"rpc.delay":     {"INFRA_RPC_DELAY"},
		"rpc.timeout":   {"INFRA_RPC_TIMEOUT"},
	}
)

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}
