package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the configuration file used when no other one is
	// specified.
	DefaultConfigFile = "neo-migrate.yml"
	// DefaultArtifactsPath is the default directory with compiled contracts.
	DefaultArtifactsPath = "./build/contracts"
	// DefaultStatePath is the default location of the migration state DB.
	DefaultStatePath = "./.neo-migrate/state.db"
	// DefaultNetworkTimeout is the default timeout for the whole migration
	// run against a single network. It covers transaction awaiting.
	DefaultNetworkTimeout = 3 * time.Minute
)

// Version is the version of the tool, set at build time.
var Version string

// Config is the top-level configuration structure.
type Config struct {
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
	Networks                 map[string]Network       `yaml:"Networks"`
}

// ApplicationConfiguration contains settings that don't depend on the
// network the migrations are run against.
type ApplicationConfiguration struct {
	LogLevel      string `yaml:"LogLevel"`
	LogPath       string `yaml:"LogPath"`
	ArtifactsPath string `yaml:"ArtifactsPath"`
	StatePath     string `yaml:"StatePath"`
	// MetricsFile is a Prometheus textfile-collector file to write migration
	// metrics to after each run. Empty means no metrics are written.
	MetricsFile string `yaml:"MetricsFile"`
}

// Network describes a single network migrations can be run against.
type Network struct {
	RPCEndpoint string `yaml:"RPCEndpoint"`
	// Wallet is a path to NEP-6 wallet with the deployer account.
	Wallet string `yaml:"Wallet"`
	// WalletConfig is a path to YAML file with wallet path and password,
	// it conflicts with Wallet.
	WalletConfig string `yaml:"WalletConfig"`
	// Address of the deployer account, wallet's default one is used if empty.
	Address      string        `yaml:"Address"`
	SkipDeployed bool          `yaml:"SkipDeployed"`
	Timeout      time.Duration `yaml:"Timeout"`
}

// Wallet is a wallet path/password pair stored in a wallet config file.
type Wallet struct {
	Path     string `yaml:"Path"`
	Password string `yaml:"Password"`
}

var (
	errNoEndpoint         = errors.New("no RPC endpoint")
	errNoWallet           = errors.New("no wallet")
	errConflictingWallets = errors.New("both Wallet and WalletConfig are specified")
)

// Default returns configuration with all default values set.
func Default() Config {
	return Config{
		ApplicationConfiguration: ApplicationConfiguration{
			LogLevel:      "info",
			ArtifactsPath: DefaultArtifactsPath,
			StatePath:     DefaultStatePath,
		},
		Networks: make(map[string]Network),
	}
}

// Load attempts to load the config from the given directory, it looks for
// DefaultConfigFile there.
func Load(path string) (Config, error) {
	return LoadFile(filepath.Join(path, DefaultConfigFile))
}

// LoadFile loads config from the provided path. Relative paths inside of it
// are left as is, they're resolved against the working directory.
func LoadFile(configPath string) (Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	config := Default()
	err = yaml.Unmarshal(configData, &config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if config.Networks == nil {
		config.Networks = make(map[string]Network)
	}
	for name, n := range config.Networks {
		if n.Timeout == 0 {
			n.Timeout = DefaultNetworkTimeout
		}
		config.Networks[name] = n
	}
	return config, nil
}

// Network returns configuration for the network with the given name.
func (c Config) Network(name string) (Network, error) {
	n, ok := c.Networks[name]
	if !ok {
		return Network{}, fmt.Errorf("unknown network %q, configured ones: %v", name, c.NetworkNames())
	}
	return n, nil
}

// NetworkNames returns sorted names of all configured networks.
func (c Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that network configuration is sufficient to run
// migrations.
func (n Network) Validate() error {
	if n.RPCEndpoint == "" {
		return errNoEndpoint
	}
	if n.Wallet != "" && n.WalletConfig != "" {
		return errConflictingWallets
	}
	if n.Wallet == "" && n.WalletConfig == "" {
		return errNoWallet
	}
	return nil
}

// ReadWalletConfig reads wallet config from the given path.
func ReadWalletConfig(configPath string) (*Wallet, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read wallet config: %w", err)
	}

	cfg := &Wallet{}
	err = yaml.Unmarshal(configData, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet config YAML: %w", err)
	}
	return cfg, nil
}
