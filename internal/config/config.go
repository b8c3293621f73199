// Package config loads the command line tool configuration from a YAML
// file, EVMSCRIPT_* environment variables and flags, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/branched-services/go-evmscript"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. EVMSCRIPT_RPC_URL.
	EnvPrefix = "EVMSCRIPT"

	defaultConfigName = "evmscript"

	// keyDelim separates nested keys. Address book names contain dots, so
	// viper's default "." cannot be used.
	keyDelim = "::"
)

// Config is the full tool configuration.
type Config struct {
	RPCURL   string            `mapstructure:"rpc_url"`
	Timeout  time.Duration     `mapstructure:"timeout"`
	Log      LogConfig         `mapstructure:"log"`
	Agents   AgentsConfig      `mapstructure:"agents"`
	ENS      ENSConfig         `mapstructure:"ens"`
	Book     map[string]string `mapstructure:"address_book"`
	Cache    CacheConfig       `mapstructure:"cache"`
	Retry    RetryConfig       `mapstructure:"retry"`
	Metadata MetadataConfig    `mapstructure:"metadata"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// AgentsConfig holds the executor agent of each proposal type.
type AgentsConfig struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
}

type ENSConfig struct {
	Registry string `mapstructure:"registry"`
}

// CacheConfig controls the resolver cache. A zero TTL disables it.
type CacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

type RetryConfig struct {
	Attempts uint          `mapstructure:"attempts"`
	Delay    time.Duration `mapstructure:"delay"`
}

type MetadataConfig struct {
	Dir string `mapstructure:"dir"`
}

func key(parts ...string) string {
	return strings.Join(parts, keyDelim)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rpc_url", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault(key("log", "level"), "info")
	v.SetDefault(key("log", "development"), false)
	v.SetDefault(key("agents", "primary"), "")
	v.SetDefault(key("agents", "secondary"), "")
	v.SetDefault(key("ens", "registry"), "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")
	v.SetDefault(key("cache", "ttl"), 10*time.Minute)
	v.SetDefault(key("cache", "max_entries"), 10_000)
	v.SetDefault(key("retry", "attempts"), 3)
	v.SetDefault(key("retry", "delay"), 200*time.Millisecond)
	v.SetDefault(key("metadata", "dir"), "proposals")
}

// Load reads the configuration. When path is empty, evmscript.yaml is
// looked up in the working directory and $HOME/.evmscript; a missing file
// is not an error. Flags that were set on the command line override both
// file and environment. The result is validated.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelim))
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelim, "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.evmscript")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"rpc-url":      "rpc_url",
	"log-level":    key("log", "level"),
	"metadata-dir": key("metadata", "dir"),
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("config: bind --%s: %w", name, err)
		}
	}
	return nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.Agents.Primary != "" && !common.IsHexAddress(c.Agents.Primary) {
		errs = append(errs, fmt.Errorf("agents.primary is not an address: %q", c.Agents.Primary))
	}
	if c.Agents.Secondary != "" && !common.IsHexAddress(c.Agents.Secondary) {
		errs = append(errs, fmt.Errorf("agents.secondary is not an address: %q", c.Agents.Secondary))
	}
	if c.ENS.Registry != "" && !common.IsHexAddress(c.ENS.Registry) {
		errs = append(errs, fmt.Errorf("ens.registry is not an address: %q", c.ENS.Registry))
	}
	for name, addr := range c.Book {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, errors.New("address_book has an empty name"))
		}
		if !common.IsHexAddress(addr) {
			errs = append(errs, fmt.Errorf("address_book[%s] is not an address: %q", name, addr))
		}
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL))
	}
	if c.Cache.MaxEntries < 0 {
		errs = append(errs, fmt.Errorf("cache.max_entries must not be negative, got %d", c.Cache.MaxEntries))
	}
	if c.Retry.Attempts == 0 {
		errs = append(errs, errors.New("retry.attempts must be at least 1"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return nil
}

// AgentAddresses returns the configured agents. Unset proposal types are
// omitted.
func (c *Config) AgentAddresses() evmscript.AgentAddresses {
	agents := evmscript.AgentAddresses{}
	if c.Agents.Primary != "" {
		agents[evmscript.Primary] = common.HexToAddress(c.Agents.Primary)
	}
	if c.Agents.Secondary != "" {
		agents[evmscript.Secondary] = common.HexToAddress(c.Agents.Secondary)
	}
	return agents
}

// AddressBook returns the static name -> address entries.
func (c *Config) AddressBook() map[string]common.Address {
	book := make(map[string]common.Address, len(c.Book))
	for name, addr := range c.Book {
		book[name] = common.HexToAddress(addr)
	}
	return book
}

// Registry returns the ENS registry address.
func (c *Config) Registry() common.Address {
	return common.HexToAddress(c.ENS.Registry)
}
