// Package config loads storefront settings from storefront.yaml, the
// environment (STOREFRONT_*) and command-line flags, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileName = "storefront"
	configFileType = "yaml"
	envPrefix      = "STOREFRONT"
)

// Config keys.
const (
	KeyAPIURL       = "api_url"
	KeyPageSize     = "page_size"
	KeyFetchTimeout = "fetch_timeout"
	KeyJournal      = "journal"
	KeyFacetsDir    = "facets_dir"
	KeyMockAddr     = "mock_addr"
)

// flagNames maps config keys to the command-line flags that override them.
var flagNames = map[string]string{
	KeyAPIURL:       "api-url",
	KeyPageSize:     "page-size",
	KeyFetchTimeout: "fetch-timeout",
	KeyJournal:      "journal",
	KeyFacetsDir:    "facets",
	KeyMockAddr:     "addr",
}

// Defaults.
const (
	DefaultAPIURL       = "http://localhost:3000"
	DefaultPageSize     = 9
	DefaultFetchTimeout = 5 * time.Second
	DefaultJournal      = "storefront.db"
	DefaultMockAddr     = "localhost:3000"
)

// Config is the resolved configuration.
type Config struct {
	APIURL       string        `mapstructure:"api_url" json:"api_url"`
	PageSize     int           `mapstructure:"page_size" json:"page_size"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" json:"fetch_timeout"`
	// Journal is the SQLite journal path. Empty disables journaling.
	Journal string `mapstructure:"journal" json:"journal"`
	// FacetsDir holds CUE facet declarations. Empty uses the built-in ones.
	FacetsDir string `mapstructure:"facets_dir" json:"facets_dir"`
	MockAddr  string `mapstructure:"mock_addr" json:"mock_addr"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" json:"file,omitempty"`
}

// DefaultYAML is a commented config file with every default.
const DefaultYAML = `# storefront configuration
api_url: http://localhost:3000
page_size: 9
fetch_timeout: 5s

# SQLite journal of events and queries (empty disables it)
journal: storefront.db

# Directory of CUE facet declarations (default: built-in)
# facets_dir: facets

# Listen address of 'storefront mockapi'
mock_addr: localhost:3000
`

// Load resolves the configuration. file is an explicit config file; when
// empty, storefront.yaml is searched in the working directory and
// $HOME/.config/storefront, and a missing file is not an error. Flags that
// were set on the command line take precedence over everything else.
func Load(file string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyPageSize, DefaultPageSize)
	v.SetDefault(KeyFetchTimeout, DefaultFetchTimeout)
	v.SetDefault(KeyJournal, DefaultJournal)
	v.SetDefault(KeyFacetsDir, "")
	v.SetDefault(KeyMockAddr, DefaultMockAddr)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/storefront")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagNames {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("%s is required", KeyAPIURL)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyPageSize, c.PageSize)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyFetchTimeout, c.FetchTimeout)
	}
	return nil
}
