package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the central application configuration
type Config struct {
	// WikiID identifies the wiki this process runs as (e.g. "enwiki").
	WikiID string `mapstructure:"wiki_id"`

	// CentralWiki is the database name of the wiki that hosts the
	// canonical user pages (e.g. "metawiki").
	CentralWiki string `mapstructure:"central_wiki"`

	// APIURL is the central wiki's api.php endpoint.
	APIURL string `mapstructure:"api_url"`

	// APITimeout bounds each outbound API call.
	APITimeout time.Duration `mapstructure:"api_timeout"`

	// CacheExpiry is the TTL for successfully rendered pages.
	CacheExpiry time.Duration `mapstructure:"cache_expiry"`

	// FooterMessage is an optional message key rendered below global
	// user pages. Empty disables the footer.
	FooterMessage string `mapstructure:"footer_message"`

	// Wikis is the static list of participant wikis the fan-out targets.
	Wikis []string `mapstructure:"wikis"`

	// WikiURLs maps wiki IDs to their article base URL, e.g.
	// "metawiki" -> "https://meta.example.org/wiki". Used to resolve
	// source URLs without an API round trip.
	WikiURLs map[string]string `mapstructure:"wiki_urls"`

	// CentralDBPath is the path of the central wiki's replica database.
	CentralDBPath string `mapstructure:"central_db_path"`

	// CacheDBPath is the path of the shared cache database.
	CacheDBPath string `mapstructure:"cache_db_path"`

	// UseCDNCache and UseFileCache describe which front-end caches this
	// deployment runs; with neither enabled, plain content invalidations
	// are skipped as no-ops.
	UseCDNCache  bool `mapstructure:"use_cdn_cache"`
	UseFileCache bool `mapstructure:"use_file_cache"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "config.yaml"
	}

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	// Set default values
	viper.SetDefault("api_timeout", "10s")
	viper.SetDefault("cache_expiry", "168h")
	viper.SetDefault("central_db_path", "central.db")
	viper.SetDefault("cache_db_path", "cache.db")
	viper.SetDefault("use_cdn_cache", false)
	viper.SetDefault("use_file_cache", false)

	// Read configuration file
	if err := viper.ReadInConfig(); err != nil {
		// If config file doesn't exist, that's okay - we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// Validate checks the fields every component depends on.
func (c *Config) Validate() error {
	if c.CentralWiki == "" {
		return fmt.Errorf("central_wiki must be set")
	}
	if c.APIURL == "" {
		return fmt.Errorf("api_url must be set")
	}
	return nil
}
