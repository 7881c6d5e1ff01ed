
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor SITE_CONFIG is set.
const DefaultPath = "./site.yaml"

var ErrInvalid = errors.New("invalid config")

type Config struct {
	SiteURL         string        `yaml:"site_url"`
	Production      bool          `yaml:"production"`
	Data            DataConfig    `yaml:"data"`
	OutputDir       string        `yaml:"output_dir"`
	PartnerDomains  []string      `yaml:"partner_domains"`
	PassThroughTags []string      `yaml:"pass_through_tags"`
	PopularLimit    int           `yaml:"popular_limit"`
	LatestLimit     int           `yaml:"latest_limit"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	LogLevel        string        `yaml:"log_level"`
}

// DataConfig names each dataset source. Sources may be local paths or
// http(s) URLs of pre-built files.
type DataConfig struct {
	// Content is the site's input root. Every page under it is classified;
	// Posts is read as well when it lies outside Content.
	Content     string `yaml:"content"`
	Webmentions string `yaml:"webmentions"`
	BlockList   string `yaml:"block_list"`
	Analytics   string `yaml:"analytics"`
	Posts       string `yaml:"posts"`
}

func (c *Config) defaults() {
	if c.SiteURL == "" {
		c.SiteURL = "https://www.zachleat.com"
	}
	if c.Data.Content == "" {
		c.Data.Content = "."
	}
	if c.Data.Webmentions == "" {
		c.Data.Webmentions = "_data/webmentions.json"
	}
	if c.Data.BlockList == "" {
		c.Data.BlockList = "_data/webmentionsBlockList.json"
	}
	if c.Data.Analytics == "" {
		c.Data.Analytics = "_data/analytics.json"
	}
	if c.Data.Posts == "" {
		c.Data.Posts = "_posts"
	}
	if c.OutputDir == "" {
		c.OutputDir = "_site/_data"
	}
	if c.PartnerDomains == nil {
		c.PartnerDomains = []string{"filamentgroup.com"}
	}
	if c.PassThroughTags == nil {
		c.PassThroughTags = []string{"eleventy", "project", "note", "web-components"}
	}
	if c.PopularLimit == 0 {
		c.PopularLimit = 20
	}
	if c.LatestLimit == 0 {
		c.LatestLimit = 5
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.defaults()
	return cfg
}

// Path returns the config file path from the flag value, SITE_CONFIG or
// the default.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv("SITE_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads .env (if present), the YAML file at path, applies defaults and
// environment overrides, and validates the result. A missing file at
// DefaultPath is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg.defaults()
	applyEnvironmentOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvironmentOverrides(cfg *Config) {
	if os.Getenv("ELEVENTY_PRODUCTION") != "" {
		cfg.Production = true
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		cfg.SiteURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.SiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: site_url %q must be an absolute url", ErrInvalid, c.SiteURL)
	}
	if c.PopularLimit < 0 || c.PopularLimit > 20 {
		return fmt.Errorf("%w: popular_limit must be between 1 and 20", ErrInvalid)
	}
	if c.LatestLimit < 0 {
		return fmt.Errorf("%w: latest_limit must be positive", ErrInvalid)
	}
	return nil
}
