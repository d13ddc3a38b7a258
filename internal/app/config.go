package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete desk configuration, loadable from environment
// variables (DESK_ prefix), flags, or YAML config files.
type Config struct {
	APIURL      string        `usage:"CRM API base URL, e.g. https://crm.example.com/api (DESK_API_URL or CRM_API_URL)" flag:"api-url"`
	Token       string        `usage:"Pre-issued access token; skips the login step (DESK_TOKEN)" flag:"token"`
	LoadTimeout time.Duration `default:"30s" usage:"Timeout for loading catalog and contacts" flag:"load-timeout"`
	HTTP        HTTPConfig
}

// HTTPConfig controls the outgoing HTTP client.
type HTTPConfig struct {
	Timeout time.Duration `default:"15s" usage:"Per-request timeout" flag:"http-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "DESK",
		Files:     []string{"orderdesk.yaml", "/etc/orderdesk/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports configuration that cannot be run with.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("API URL is required: set DESK_API_URL or CRM_API_URL")
	}
	if c.HTTP.Timeout < 0 || c.LoadTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

// applyPlatformDefaults maps the shared CRM_API_URL variable to the
// DESK_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.APIURL == "" {
		if v := os.Getenv("CRM_API_URL"); v != "" {
			c.APIURL = v
		}
	}
}
