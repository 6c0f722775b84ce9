package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type GatewayConfig struct {
	// CDP API key name; doubles as the JWT subject and kid.
	KeyName string `yaml:"key_name"`
	// EC private key in PEM form. Escaped newlines from env/textarea
	// input are normalized before parsing.
	PrivateKey string `yaml:"private_key"`
	// Shared secret of the webhook subscription.
	WebhookSecret string `yaml:"webhook_secret"`
	// Enabled gates webhook processing, mirroring the module-activation
	// flag in the billing system.
	Enabled bool `yaml:"enabled"`
	// ReturnURL is the storefront invoice page visitors come back to.
	ReturnURL string `yaml:"return_url"`
	// APIBase overrides the provider endpoint, for tests/sandboxes.
	APIBase string `yaml:"api_base"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type Config struct {
	Gateway  GatewayConfig  `yaml:"gateway"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// Load reads a YAML config file, expands ${ENV} references and applies
// defaults. Secrets are expected to arrive via the environment.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	expanded := os.Expand(string(b), func(key string) string {
		return os.Getenv(key)
	})

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Gateway.KeyName == "" {
		missing = append(missing, "gateway.key_name")
	}
	if c.Gateway.PrivateKey == "" {
		missing = append(missing, "gateway.private_key")
	}
	if c.Gateway.WebhookSecret == "" {
		missing = append(missing, "gateway.webhook_secret")
	}
	if c.Gateway.ReturnURL == "" {
		missing = append(missing, "gateway.return_url")
	}
	if c.Database.URL == "" {
		missing = append(missing, "database.url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
