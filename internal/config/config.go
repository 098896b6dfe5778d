package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the rolodex configuration
type Config struct {
	Me       MeConfig                 `yaml:"me"`
	Rules    Rules                    `yaml:"rules"`
	Adapters map[string]AdapterConfig `yaml:"adapters"`
}

// MeConfig identifies the owner so their own addresses are never
// ingested as contacts.
type MeConfig struct {
	Name   string   `yaml:"name"`
	Emails []string `yaml:"emails"`
}

// AdapterConfig represents a mailbox adapter configuration
type AdapterConfig struct {
	Type    string                 `yaml:"type"`
	Enabled bool                   `yaml:"enabled"`
	Options map[string]interface{} `yaml:"options,omitempty"`
}

// Rules holds the keyword tables used by contact scanning. The scanning
// scripts this replaces each carried their own slightly different lists;
// here they are configuration with one consistent default set.
type Rules struct {
	NoiseKeywords   []string `yaml:"noise_keywords,omitempty"`
	NoiseDomains    []string `yaml:"noise_domains,omitempty"`
	PublicProviders []string `yaml:"public_providers,omitempty"`
	RecruiterWords  []string `yaml:"recruiter_keywords,omitempty"`
	ExecutiveWords  []string `yaml:"executive_keywords,omitempty"`
	ManagerWords    []string `yaml:"manager_keywords,omitempty"`
}

// DefaultRules returns the built-in keyword tables.
func DefaultRules() Rules {
	return Rules{
		NoiseKeywords: []string{
			"noreply", "no-reply", "newsletter", "marketing", "promotions",
			"unsubscribe", "automated", "mailer-daemon", "bounce",
			"info@", "support@", "help@", "system@",
		},
		NoiseDomains: []string{
			"substack.com", "skool.com", "mailchimp.com", "sendgrid.net",
		},
		PublicProviders: []string{
			"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
			"icloud.com", "me.com",
		},
		RecruiterWords: []string{"recruit", "talent", "hr@", "hiring"},
		ExecutiveWords: []string{"ceo", "cto", "cfo", "vp ", "founder", "president"},
		ManagerWords:   []string{"manager", "director", "head of", "lead"},
	}
}

// WithDefaults fills any table the config file left empty.
func (r Rules) WithDefaults() Rules {
	def := DefaultRules()
	if len(r.NoiseKeywords) == 0 {
		r.NoiseKeywords = def.NoiseKeywords
	}
	if len(r.NoiseDomains) == 0 {
		r.NoiseDomains = def.NoiseDomains
	}
	if len(r.PublicProviders) == 0 {
		r.PublicProviders = def.PublicProviders
	}
	if len(r.RecruiterWords) == 0 {
		r.RecruiterWords = def.RecruiterWords
	}
	if len(r.ExecutiveWords) == 0 {
		r.ExecutiveWords = def.ExecutiveWords
	}
	if len(r.ManagerWords) == 0 {
		r.ManagerWords = def.ManagerWords
	}
	return r
}

// GetConfigDir returns the XDG-compliant config directory
func GetConfigDir() (string, error) {
	// Explicit override (useful for tests and portable installs)
	if override := os.Getenv("ROLODEX_CONFIG_DIR"); override != "" {
		return override, nil
	}

	var base string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		base = xdg
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "rolodex"), nil
}

// GetDataDir returns the platform-specific data directory
func GetDataDir() (string, error) {
	// Explicit override (useful for tests and portable installs)
	if override := os.Getenv("ROLODEX_DATA_DIR"); override != "" {
		return override, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "Rolodex"), nil
	}

	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "rolodex"), nil
	}

	return filepath.Join(home, ".local", "share", "rolodex"), nil
}

// Load loads config from the config file
func Load() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config
			return &Config{
				Rules:    DefaultRules(),
				Adapters: make(map[string]AdapterConfig),
			}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Rules = cfg.Rules.WithDefaults()
	if cfg.Adapters == nil {
		cfg.Adapters = make(map[string]AdapterConfig)
	}

	return &cfg, nil
}

// Save saves the config to the config file
func (c *Config) Save() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
