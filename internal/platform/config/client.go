package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ClientConfigEnv names the environment variable holding the default client config path.
const ClientConfigEnv = "CONTRAX_CONFIG"

// ClientConfig configures cmd/contrax.
type ClientConfig struct {
	APIBaseURL string        `yaml:"api_base_url"`
	ViewerID   int           `yaml:"viewer_id"`
	Timeout    time.Duration `yaml:"timeout"`

	// RSVPRetries resends an RSVP after a network error. The server deduplicates retries.
	RSVPRetries int `yaml:"rsvp_retries"`

	// Templates override the list templates. Values are JSON string literals, the
	// way the page embeds them; empty entries keep the built-in template.
	Templates TemplateConfig `yaml:"templates"`
}

type TemplateConfig struct {
	SubmissionsTpl   string `yaml:"submissionsTpl"`
	UserLinkTpl      string `yaml:"userLinkTpl"`
	PresenterLinkTpl string `yaml:"presenterLinkTpl"`
	UserTextTpl      string `yaml:"userTextTpl"`
}

func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		APIBaseURL:  "http://localhost:8080",
		Timeout:     10 * time.Second,
		RSVPRetries: 1,
	}
}

// LoadClient loads the file named by CONTRAX_CONFIG, or the defaults when it is unset.
func LoadClient() (*ClientConfig, error) {
	path := os.Getenv(ClientConfigEnv)
	if path == "" {
		cfg := DefaultClientConfig()
		return cfg, cfg.Validate()
	}
	return LoadClientFile(path)
}

// LoadClientFile reads a YAML client config. Keys missing from the file keep their defaults.
func LoadClientFile(path string) (*ClientConfig, error) {
	cfg := DefaultClientConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read client config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse client config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ClientConfig) Validate() error {
	var errs []error

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api_base_url must be an http(s) URL (got %q)", c.APIBaseURL))
	}
	if c.ViewerID < 0 {
		errs = append(errs, fmt.Errorf("viewer_id must not be negative"))
	}
	if c.RSVPRetries < 0 {
		errs = append(errs, fmt.Errorf("rsvp_retries must not be negative"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}

	return errors.Join(errs...)
}
