package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvAPIKey = "DAYTONA_API_KEY"
	EnvTarget = "DAYTONA_TARGET"
	EnvAPIURL = "DAYTONA_API_URL"

	DefaultTarget       = "us"
	DefaultAPIURL       = "https://app.daytona.io/api"
	DefaultTimeout      = 60 * time.Minute
	DefaultSnapshotName = "recordplatform-test-env"
	DefaultBaseImage    = "docker:28.3.3-dind"
	DefaultRepoURL      = "https://github.com/SoarCollab/RecordPlatform.git"
	DefaultBranch       = "main"
)

// ErrMissingAPIKey is returned by Load when no API key is configured.
var ErrMissingAPIKey = errors.New(EnvAPIKey + " environment variable is required")

// Config is populated once at startup and passed down explicitly.
type Config struct {
	APIKey  string
	APIURL  string
	Target  string
	Timeout time.Duration

	SnapshotName string
	BaseImage    string
	RepoURL      string
	Branch       string
}

// Bind registers keys, env names and defaults on v.
func Bind(v *viper.Viper) {
	_ = v.BindEnv("api-key", EnvAPIKey)
	_ = v.BindEnv("target", EnvTarget)
	_ = v.BindEnv("api-url", EnvAPIURL)

	v.SetDefault("target", DefaultTarget)
	v.SetDefault("api-url", DefaultAPIURL)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("snapshot", DefaultSnapshotName)
	v.SetDefault("image", DefaultBaseImage)
	v.SetDefault("repo-url", DefaultRepoURL)
	v.SetDefault("branch", DefaultBranch)
}

// Load builds a Config from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		APIKey:       strings.TrimSpace(v.GetString("api-key")),
		APIURL:       strings.TrimSpace(v.GetString("api-url")),
		Target:       strings.TrimSpace(v.GetString("target")),
		Timeout:      v.GetDuration("timeout"),
		SnapshotName: strings.TrimSpace(v.GetString("snapshot")),
		BaseImage:    strings.TrimSpace(v.GetString("image")),
		RepoURL:      strings.TrimSpace(v.GetString("repo-url")),
		Branch:       strings.TrimSpace(v.GetString("branch")),
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.Target == "" {
		c.Target = DefaultTarget
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.SnapshotName == "" {
		c.SnapshotName = DefaultSnapshotName
	}
	if c.BaseImage == "" {
		c.BaseImage = DefaultBaseImage
	}
	if c.RepoURL == "" {
		c.RepoURL = DefaultRepoURL
	}
	if c.Branch == "" {
		c.Branch = DefaultBranch
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("api url must be http(s), got %q", c.APIURL)
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

// DefaultConfigDir is where the optional config.yaml is looked up.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "sandbox-runner")
}
