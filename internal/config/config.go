package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/vip-learn-mcp/internal/common"
)

const (
	// SiteConfigFile is the JSON credentials document looked up next to the installation.
	SiteConfigFile = "config.json"
	// SettingsFile is the optional TOML file tuning logging, upstream and status behaviour.
	SettingsFile = "vip-learn-mcp.toml"

	defaultTimeout = 30 * time.Second
)

// Config represents the application configuration.
type Config struct {
	Site     SiteConfig           `toml:"-"`
	Server   ServerConfig         `toml:"server"`
	Upstream UpstreamConfig       `toml:"upstream"`
	Status   StatusConfig         `toml:"status"`
	Logging  common.LoggingConfig `toml:"logging"`
}

// SiteConfig is the VIP Learn site and the basic-auth credentials used for every request.
type SiteConfig struct {
	SiteURL  string `json:"siteUrl"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ServerConfig contains MCP server settings.
type ServerConfig struct {
	Name     string `toml:"name"`
	HTTPAddr string `toml:"http_addr"` // empty serves stdio
}

// UpstreamConfig controls how the relay talks to the VIP Learn REST API.
type UpstreamConfig struct {
	Timeout string `toml:"timeout"`
	// InsecureSkipVerify disables TLS certificate verification for the upstream.
	InsecureSkipVerify bool `toml:"insecure_skip_verify"`
	// FlagErrors marks upstream failures with isError on the tool result.
	FlagErrors bool   `toml:"flag_errors"`
	UserAgent  string `toml:"user_agent"`
}

// GetTimeout parses and returns the timeout duration
func (c *UpstreamConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return defaultTimeout
	}
	return d
}

// StatusConfig controls the status tool.
type StatusConfig struct {
	RemoteCheck bool   `toml:"remote_check"`
	LogFile     string `toml:"log_file"` // empty disables the status log
}

// ErrInvalidSiteConfig is returned when the site document lacks a required field.
var ErrInvalidSiteConfig = errors.New("invalid site config")

// Load builds the configuration with priority:
// defaults -> settings files -> env, then reads the required site document.
// Missing settings files are skipped; the site document is mandatory.
func Load(sitePath string, settingsPaths ...string) (*Config, error) {
	cfg := NewDefaultConfig()

	for _, path := range settingsPaths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	site, err := LoadSite(sitePath)
	if err != nil {
		return nil, err
	}
	cfg.Site = site

	return cfg, nil
}

// LoadSite reads and validates the JSON site document at path.
func LoadSite(path string) (SiteConfig, error) {
	var site SiteConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return site, fmt.Errorf("could not load %s: %w; create it with siteUrl, username, and password", path, err)
	}
	if err := json.Unmarshal(data, &site); err != nil {
		return site, fmt.Errorf("could not parse %s: %w; it must be a JSON object with siteUrl, username, and password", path, err)
	}
	if err := site.Validate(); err != nil {
		return site, fmt.Errorf("%s: %w", path, err)
	}

	site.SiteURL = strings.TrimRight(strings.TrimSpace(site.SiteURL), "/")
	return site, nil
}

// Validate checks that every field is present and that siteUrl is an absolute http(s) URL.
func (s SiteConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(s.SiteURL) == "" {
		missing = append(missing, "siteUrl")
	}
	if s.Username == "" {
		missing = append(missing, "username")
	}
	if s.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s (siteUrl, username, and password are required)",
			ErrInvalidSiteConfig, strings.Join(missing, ", "))
	}

	u, err := url.Parse(strings.TrimSpace(s.SiteURL))
	if err != nil {
		return fmt.Errorf("%w: siteUrl %q: %v", ErrInvalidSiteConfig, s.SiteURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: siteUrl %q must be an absolute http or https URL", ErrInvalidSiteConfig, s.SiteURL)
	}
	return nil
}

// applyEnvOverrides applies VIP_LEARN_* environment variable overrides to config.
func applyEnvOverrides(cfg *Config) error {
	if level := os.Getenv("VIP_LEARN_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if timeout := os.Getenv("VIP_LEARN_TIMEOUT"); timeout != "" {
		cfg.Upstream.Timeout = timeout
	}
	if v := os.Getenv("VIP_LEARN_INSECURE_SKIP_VERIFY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("VIP_LEARN_INSECURE_SKIP_VERIFY: %w", err)
		}
		cfg.Upstream.InsecureSkipVerify = b
	}
	if v := os.Getenv("VIP_LEARN_FLAG_ERRORS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("VIP_LEARN_FLAG_ERRORS: %w", err)
		}
		cfg.Upstream.FlagErrors = b
	}
	if path, ok := os.LookupEnv("VIP_LEARN_STATUS_LOG"); ok {
		cfg.Status.LogFile = path
	}
	if addr := os.Getenv("VIP_LEARN_HTTP_ADDR"); addr != "" {
		cfg.Server.HTTPAddr = addr
	}
	return nil
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(cfg *Config, httpAddr string) {
	if httpAddr != "" {
		cfg.Server.HTTPAddr = httpAddr
	}
}

// SiteConfigSearchPaths returns the candidate locations of the site document,
// binary-relative first. The first entry is the canonical installation path.
func SiteConfigSearchPaths() []string {
	return searchPaths(SiteConfigFile, true)
}

// SettingsSearchPaths returns the candidate locations of the settings file.
func SettingsSearchPaths() []string {
	return searchPaths(SettingsFile, false)
}

// ResolveSitePath returns explicit when set, otherwise the first existing
// candidate, otherwise the canonical path so the startup error names it.
func ResolveSitePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidates := SiteConfigSearchPaths()
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return candidates[0]
}

func searchPaths(name string, parent bool) []string {
	var paths []string
	if exe, err := os.Executable(); err == nil {
		binDir := filepath.Dir(exe)
		paths = append(paths, filepath.Join(binDir, name))
		if parent {
			paths = append(paths, filepath.Join(binDir, "..", name))
		}
	}
	paths = append(paths, name)

	seen := make(map[string]bool, len(paths))
	deduped := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		deduped = append(deduped, abs)
	}
	return deduped
}
