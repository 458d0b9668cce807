package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func writeSite(t *testing.T, dir string) string {
	t.Helper()
	return writeFile(t, dir, "config.json", `{"siteUrl":"https://example.org/","username":"u","password":"p"}`)
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "vip-learn-mcp", cfg.Server.Name)
	assert.Empty(t, cfg.Server.HTTPAddr)
	assert.False(t, cfg.Upstream.InsecureSkipVerify, "TLS verification must be on by default")
	assert.False(t, cfg.Upstream.FlagErrors)
	assert.Equal(t, 30*time.Second, cfg.Upstream.GetTimeout())
	assert.True(t, cfg.Status.RemoteCheck)
	assert.Empty(t, cfg.Status.LogFile)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"console"}, cfg.Logging.Outputs)
}

func TestLoadSite_Valid(t *testing.T) {
	path := writeSite(t, t.TempDir())

	site, err := LoadSite(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.org", site.SiteURL, "trailing slash is stripped")
	assert.Equal(t, "u", site.Username)
	assert.Equal(t, "p", site.Password)
}

func TestLoadSite_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	_, err := LoadSite(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "siteUrl, username, and password")
}

func TestLoadSite_InvalidJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.json", `{"siteUrl": `)

	_, err := LoadSite(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not parse")
	assert.Contains(t, err.Error(), path)
}

func TestLoadSite_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing string
	}{
		{"no siteUrl", `{"username":"u","password":"p"}`, "siteUrl"},
		{"no username", `{"siteUrl":"https://example.org","password":"p"}`, "username"},
		{"no password", `{"siteUrl":"https://example.org","username":"u"}`, "password"},
		{"empty object", `{}`, "siteUrl, username, password"},
		{"blank siteUrl", `{"siteUrl":"  ","username":"u","password":"p"}`, "siteUrl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.json", tt.body)

			_, err := LoadSite(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSiteConfig))
			assert.Contains(t, err.Error(), "missing "+tt.missing)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestSiteConfig_Validate_URL(t *testing.T) {
	tests := []struct {
		url string
		ok  bool
	}{
		{"https://example.org", true},
		{"http://localhost:8080", true},
		{"example.org", false},
		{"ftp://example.org", false},
		{"https://", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := SiteConfig{SiteURL: tt.url, Username: "u", Password: "p"}.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidSiteConfig)
			}
		})
	}
}

func TestLoad_DefaultsWithoutSettings(t *testing.T) {
	dir := t.TempDir()
	site := writeSite(t, dir)

	cfg, err := Load(site, filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "https://example.org", cfg.Site.SiteURL)
	assert.True(t, cfg.Status.RemoteCheck)
}

func TestLoad_SettingsTOML(t *testing.T) {
	dir := t.TempDir()
	site := writeSite(t, dir)
	settings := writeFile(t, dir, "vip-learn-mcp.toml", `
[server]
name = "learn"
http_addr = ":4300"

[upstream]
timeout = "5s"
insecure_skip_verify = true
flag_errors = true
user_agent = "custom/1.0"

[status]
remote_check = false
log_file = "/tmp/status.log"

[logging]
level = "debug"
outputs = ["console", "file"]
`)

	cfg, err := Load(site, settings)
	require.NoError(t, err)

	assert.Equal(t, "learn", cfg.Server.Name)
	assert.Equal(t, ":4300", cfg.Server.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.Upstream.GetTimeout())
	assert.True(t, cfg.Upstream.InsecureSkipVerify)
	assert.True(t, cfg.Upstream.FlagErrors)
	assert.Equal(t, "custom/1.0", cfg.Upstream.UserAgent)
	assert.False(t, cfg.Status.RemoteCheck)
	assert.Equal(t, "/tmp/status.log", cfg.Status.LogFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"console", "file"}, cfg.Logging.Outputs)
}

func TestLoad_LaterSettingsOverride(t *testing.T) {
	dir := t.TempDir()
	site := writeSite(t, dir)
	first := writeFile(t, dir, "a.toml", "[logging]\nlevel = \"debug\"\n[upstream]\ntimeout = \"5s\"\n")
	second := writeFile(t, dir, "b.toml", "[logging]\nlevel = \"warn\"\n")

	cfg, err := Load(site, first, second)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 5*time.Second, cfg.Upstream.GetTimeout())
}

func TestLoad_InvalidSettings(t *testing.T) {
	dir := t.TempDir()
	site := writeSite(t, dir)
	settings := writeFile(t, dir, "bad.toml", "[upstream\ntimeout = ")

	_, err := Load(site, settings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse settings file")
}

func TestLoad_MissingSiteIsFatal(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "config.json"))
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	site := writeSite(t, dir)

	t.Setenv("VIP_LEARN_LOG_LEVEL", "error")
	t.Setenv("VIP_LEARN_TIMEOUT", "2s")
	t.Setenv("VIP_LEARN_INSECURE_SKIP_VERIFY", "true")
	t.Setenv("VIP_LEARN_FLAG_ERRORS", "1")
	t.Setenv("VIP_LEARN_STATUS_LOG", filepath.Join(dir, "status.log"))
	t.Setenv("VIP_LEARN_HTTP_ADDR", "127.0.0.1:9999")

	cfg, err := Load(site)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 2*time.Second, cfg.Upstream.GetTimeout())
	assert.True(t, cfg.Upstream.InsecureSkipVerify)
	assert.True(t, cfg.Upstream.FlagErrors)
	assert.Equal(t, filepath.Join(dir, "status.log"), cfg.Status.LogFile)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.HTTPAddr)
}

func TestLoad_EnvOverrideInvalidBool(t *testing.T) {
	site := writeSite(t, t.TempDir())
	t.Setenv("VIP_LEARN_INSECURE_SKIP_VERIFY", "maybe")

	_, err := Load(site)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VIP_LEARN_INSECURE_SKIP_VERIFY")
}

func TestUpstreamConfig_GetTimeout_Fallback(t *testing.T) {
	for _, v := range []string{"", "soon", "-1s", "0s"} {
		c := UpstreamConfig{Timeout: v}
		assert.Equal(t, 30*time.Second, c.GetTimeout(), "timeout %q", v)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()
	ApplyFlagOverrides(cfg, "")
	assert.Empty(t, cfg.Server.HTTPAddr)

	ApplyFlagOverrides(cfg, ":8080")
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
}

func TestResolveSitePath(t *testing.T) {
	assert.Equal(t, "/etc/vip/config.json", ResolveSitePath("/etc/vip/config.json"))

	path := ResolveSitePath("")
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, SiteConfigFile, filepath.Base(path))
}

func TestSearchPaths_Deduplicated(t *testing.T) {
	paths := SiteConfigSearchPaths()
	require.NotEmpty(t, paths)

	seen := map[string]bool{}
	for _, p := range paths {
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
	}
	assert.NotEmpty(t, SettingsSearchPaths())
}
