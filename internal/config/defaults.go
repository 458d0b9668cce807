package config

import "github.com/bobmcallan/vip-learn-mcp/internal/common"

// NewDefaultConfig creates a configuration with default values.
// Site is left empty: it only ever comes from the site document.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "vip-learn-mcp",
		},
		Upstream: UpstreamConfig{
			Timeout:            "30s",
			InsecureSkipVerify: false,
			FlagErrors:         false,
		},
		Status: StatusConfig{
			RemoteCheck: true,
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console"},
			FilePath:   "logs/vip-learn-mcp.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}
