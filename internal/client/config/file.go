package config

import (
	"github.com/dmitrijs2005/walletmeta/internal/flagx"
	"github.com/dmitrijs2005/walletmeta/internal/timex"
)

// FileConfig is the on-disk shape of the CLI configuration.
type FileConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr" yaml:"server_endpoint_addr"`
	CallTimeout         timex.Duration `json:"call_timeout" yaml:"call_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	DatabasePath        string         `json:"database_path" yaml:"database_path"`
	KeyFile             string         `json:"key_file" yaml:"key_file"`
	NatsURL             string         `json:"nats_url" yaml:"nats_url"`
	LogFormat           string         `json:"log_format" yaml:"log_format"`
}

// parseFile overlays cfg with values from the file named by -c/-config.
// Absent fields keep their value; a bad file panics.
func parseFile(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	var fc FileConfig
	if err := flagx.DecodeConfigFile(path, &fc); err != nil {
		panic(err)
	}

	if fc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = fc.ServerEndpointAddr
	}
	if fc.CallTimeout.Duration > 0 {
		cfg.CallTimeout = fc.CallTimeout.Duration
	}
	if fc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.KeyFile != "" {
		cfg.KeyFile = fc.KeyFile
	}
	if fc.NatsURL != "" {
		cfg.NatsURL = fc.NatsURL
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = fc.LogFormat
	}
}
