package config

import "time"

// Config holds runtime settings for the walletmeta CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the metadata store gRPC endpoint.
//   - CallTimeout: per-call deadline applied when the caller set none.
//   - OnlineCheckInterval: how often the REPL checks server reachability and
//     polls for new messages in watch mode without NATS.
//   - DatabasePath: local SQLite file with the message cursor and payment
//     records.
//   - KeyFile: passphrase-sealed wallet key file.
//   - NatsURL: optional NATS server for new-message notifications.
//   - LogFormat: json, text or console.
type Config struct {
	ServerEndpointAddr  string
	CallTimeout         time.Duration
	OnlineCheckInterval time.Duration
	DatabasePath        string
	KeyFile             string
	NatsURL             string
	LogFormat           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.CallTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.DatabasePath = "walletmeta.db"
	c.KeyFile = "wallet.key"
	c.NatsURL = ""
	c.LogFormat = "console"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if given) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
