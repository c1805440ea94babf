package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Only the flags listed here are picked out of os.Args, so the REPL's own
// arguments do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-i", "-f", "-k", "-q", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	callTimeout := fs.Int("t", int(cfg.CallTimeout.Seconds()), "call timeout (in seconds)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "local database file")
	fs.StringVar(&cfg.KeyFile, "k", cfg.KeyFile, "wallet key file")
	fs.StringVar(&cfg.NatsURL, "q", cfg.NatsURL, "NATS URL for message notifications")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format: json, text or console")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.CallTimeout = time.Duration(*callTimeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
