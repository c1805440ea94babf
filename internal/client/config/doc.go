// Package config loads runtime configuration for the walletmeta CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the metadata store
//	-t int      per-call timeout (seconds)
//	-i int      online check interval (seconds)
//	-f string   local database file
//	-k string   wallet key file
//	-q string   NATS URL for new-message notifications
//	-l string   log format (json|text|console)
//
// # File schema
//
// Durations are timex.Duration, so values can be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "call_timeout": "10s",
//	  "online_check_interval": "3s",
//	  "database_path": "walletmeta.db",
//	  "key_file": "wallet.key",
//	  "nats_url": "nats://127.0.0.1:4222",
//	  "log_format": "console"
//	}
package config
