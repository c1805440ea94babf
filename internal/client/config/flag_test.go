package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "127.0.0.1:9090", "-t", "5", "-i", "10", "-f", "x.db", "-k", "x.key", "-q", "nats://n:4222", "-l", "text"},
			expected: &Config{
				ServerEndpointAddr:  "127.0.0.1:9090",
				CallTimeout:         5 * time.Second,
				OnlineCheckInterval: 10 * time.Second,
				DatabasePath:        "x.db",
				KeyFile:             "x.key",
				NatsURL:             "nats://n:4222",
				LogFormat:           "text",
			},
		},
		{
			name:     "unrelated args ignored",
			args:     []string{"cmd", "-z", "1", "-a", "h:1"},
			expected: &Config{ServerEndpointAddr: "h:1"},
		},
		{name: "incorrect check interval", args: []string{"cmd", "-a", "127.0.0.1:9090", "-i", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
