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
			args: []string{"qz", "-a", "http://127.0.0.1:9090", "-t", "3", "-d", "/tmp/q.db", "-l", "debug"},
			expected: &Config{
				BaseURL:        "http://127.0.0.1:9090",
				RequestTimeout: 3 * time.Second,
				DatabasePath:   "/tmp/q.db",
				LogLevel:       "debug",
			},
		},
		{
			name:     "unrelated flags are ignored",
			args:     []string{"qz", "-c", "cfg.json", "-t", "5"},
			expected: &Config{RequestTimeout: 5 * time.Second},
		},
		{name: "bad timeout", args: []string{"qz", "-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			cfg := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
