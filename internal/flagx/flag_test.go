package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-a", "http://gw:8080", "-x", "1"},
			allowed: []string{"-a"},
			want:    []string{"-a", "http://gw:8080"},
		},
		{
			name:    "equals form",
			args:    []string{"-t=5s", "positional"},
			allowed: []string{"-t"},
			want:    []string{"-t=5s"},
		},
		{
			name:    "order preserved across allowed flags",
			args:    []string{"-d", "q.db", "-c", "cfg.json", "-a", "http://x"},
			allowed: []string{"-a", "-d"},
			want:    []string{"-d", "q.db", "-a", "http://x"},
		},
		{
			name:    "flag at the end without value",
			args:    []string{"-a"},
			allowed: []string{"-a"},
			want:    []string{"-a"},
		},
		{
			name:    "next flag is not a value",
			args:    []string{"-a", "-t", "3s"},
			allowed: []string{"-a"},
			want:    []string{"-a"},
		},
		{
			name:    "unknown flags only",
			args:    []string{"--verbose", "-z=1"},
			allowed: []string{"-a"},
			want:    []string{},
		},
		{
			name:    "empty",
			args:    []string{},
			allowed: []string{"-a"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"qz", "-c", "/etc/quzhan.json"}
	assert.Equal(t, "/etc/quzhan.json", JsonConfigFlags())

	os.Args = []string{"qz", "-config=/home/u/qz.json", "-a", "http://x"}
	assert.Equal(t, "/home/u/qz.json", JsonConfigFlags())

	os.Args = []string{"qz", "-a", "http://x"}
	assert.Empty(t, JsonConfigFlags())

	os.Args = []string{"qz", "-c", "/one.json", "-config", "/two.json"}
	assert.Equal(t, "/two.json", JsonConfigFlags())
}
