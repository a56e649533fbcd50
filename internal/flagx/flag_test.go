package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	clientFlags := []string{"-a", "-s", "-d"}

	tests := []struct {
		name string
		args []string
		keep []string
		want []string
	}{
		{"separate values", []string{"-a", "127.0.0.1:50051", "-s", "bolt"}, clientFlags, []string{"-a", "127.0.0.1:50051", "-s", "bolt"}},
		{"inline value", []string{"-s=memory", "-x", "1"}, clientFlags, []string{"-s=memory"}},
		{"foreign flags dropped", []string{"-config", "c.json", "-k", "secret", "stray"}, clientFlags, []string{}},
		{"dangling flag", []string{"-d"}, clientFlags, []string{"-d"}},
		{"dash token not taken as value", []string{"-d", "-s", "sqlite"}, clientFlags, []string{"-d", "-s", "sqlite"}},
		{"order preserved", []string{"-s", "bolt", "-c", "c.json", "-a", "h:1"}, []string{"-a", "-c"}, []string{"-c", "c.json", "-a", "h:1"}},
		{"nothing to filter", nil, clientFlags, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.keep))
		})
	}
}

func TestJsonConfigPath(t *testing.T) {
	assert.Equal(t, "a.json", JsonConfigPath([]string{"-x", "1", "-c", "a.json"}))
	assert.Equal(t, "b.json", JsonConfigPath([]string{"-config=b.json"}))
	assert.Equal(t, "", JsonConfigPath([]string{"-a", "host"}))
}

func TestJsonConfigFlags_ReadsOSArgs(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-c", "cfg.json"}
	assert.Equal(t, "cfg.json", JsonConfigFlags())
}
