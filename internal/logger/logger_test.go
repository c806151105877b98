package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		output  string
		wantErr bool
	}{
		{"debug text stderr", "debug", "text", "stderr", false},
		{"info json stdout", "info", "json", "stdout", false},
		{"warning alias", "warning", "text", "", false},
		{"invalid level", "loud", "text", "stderr", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.level, tt.format, tt.output)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, log)
		})
	}
}

func TestLoggerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cq.log")
	log, err := New("info", "text", path)
	require.NoError(t, err)

	log.Info("catalog opened", "relations", 3)
	log.Debug("hidden")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "catalog opened")
	assert.Contains(t, string(data), "relations")
	assert.NotContains(t, string(data), "hidden")
}

func TestJSONFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter("debug", "json", &buf)
	require.NoError(t, err)

	log.With("run_id", "r1").Named("evaluate").Warn("slow scan", "relation", "R")
	require.NoError(t, log.Sync())

	line := strings.TrimSpace(buf.String())
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "slow scan", entry["msg"])
	assert.Equal(t, "r1", entry["run_id"])
	assert.Equal(t, "R", entry["relation"])
	assert.Equal(t, "evaluate", entry["logger"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNop(t *testing.T) {
	log := NewNop()
	log.Error("nothing")
	assert.NotNil(t, log.With("k", "v"))
}
