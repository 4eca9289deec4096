// File: config/config_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Empty(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
log_json: true
metrics_addr: 127.0.0.1:9102
stats_interval: 5s
producers: 4
pin_producers: true
queue_capacity: 12
report_interval: 250ms
registry_path: /var/lib/framebench/services.db
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, "127.0.0.1:9102", cfg.MetricsAddr)
	assert.Equal(t, 5*time.Second, cfg.StatsInterval)
	assert.Equal(t, 4, cfg.Producers)
	assert.True(t, cfg.PinProducers)
	assert.Equal(t, 12, cfg.QueueCapacity)
	assert.Equal(t, 250*time.Millisecond, cfg.ReportInterval)
	assert.Equal(t, "/var/lib/framebench/services.db", cfg.RegistryPath)
	assert.Equal(t, time.Minute, cfg.PrometheusRetention, "unset keys keep defaults")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "fps_target: 30\n",
		"bad level":      "log_level: loud\n",
		"negative count": "producers: -1\n",
		"bad duration":   "report_interval: soon\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, Decode(strings.NewReader(doc), Default()))
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	f := Default()
	f.LogLevel = "warn"
	logger, err := NewLogger("framebench", f, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "framebench")

	f.LogLevel = "verbose"
	_, err = NewLogger("framebench", f, &buf)
	assert.Error(t, err)
}
