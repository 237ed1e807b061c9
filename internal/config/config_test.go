package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "journal:\n  enabled: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, []int{12, 15}, cfg.Thresholds)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
data_dir: /var/lib/rosterd
thresholds: [10, 14, 18]
journal:
  enabled: true
  path: /var/lib/rosterd/journal.db
broadcast:
  enabled: true
  subject: football.broadcast
http:
  addr: ":9090"
schedule:
  reminder_cron: "0 18 * * 5"
  reset_cron: "0 3 * * 1"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/rosterd", cfg.DataDir)
	assert.Equal(t, []int{10, 14, 18}, cfg.Thresholds)
	assert.Equal(t, "football.broadcast", cfg.Broadcast.Subject)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.Broadcast.NATSURL, "URL defaulted when broadcast enabled")
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "0 18 * * 5", cfg.Schedule.ReminderCron)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("ROSTERD_TEST_DATA_DIR", "/tmp/rosterd-env")
	path := writeConfig(t, "data_dir: ${ROSTERD_TEST_DATA_DIR}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/rosterd-env", cfg.DataDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cases := []struct {
		name       string
		thresholds []int
	}{
		{"zero", []int{0}},
		{"negative", []int{-5, 12}},
		{"duplicate", []int{12, 12}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Thresholds = tc.thresholds
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateSortsThresholds(t *testing.T) {
	cfg := Default()
	cfg.Thresholds = []int{15, 12}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []int{12, 15}, cfg.Thresholds)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefault(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []int{12, 15}, cfg.Thresholds)

	require.Error(t, WriteDefault(path, false), "refuses to overwrite without force")
	require.NoError(t, WriteDefault(path, true))
}
