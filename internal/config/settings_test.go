package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/config"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), config.FilePermUserRW))
	return path
}

func TestLoadSettings_EmptyPathReturnsDefaults(t *testing.T) {
	s, err := config.LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSettings(), s)
}

func TestLoadSettings_OverridesDefaults(t *testing.T) {
	path := writeSettings(t, `
language: fr
server_port: "19090"
source:
  mode: web
  url: https://dav.example.com/contacts.vcf
  user: alice
reminder:
  enabled: true
  value: 2
  unit: h
`)

	s, err := config.LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "fr", s.Language)
	assert.Equal(t, "19090", s.ServerPort)
	assert.Equal(t, config.DefaultRefreshMin, s.RefreshIntervalMin, "Missing keys keep their default")
	assert.Equal(t, config.SourceModeWeb, s.Source.Mode)
	assert.Equal(t, "alice", s.Source.User)
	// Direction falls back to the default (before).
	assert.Equal(t, "-P2H", s.ReminderTrigger())
}

func TestLoadSettings_Errors(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		_, err := config.LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrSettingsRead)
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		_, err := config.LoadSettings(writeSettings(t, "language: [unterminated"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrSettingsParse)
	})

	t.Run("Port out of range", func(t *testing.T) {
		_, err := config.LoadSettings(writeSettings(t, `server_port: "70000"`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrPortRange)
	})
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		port    string
		wantErr string
	}{
		{"18080", ""},
		{"", config.ErrPortRequired},
		{"http", config.ErrPortNumber},
		{"0", config.ErrPortRange},
		{"65536", config.ErrPortRange},
	}

	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			err := config.ValidatePort(tt.port)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

// TestSettings_ReminderTrigger tests the conversion of reminder settings to an ISO8601 trigger.
func TestSettings_ReminderTrigger(t *testing.T) {
	tests := []struct {
		name        string
		enabled     bool
		val         int
		unit        string
		direction   string
		wantTrigger string
	}{
		{name: "Disabled", enabled: false, wantTrigger: ""},
		{"1 Day Before", true, 1, config.UnitDays, config.DirBefore, "-P1D"},
		{"2 Hours After", true, 2, config.UnitHours, config.DirAfter, "P2H"},
		{"30 Minutes Before", true, 30, config.UnitMinutes, config.DirBefore, "-P30M"},
		{"Zero value falls back", true, 0, config.UnitDays, config.DirAfter, "P1D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.DefaultSettings()
			s.Reminder = config.ReminderSettings{
				Enabled:   tt.enabled,
				Value:     tt.val,
				Unit:      tt.unit,
				Direction: tt.direction,
			}
			assert.Equal(t, tt.wantTrigger, s.ReminderTrigger())
		})
	}
}
