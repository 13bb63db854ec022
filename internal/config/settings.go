package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Settings holds the user-editable configuration, loaded from an optional YAML file.
// Command-line flags take precedence over these values.
type Settings struct {
	Language           string           `yaml:"language"`
	ServerPort         string           `yaml:"server_port"`
	RefreshIntervalMin int              `yaml:"refresh_interval_min"`
	Source             SourceSettings   `yaml:"source"`
	Reminder           ReminderSettings `yaml:"reminder"`
}

// SourceSettings describes where vCards are imported from.
type SourceSettings struct {
	Mode      string `yaml:"mode"` // SourceModeLocal or SourceModeWeb
	LocalPath string `yaml:"local_path"`
	URL       string `yaml:"url"`
	User      string `yaml:"user"`
}

// ReminderSettings configures the VALARM attached to exported events.
type ReminderSettings struct {
	Enabled   bool   `yaml:"enabled"`
	Value     int    `yaml:"value"`
	Unit      string `yaml:"unit"`      // UnitDays, UnitHours or UnitMinutes
	Direction string `yaml:"direction"` // DirBefore or DirAfter
}

// DefaultSettings returns the settings used when no file is provided.
func DefaultSettings() Settings {
	return Settings{
		Language:           DefaultLanguage,
		ServerPort:         DefaultPort,
		RefreshIntervalMin: DefaultRefreshMin,
		Source:             SourceSettings{Mode: SourceModeLocal},
		Reminder: ReminderSettings{
			Value:     DefaultReminderValue,
			Unit:      UnitDays,
			Direction: DirBefore,
		},
	}
}

// LoadSettings reads the YAML file at path on top of the defaults.
// An empty path returns the defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("%s: %w", ErrSettingsRead, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("%s: %w", ErrSettingsParse, err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}

	slog.Debug(MsgSettingsLoaded,
		LogKeyComponent, CompSettings,
		LogKeyFile, path,
		LogKeyLang, s.Language,
		LogKeyMode, s.Source.Mode,
	)
	return s, nil
}

// Validate checks the values that cannot be repaired silently.
func (s Settings) Validate() error {
	return ValidatePort(s.ServerPort)
}

// ValidatePort ensures the port is a number in the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

// ReminderTrigger builds the ISO8601 duration used as VALARM trigger.
// It returns an empty string when reminders are disabled.
func (s Settings) ReminderTrigger() string {
	r := s.Reminder
	if !r.Enabled {
		return ""
	}

	val := r.Value
	if val <= 0 {
		val = DefaultReminderValue
	}

	sign := ISOPeriodPrefix
	if r.Direction == "" || r.Direction == DirBefore {
		sign = ISONegativePrefix
	}

	switch r.Unit {
	case UnitHours:
		return fmt.Sprintf("%s%d%s", sign, val, ISOHour)
	case UnitMinutes:
		return fmt.Sprintf("%s%d%s", sign, val, ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", sign, val, ISODay)
	}
}
