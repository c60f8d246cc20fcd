package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultSettingsFile holds optional per-project runtime settings.
const DefaultSettingsFile = ".taskrun.yaml"

// EnvPrefix marks environment overrides, e.g. TASKRUN_LOG__LEVEL=debug.
const EnvPrefix = "TASKRUN_"

type LogSettings struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

// Settings are the runtime knobs that are not part of the task file.
type Settings struct {
	Config      string      `koanf:"config"`
	Log         LogSettings `koanf:"log"`
	Progress    bool        `koanf:"progress"`
	MetricsFile string      `koanf:"metrics_file"`
}

// LoadSettings merges the YAML file at path (if present) with TASKRUN_
// environment variables (delimiter `__`). Env wins over the file.
func LoadSettings(path string) (Settings, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Settings{}, err
		}
	}
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return Settings{}, err
	}
	applySettingsDefaults(&s)
	return s, nil
}

func applySettingsDefaults(s *Settings) {
	if s.Config == "" {
		s.Config = DefaultTaskFile
	}
	if s.Log.Level == "" {
		s.Log.Level = "warn"
	}
}
