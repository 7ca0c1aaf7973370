// Package config loads bound settings from YAML or TOML files and the
// environment and turns them into a bound.Config.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/ygrebnov/errorc"
	"gopkg.in/yaml.v3"

	"github.com/ygrebnov/bound"
	"github.com/ygrebnov/bound/errors"
)

const (
	EnvDebug     = "BOUND_DEBUG"
	EnvLogLevel  = "BOUND_LOG_LEVEL"
	EnvLogFormat = "BOUND_LOG_FORMAT"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Settings is the file representation of bound.Config.
type Settings struct {
	Debug     bool   `yaml:"debug" toml:"debug"`
	LogLevel  string `yaml:"log_level" toml:"log_level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	LogFormat string `yaml:"log_format" toml:"log_format" validate:"omitempty,oneof=json console"`
}

// Default returns non-strict settings logging warnings and above as JSON.
func Default() Settings {
	return Settings{LogLevel: "warn", LogFormat: FormatJSON}
}

// Load reads settings from path. The format follows the extension:
// .yaml/.yml or .toml. Missing keys keep their Default values. Environment
// overrides are applied and the result is validated.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, errorc.With(errors.ErrInvalidConfig,
			errorc.String(errors.ErrorFieldConfigSource, path),
			errorc.String(errors.ErrorFieldCause, err.Error()),
		)
	}

	var s Settings
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		s, err = ParseYAML(data)
	case ".toml":
		s, err = ParseTOML(data)
	default:
		return Settings{}, errorc.With(errors.ErrInvalidConfig,
			errorc.String(errors.ErrorFieldConfigSource, path),
			errorc.String(errors.ErrorFieldCause, "unsupported extension "+ext),
		)
	}
	if err != nil {
		return Settings{}, err
	}

	s.ApplyEnv()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ParseYAML decodes YAML settings on top of Default.
func ParseYAML(data []byte) (Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, decodeError("yaml", err)
	}
	return s, nil
}

// ParseTOML decodes TOML settings on top of Default.
func ParseTOML(data []byte) (Settings, error) {
	s := Default()
	if _, err := toml.Decode(string(data), &s); err != nil {
		return Settings{}, decodeError("toml", err)
	}
	return s, nil
}

func decodeError(source string, err error) error {
	return errorc.With(errors.ErrInvalidConfig,
		errorc.String(errors.ErrorFieldConfigSource, source),
		errorc.String(errors.ErrorFieldCause, err.Error()),
	)
}

// ApplyEnv overrides settings from BOUND_DEBUG, BOUND_LOG_LEVEL and
// BOUND_LOG_FORMAT when they are set. Unparsable booleans are ignored.
func (s *Settings) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvDebug); ok {
		if debug, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			s.Debug = debug
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		s.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		s.LogFormat = strings.ToLower(v)
	}
}

// Validate checks the settings against their validate tags.
func (s Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return errorc.With(errors.ErrInvalidConfig,
			errorc.String(errors.ErrorFieldConfigSource, "validate"),
			errorc.String(errors.ErrorFieldCause, err.Error()),
		)
	}
	return nil
}

// Config builds a bound.Config logging to w (os.Stderr when nil).
func (s Settings) Config(w io.Writer) bound.Config {
	if w == nil {
		w = os.Stderr
	}
	if s.LogFormat == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}

	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil || s.LogLevel == "" {
		level = zerolog.WarnLevel
	}

	return bound.Config{
		Debug:  s.Debug,
		Logger: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}
