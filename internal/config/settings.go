package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/coderun/internal/lang"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = ".coderun.yml"

// EnvPrefix prefixes environment overrides, e.g. CODERUN_DIR.
const EnvPrefix = "CODERUN"

// Settings holds coderun defaults loaded from the config file and environment.
type Settings struct {
	Dir            string            `mapstructure:"dir"`
	Language       string            `mapstructure:"language"`
	Timeout        time.Duration     `mapstructure:"timeout"`
	IdleTimeout    time.Duration     `mapstructure:"idle_timeout"`
	Wait           time.Duration     `mapstructure:"wait"`
	MaxSourceBytes int64             `mapstructure:"max_source_bytes"`
	Interpreters   map[string]string `mapstructure:"interpreters"` // language name -> binary
	Journal        string            `mapstructure:"journal"`      // sqlite path; empty disables the journal
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Dir:      "/app/code",
		Language: lang.Default,
	}
}

// LoadSettings reads the YAML file at path and applies CODERUN_* environment
// overrides. A missing file is not an error; an empty path skips the file.
func LoadSettings(path string) (*Settings, error) {
	def := Defaults()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("dir", def.Dir)
	v.SetDefault("language", def.Language)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("idle_timeout", def.IdleTimeout)
	v.SetDefault("wait", def.Wait)
	v.SetDefault("max_source_bytes", def.MaxSourceBytes)
	v.SetDefault("interpreters", map[string]string{})
	v.SetDefault("journal", def.Journal)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &s, nil
}

// Validate rejects settings that cannot drive a run.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("dir must not be empty")
	}
	if _, err := lang.Lookup(s.Language); err != nil {
		return err
	}
	for name := range s.Interpreters {
		if _, err := lang.Lookup(name); err != nil {
			return fmt.Errorf("interpreters: %w", err)
		}
	}
	if s.Timeout < 0 || s.IdleTimeout < 0 || s.Wait < 0 {
		return errors.New("durations must not be negative")
	}
	if s.MaxSourceBytes < 0 {
		return errors.New("max_source_bytes must not be negative")
	}
	return nil
}

// ResolveLanguage returns the configured language with any interpreter override applied.
func (s *Settings) ResolveLanguage() (lang.Language, error) {
	l, err := lang.Lookup(s.Language)
	if err != nil {
		return lang.Language{}, err
	}
	return l.WithInterpreter(s.Interpreter(l.Name)), nil
}

// Interpreter returns the configured binary for the named language, or "".
func (s *Settings) Interpreter(name string) string {
	for k, bin := range s.Interpreters {
		l, err := lang.Lookup(k)
		if err == nil && l.Name == name {
			return bin
		}
	}
	return ""
}

// yamlSettings is the rendered form of Settings; durations print as "30s", not nanoseconds.
type yamlSettings struct {
	Dir            string            `yaml:"dir"`
	Language       string            `yaml:"language"`
	Timeout        string            `yaml:"timeout"`
	IdleTimeout    string            `yaml:"idle_timeout"`
	Wait           string            `yaml:"wait"`
	MaxSourceBytes int64             `yaml:"max_source_bytes"`
	Interpreters   map[string]string `yaml:"interpreters,omitempty"`
	Journal        string            `yaml:"journal,omitempty"`
}

// YAML renders the settings in config-file form.
func (s *Settings) YAML() ([]byte, error) {
	out, err := yaml.Marshal(yamlSettings{
		Dir:            s.Dir,
		Language:       s.Language,
		Timeout:        s.Timeout.String(),
		IdleTimeout:    s.IdleTimeout.String(),
		Wait:           s.Wait.String(),
		MaxSourceBytes: s.MaxSourceBytes,
		Interpreters:   s.Interpreters,
		Journal:        s.Journal,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return out, nil
}
