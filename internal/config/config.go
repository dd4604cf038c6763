// Package config loads process settings (flags, environment, config file)
// and job files describing what to extract.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jmylchreest/gleaner/internal/crawler"
	"github.com/jmylchreest/gleaner/pkg/fetcher"
)

// EnvPrefix prefixes environment overrides, e.g. GLEANER_FETCH_TIMEOUT.
const EnvPrefix = "GLEANER"

// Settings are the process-wide options shared by every command.
type Settings struct {
	Debug        bool   `mapstructure:"debug"`
	Quiet        bool   `mapstructure:"quiet"`
	LogLevel     string `mapstructure:"log_level"`
	LogJSON      bool   `mapstructure:"log_json"`
	Format       string `mapstructure:"format"`
	Store        string `mapstructure:"store"`
	MaxInputSize string `mapstructure:"max_input_size"`

	FetchMode  string         `mapstructure:"fetch_mode"`
	Fetch      fetcher.Config `mapstructure:"fetch"`
	Pagination crawler.Config `mapstructure:"pagination"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	d := fetcher.DefaultConfig()
	v.SetDefault("format", "json")
	v.SetDefault("max_input_size", "0")
	v.SetDefault("fetch_mode", string(fetcher.ModeStatic))
	v.SetDefault("fetch.user_agent", d.UserAgent)
	v.SetDefault("fetch.timeout", d.Timeout)
	v.SetDefault("fetch.headless", d.Headless)
	v.SetDefault("fetch.stealth", d.Stealth)
	v.SetDefault("fetch.exec_path", "")
	v.SetDefault("pagination.delay", "500ms")
}

// Init wires v to its sources: a .env file, the config file and the
// environment. A missing config file is not an error; an explicit cfgFile
// that cannot be read is.
func Init(v *viper.Viper, cfgFile string) error {
	if err := LoadEnv(); err != nil {
		return err
	}

	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".gleaner")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// LoadEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", filepath.Base(f), err)
		}
	}
	return nil
}

// Load decodes the settings held by v.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("failed to decode settings: %w", err)
	}
	if _, err := s.MaxInputBytes(); err != nil {
		return s, err
	}
	if s.Fetch.Timeout < 0 {
		return s, fmt.Errorf("fetch timeout must not be negative: %s", s.Fetch.Timeout)
	}
	if s.Pagination.MaxPages < 0 {
		return s, fmt.Errorf("pagination max_pages must not be negative: %d", s.Pagination.MaxPages)
	}
	if s.Fetch.Timeout == 0 {
		s.Fetch.Timeout = 30 * time.Second
	}
	return s, nil
}

// MaxInputBytes parses MaxInputSize ("512KB", "2MiB"). Zero or empty means
// unlimited.
func (s Settings) MaxInputBytes() (uint64, error) {
	v := strings.TrimSpace(s.MaxInputSize)
	if v == "" || v == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(v)
	if err != nil {
		return 0, fmt.Errorf("invalid max_input_size %q: %w", s.MaxInputSize, err)
	}
	return n, nil
}
