package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/joshharrison/critpath/internal/delay"
)

const (
	EnvPrefix  = "CRITPATH"
	configName = ".critpath"
)

// Config is the merged result of defaults, the config file, CRITPATH_*
// environment variables and bound command-line flags.
type Config struct {
	DefaultDelay   float64            `mapstructure:"default_delay"`
	Delays         map[string]float64 `mapstructure:"delays"`
	DelayFile      string             `mapstructure:"delay_file"`
	DisplayScale   float64            `mapstructure:"display_scale"`
	MaxParallel    int                `mapstructure:"max_parallel"`
	ViewerPort     int                `mapstructure:"viewer_port"`
	Model          string             `mapstructure:"model"`
	LogLevel       string             `mapstructure:"log_level"`
	ImplicitInputs bool               `mapstructure:"implicit_inputs"`
	StateDir       string             `mapstructure:"state_dir"`

	// set when default_delay came from any source
	hasDefaultDelay bool
	// file the settings were read from, empty if none
	File string `mapstructure:"-"`
}

var keys = []string{
	"default_delay", "delays", "delay_file", "display_scale", "max_parallel",
	"viewer_port", "model", "log_level", "implicit_inputs", "state_dir",
}

// NewViper returns a viper instance with defaults and environment binding
// in place. Flags can be bound to it before Load is called.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("display_scale", 1.0)
	v.SetDefault("max_parallel", 4)
	v.SetDefault("viewer_port", 7171)
	v.SetDefault("log_level", "info")
	v.SetDefault("implicit_inputs", false)
	v.SetDefault("state_dir", ".critpath")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	return v
}

// BindFlags binds each named flag in fs to its config key. Only flags set
// on the command line are bound, so flag defaults never mask the config
// file or environment. Flags missing from fs are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, flagToKey map[string]string) error {
	for name, key := range flagToKey {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load reads configFile, or .critpath.yaml from the working directory or
// $HOME when configFile is empty, and decodes the merged settings. A missing
// default config file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.hasDefaultDelay = v.Get("default_delay") != nil
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.DisplayScale <= 0 {
		return fmt.Errorf("display_scale must be positive, got %g", c.DisplayScale)
	}
	if c.MaxParallel < 1 {
		return fmt.Errorf("max_parallel must be at least 1, got %d", c.MaxParallel)
	}
	if c.ViewerPort < 1 || c.ViewerPort > 65535 {
		return fmt.Errorf("viewer_port out of range: %d", c.ViewerPort)
	}
	if c.hasDefaultDelay && c.DefaultDelay < 0 {
		return fmt.Errorf("default_delay: %w (%g)", delay.ErrNegativeDelay, c.DefaultDelay)
	}
	return nil
}

// DelayTable builds the effective delay table: the built-in table, then
// delay_file, then default_delay, then per-type delays. Type names are
// upper-cased since viper folds map keys to lower case.
func (c *Config) DelayTable() (delay.Table, error) {
	t := delay.Default()
	if c.DelayFile != "" {
		var err error
		if t, err = delay.LoadFile(c.DelayFile); err != nil {
			return delay.Table{}, err
		}
	}

	if c.hasDefaultDelay {
		var err error
		if t, err = t.WithDefault(c.DefaultDelay); err != nil {
			return delay.Table{}, err
		}
	}

	if len(c.Delays) == 0 {
		return t, nil
	}
	overrides := make(map[string]float64, len(c.Delays))
	for typ, d := range c.Delays {
		overrides[strings.ToUpper(typ)] = d
	}
	return t.With(overrides)
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. With no
// arguments it loads ./.env. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}
