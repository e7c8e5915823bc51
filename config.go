package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/signadot/snapshot/encode"

	"github.com/goccy/go-yaml"
)

const (
	DefaultBasePath   = "testdata/snapshots"
	DefaultConfigFile = "snapshot.yaml"

	EnvConfig   = "SNAPSHOT_CONFIG"
	EnvUpdate   = "SNAPSHOT_UPDATE"
	EnvBasePath = "SNAPSHOT_BASE_PATH"
)

// Config configures a Run. Sources apply in order: defaults, the config
// file, the environment, then options.
type Config struct {
	BasePath string `yaml:"basePath"`
	Update   bool   `yaml:"update"`

	ConfigFile string       `yaml:"-"`
	Resolver   Resolver     `yaml:"-"`
	Stringify  Stringify    `yaml:"-"`
	Logger     *slog.Logger `yaml:"-"`
}

type Option func(*Config)

func WithBasePath(p string) Option {
	return func(c *Config) { c.BasePath = p }
}

func WithUpdate(v bool) Option {
	return func(c *Config) { c.Update = v }
}

func WithResolver(r Resolver) Option {
	return func(c *Config) { c.Resolver = r }
}

func WithStringify(f Stringify) Option {
	return func(c *Config) { c.Stringify = f }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithConfigFile reads configuration from path instead of
// DefaultConfigFile. Unlike the default file, path must exist.
func WithConfigFile(path string) Option {
	return func(c *Config) { c.ConfigFile = path }
}

// LoadConfig builds a Config from all sources.
func LoadConfig(opts ...Option) (*Config, error) {
	probe := &Config{}
	for _, opt := range opts {
		opt(probe)
	}
	file := probe.ConfigFile
	if file == "" {
		file = os.Getenv(EnvConfig)
	}
	required := file != ""
	if !required {
		file = DefaultConfigFile
	}

	cfg := &Config{BasePath: DefaultBasePath}
	if err := cfg.readFile(file, required); err != nil {
		return nil, err
	}
	if err := cfg.readEnv(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.BasePath == "" {
		cfg.BasePath = DefaultBasePath
	}
	if cfg.Resolver == nil {
		cfg.Resolver = StackResolver{}
	}
	if cfg.Stringify == nil {
		cfg.Stringify = encode.JSON
	}
	if cfg.Logger == nil {
		cfg.Logger = defaultLogger()
	}
	return cfg, nil
}

func (c *Config) readFile(path string, required bool) error {
	d, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: could not read %q: %w", ErrConfig, path, err)
	}
	if err := yaml.UnmarshalWithOptions(d, c, yaml.Strict()); err != nil {
		return fmt.Errorf("%w: could not decode %s: %w", ErrConfig, path, err)
	}
	c.ConfigFile = path
	return nil
}

func (c *Config) readEnv() error {
	if v := os.Getenv(EnvUpdate); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrConfig, EnvUpdate, v, err)
		}
		c.Update = b
	}
	if v := os.Getenv(EnvBasePath); v != "" {
		c.BasePath = v
	}
	return nil
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}
