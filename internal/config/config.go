// Package config loads run configuration from a YAML file with environment
// variable overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces environment overrides, e.g. NGD_PATHS_INPUT_DIR.
const envPrefix = "NGD_"

// Config is the complete run configuration.
type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	Processing ProcessingConfig `yaml:"processing"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Server     ServerConfig     `yaml:"server"`
}

// PathsConfig locates the input tables and the output relation.
type PathsConfig struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
}

// ProcessingConfig controls chunk partitioning.
type ProcessingConfig struct {
	NumChunks int `yaml:"num_chunks"`
}

// PostgresConfig configures the optional export target.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	Table    string `yaml:"table"`
}

// ServerConfig configures the inspection web server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Load reads the YAML file at path, applies NGD_* environment overrides and
// validates the result. Paths are resolved relative to the config file's
// directory, so a config travels with its data.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "resolve config path")
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, errors.Newf("config file not found: %s", abs)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(abs), yaml.Parser()); err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			// NGD_PATHS_INPUT_DIR -> paths.input_dir: sections are single
			// words, so only the first underscore separates the path.
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			section, field, found := strings.Cut(key, "_")
			if !found {
				return key, value
			}
			return section + "." + field, value
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load environment overrides")
	}

	cfg := defaults()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "yaml",
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "yaml",
			Result:           cfg,
			WeaklyTypedInput: true,
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(normalizeKey(mapKey), normalizeKey(fieldName))
			},
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	base := filepath.Dir(abs)
	cfg.Paths.InputDir = resolvePath(base, cfg.Paths.InputDir)
	cfg.Paths.OutputDir = resolvePath(base, cfg.Paths.OutputDir)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Paths: PathsConfig{
			InputDir:  "data/extracted",
			OutputDir: "data/output",
		},
		Processing: ProcessingConfig{NumChunks: 1},
		Postgres: PostgresConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
			Table:   "address_variants",
		},
		Server: ServerConfig{Host: "127.0.0.1", Port: 8080},
	}
}

func (c *Config) validate() error {
	if c.Paths.InputDir == "" {
		return errors.New("paths.input_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Processing.NumChunks < 1 {
		return errors.Newf("processing.num_chunks must be >= 1, got %d", c.Processing.NumChunks)
	}
	return nil
}

// DSN renders the lib/pq connection string for the export target.
func (p PostgresConfig) DSN() string {
	parts := []string{
		"host=" + p.Host,
		"dbname=" + p.Database,
		"sslmode=" + p.SSLMode,
	}
	if p.Port != 0 {
		parts = append(parts, "port="+strconv.Itoa(p.Port))
	}
	if p.User != "" {
		parts = append(parts, "user="+p.User)
	}
	if p.Password != "" {
		parts = append(parts, "password="+p.Password)
	}
	return strings.Join(parts, " ")
}

func normalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(k), "_", "")
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
