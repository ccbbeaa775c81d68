package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/patcli/pat/internal/bcd"
	"github.com/patcli/pat/internal/release"
	"github.com/patcli/pat/internal/search"
)

// EnvPrefix prefixes environment overrides, e.g. PAT_MAX_ROWS.
const EnvPrefix = "PAT"

// Colors are hex colors for version cells.
type Colors struct {
	Recent      string `yaml:"recent" mapstructure:"recent"`
	Old         string `yaml:"old" mapstructure:"old"`
	Unsupported string `yaml:"unsupported" mapstructure:"unsupported"`
	Unknown     string `yaml:"unknown" mapstructure:"unknown"`
}

// Config is the in-memory representation of ~/.pat/config.yaml.
type Config struct {
	DataDir         string        `yaml:"data_dir" mapstructure:"data_dir"`
	ReleaseRepo     string        `yaml:"release_repo" mapstructure:"release_repo"`
	ReleaseAsset    string        `yaml:"release_asset" mapstructure:"release_asset"`
	ExcludeBrowsers []string      `yaml:"exclude_browsers" mapstructure:"exclude_browsers"`
	ExcludeKeywords []string      `yaml:"exclude_keywords" mapstructure:"exclude_keywords"`
	MaxRows         int           `yaml:"max_rows" mapstructure:"max_rows"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Colors          Colors        `yaml:"colors" mapstructure:"colors"`
}

// Dir returns the absolute path to ~/.pat/.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".pat"), nil
}

// Path returns the absolute path to ~/.pat/config.yaml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:         "~/.pat",
		ReleaseRepo:     release.DefaultRepo,
		ReleaseAsset:    release.DefaultAsset,
		ExcludeBrowsers: append([]string(nil), bcd.DefaultExcludedBrowsers...),
		ExcludeKeywords: append([]string(nil), search.DefaultExcludedSegments...),
		MaxRows:         5,
		Timeout:         5 * time.Minute,
		Colors: Colors{
			Recent:      "#bbbb33",
			Old:         "#33e033",
			Unsupported: "#ee2222",
			Unknown:     "#bbbb33",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("release_repo", d.ReleaseRepo)
	v.SetDefault("release_asset", d.ReleaseAsset)
	v.SetDefault("exclude_browsers", d.ExcludeBrowsers)
	v.SetDefault("exclude_keywords", d.ExcludeKeywords)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("colors.recent", d.Colors.Recent)
	v.SetDefault("colors.old", d.Colors.Old)
	v.SetDefault("colors.unsupported", d.Colors.Unsupported)
	v.SetDefault("colors.unknown", d.Colors.Unknown)
}

// Load merges defaults, the YAML file at path (or ~/.pat/config.yaml when
// path is empty) and PAT_* environment variables. A missing file is not an
// error. The returned string is the file actually read, if any.
func Load(path string) (*Config, string, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, "", err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	used := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("invalid config: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("cannot decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	// Expand ~ in DataDir at load time.
	var err error
	cfg.DataDir, err = ExpandPath(cfg.DataDir)
	if err != nil {
		return nil, "", err
	}
	return &cfg, used, nil
}

// Validate rejects settings the rest of pat cannot work with.
func (c *Config) Validate() error {
	if c.MaxRows < 1 {
		return fmt.Errorf("max_rows must be at least 1, got %d", c.MaxRows)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if _, _, err := release.SplitRepo(c.ReleaseRepo); err != nil {
		return fmt.Errorf("release_repo: %w", err)
	}
	return nil
}

// StorePath returns the dataset database location.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "pat.db")
}

// fileConfig mirrors Config with the timeout as a duration string.
type fileConfig struct {
	DataDir         string   `yaml:"data_dir"`
	ReleaseRepo     string   `yaml:"release_repo"`
	ReleaseAsset    string   `yaml:"release_asset"`
	ExcludeBrowsers []string `yaml:"exclude_browsers"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
	MaxRows         int      `yaml:"max_rows"`
	Timeout         string   `yaml:"timeout"`
	Colors          Colors   `yaml:"colors"`
}

// MarshalYAML writes the timeout as "5m0s" instead of nanoseconds.
func (c Config) MarshalYAML() (any, error) {
	return fileConfig{
		DataDir:         c.DataDir,
		ReleaseRepo:     c.ReleaseRepo,
		ReleaseAsset:    c.ReleaseAsset,
		ExcludeBrowsers: c.ExcludeBrowsers,
		ExcludeKeywords: c.ExcludeKeywords,
		MaxRows:         c.MaxRows,
		Timeout:         c.Timeout.String(),
		Colors:          c.Colors,
	}, nil
}

// Save marshals cfg and writes it to path.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
