package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds every runtime setting. All fields are read-only after Load.
type Config struct {
	// ScanRoot is the directory walked for build targets.
	ScanRoot string `mapstructure:"scan_root"`

	// DockerBin is the docker binary invoked for builds.
	DockerBin string `mapstructure:"docker_bin"`

	// OutputLimit bounds the number of retained output lines per job.
	OutputLimit int `mapstructure:"output_limit"`

	// NoCache forwards --no-cache to every build command.
	NoCache bool `mapstructure:"no_cache"`

	// ExportDir is the fixed root under which exported logs are written.
	ExportDir string `mapstructure:"export_dir"`

	// MaxDepth bounds the discovery walk.
	MaxDepth int `mapstructure:"max_depth"`

	// LogFile receives debug logs; empty disables file logging.
	LogFile string `mapstructure:"log_file"`
}

func defaults(v *viper.Viper) {
	cwd, _ := os.Getwd()
	v.SetDefault("scan_root", cwd)
	v.SetDefault("docker_bin", "docker")
	v.SetDefault("output_limit", 2000)
	v.SetDefault("no_cache", false)
	v.SetDefault("export_dir", cwd)
	v.SetDefault("max_depth", 6)
	v.SetDefault("log_file", "")
}

// Load reads configuration from an optional YAML file, REBUILD_TUI_*
// environment variables, and any flags already bound to v by the caller.
// Precedence follows viper's usual flag > env > file > default order.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	defaults(v)

	v.SetEnvPrefix("REBUILD_TUI")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "rebuild-tui"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// Flag defaults bound to viper can shadow our own defaults with
	// empty strings; fall back to the working directory.
	cwd, _ := os.Getwd()
	if cfg.ScanRoot == "" {
		cfg.ScanRoot = cwd
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = cwd
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ScanRoot == "" {
		return fmt.Errorf("scan_root is required")
	}
	if st, err := os.Stat(c.ScanRoot); err != nil || !st.IsDir() {
		return fmt.Errorf("scan_root %q is not a directory", c.ScanRoot)
	}
	if c.OutputLimit <= 0 {
		return fmt.Errorf("output_limit must be positive, got %d", c.OutputLimit)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	return nil
}
