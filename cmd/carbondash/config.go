package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tinytelemetry/carbondash/internal/model"
)

const (
	envPrefix           = "CARBONDASH"
	defaultBindHost     = "127.0.0.1"
	defaultAPIPort      = 3000
	defaultQueryTimeout = 30 * time.Second
	defaultLogLevel     = "info"
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	Server          string        `mapstructure:"server"`
	Token           string        `mapstructure:"token"`
	Stream          string        `mapstructure:"stream"`
	Commit          string        `mapstructure:"commit"`
	StreamLimit     int           `mapstructure:"stream-limit"`
	BranchLimit     int           `mapstructure:"branch-limit"`
	CommitLimit     int           `mapstructure:"commit-limit"`
	RequestTimeout  time.Duration `mapstructure:"request-timeout"`
	MaxRetries      int           `mapstructure:"max-retries"`
	DuplicatePolicy string        `mapstructure:"duplicate-policy"`
	BranchCount     string        `mapstructure:"branch-count"`
	DataDir         string        `mapstructure:"data-dir"`
	DatasetManifest string        `mapstructure:"dataset-manifest"`
	DBPath          string        `mapstructure:"db-path"`
	QueryTimeout    time.Duration `mapstructure:"query-timeout"`
	APIPort         int           `mapstructure:"api-port"`
	APIAddr         string        `mapstructure:"api-addr"`
	LogFile         string        `mapstructure:"log-file"`
	LogLevel        string        `mapstructure:"log-level"`
	Title           string        `mapstructure:"title"`
	About           string        `mapstructure:"about"`
	ConfigPath      string        `mapstructure:"-"` // not from config file
}

// flagKeys lists the command-line flags that map onto config keys.
var flagKeys = []string{"server", "token", "stream", "commit"}

// loadConfig merges defaults, the config file, CARBONDASH_* environment
// variables and any flags set on cmd, in increasing precedence.
func loadConfig(configPath string, cmd *cobra.Command) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("server", model.DefaultServer)
	v.SetDefault("token", "")
	v.SetDefault("stream", "")
	v.SetDefault("commit", "")
	v.SetDefault("stream-limit", model.DefaultStreamLimit)
	v.SetDefault("branch-limit", model.DefaultBranchLimit)
	v.SetDefault("commit-limit", model.DefaultCommitLimit)
	v.SetDefault("request-timeout", model.DefaultRequestTimeout)
	v.SetDefault("max-retries", 0)
	v.SetDefault("duplicate-policy", "first-wins")
	v.SetDefault("branch-count", "reported")
	v.SetDefault("data-dir", ".")
	v.SetDefault("dataset-manifest", "")
	v.SetDefault("db-path", "")
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("api-port", defaultAPIPort)
	v.SetDefault("api-addr", "")
	v.SetDefault("log-file", "")
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("title", model.DefaultTitle)
	v.SetDefault("about", "")

	if cmd != nil {
		for _, key := range flagKeys {
			if f := cmd.Flags().Lookup(key); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return cfg, fmt.Errorf("binding flag %s: %w", key, err)
				}
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		defaultConfigPath := filepath.Join(home, ".config", "carbondash", "config.yml")
		v.SetConfigFile(defaultConfigPath)
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		cfg.ConfigPath = ""
	}

	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return cfg, fmt.Errorf("invalid api-port: %d", cfg.APIPort)
	}
	if cfg.StreamLimit < 0 || cfg.BranchLimit < 0 || cfg.CommitLimit < 0 {
		return cfg, errors.New("listing limits must not be negative")
	}
	if cfg.MaxRetries < 0 {
		return cfg, fmt.Errorf("invalid max-retries: %d", cfg.MaxRetries)
	}

	cfg.DBPath = expandHome(home, cfg.DBPath)
	cfg.DataDir = expandHome(home, cfg.DataDir)
	cfg.DatasetManifest = expandHome(home, cfg.DatasetManifest)
	cfg.LogFile = expandHome(home, cfg.LogFile)

	if cfg.APIAddr == "" {
		cfg.APIAddr = net.JoinHostPort(defaultBindHost, strconv.Itoa(cfg.APIPort))
	}

	return cfg, nil
}

func expandHome(home, path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
