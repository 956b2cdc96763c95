package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AppName = "switch-mod-downloader"

	DefaultEmulator               = "yuzu"
	DefaultRepository             = "exefer/switch-port-mods"
	DefaultBranch                 = "master"
	DefaultUserAgent              = AppName
	DefaultMaxConcurrentDownloads = 8
)

// Emulators lists the emulator names whose directory layout is understood.
var Emulators = []string{"yuzu", "suyu", "eden", "citron", "torzu", "sudachi"}

// Repositories are the known mod repositories offered by the repos command.
// Any owner/name slug is accepted.
var Repositories = []string{
	"exefer/switch-port-mods",
	"exefer/switch-pchtxt-mods",
	"exefer/Switch-Ultrawide-Mods",
	"exefer/ue4-emuswitch-60fps",
}

var repoSlug = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// Config holds all configuration for the application.
// Values are loaded by Viper from a .env file, environment variables and bound flags.
type Config struct {
	Emulator               string        `mapstructure:"EMULATOR"`
	Repository             string        `mapstructure:"REPOSITORY"`
	Branch                 string        `mapstructure:"BRANCH"`
	UserAgent              string        `mapstructure:"USERAGENT"`
	GitHubToken            string        `mapstructure:"GITHUB_TOKEN"`
	MaxConcurrentDownloads int           `mapstructure:"MAX_CONCURRENT_DOWNLOADS"`
	DownloadRateLimit      float64       `mapstructure:"DOWNLOAD_RATE_LIMIT"` // requests per second, 0 = unlimited
	HTTPTimeout            time.Duration `mapstructure:"HTTP_TIMEOUT"`        // 0 = no timeout
	DatabasePath           string        `mapstructure:"DATABASE_PATH"`
}

var keys = []string{
	"EMULATOR",
	"REPOSITORY",
	"BRANCH",
	"USERAGENT",
	"GITHUB_TOKEN",
	"MAX_CONCURRENT_DOWNLOADS",
	"DOWNLOAD_RATE_LIMIT",
	"HTTP_TIMEOUT",
	"DATABASE_PATH",
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		slog.Debug("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	viper.AutomaticEnv()
	for _, key := range keys {
		if err := viper.BindEnv(strings.ToLower(key), key); err != nil {
			slog.Warn("Unable to bind env var", "key", key, "error", err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", err)
	}

	processConfigDefaults(&config)

	if err := validate(&config); err != nil {
		return Config{}, err
	}
	if err := ensureDatabaseDir(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

func processConfigDefaults(cfg *Config) {
	cfg.Emulator = strings.ToLower(strings.TrimSpace(cfg.Emulator))
	if cfg.Emulator == "" {
		cfg.Emulator = DefaultEmulator
	}
	if cfg.Repository == "" {
		cfg.Repository = DefaultRepository
	}
	if cfg.Branch == "" {
		cfg.Branch = DefaultBranch
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	// An explicit 0 means unbounded, so only default when the key was never given.
	if cfg.MaxConcurrentDownloads == 0 && !viper.IsSet("max_concurrent_downloads") {
		cfg.MaxConcurrentDownloads = DefaultMaxConcurrentDownloads
	}
}

func validate(cfg *Config) error {
	if !slices.Contains(Emulators, cfg.Emulator) {
		return fmt.Errorf("unknown emulator %q, expected one of %s", cfg.Emulator, strings.Join(Emulators, ", "))
	}
	if !repoSlug.MatchString(cfg.Repository) {
		return fmt.Errorf("repository %q is not of the form owner/name", cfg.Repository)
	}
	if cfg.DownloadRateLimit < 0 {
		return fmt.Errorf("DOWNLOAD_RATE_LIMIT must not be negative, got %v", cfg.DownloadRateLimit)
	}
	if cfg.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must not be negative, got %s", cfg.HTTPTimeout)
	}
	return nil
}

// ensureDatabaseDir derives DatabasePath when unset and makes sure its directory exists.
func ensureDatabaseDir(cfg *Config) error {
	if cfg.DatabasePath == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return fmt.Errorf("resolve user cache dir: %w", err)
		}
		cfg.DatabasePath = filepath.Join(cacheDir, AppName, "history.db")
	}

	dir := filepath.Dir(cfg.DatabasePath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		slog.Info("Database directory does not exist, creating it", "path", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create database directory %s: %w", dir, err)
		}
	} else if err != nil {
		return fmt.Errorf("check database directory %s: %w", dir, err)
	}
	return nil
}
