package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	appName           = "keepview"
	defaultConfigName = "keepview.yaml"
	defaultLogName    = "keepview.log"
	configPathEnv     = "KEEPVIEW_CONFIG"

	minCacheSize = 1
	maxCacheSize = 64
)

var errConfigRead = errors.New("failed to read config file")

// Config is read from YAML and never written back.
type Config struct {
	KeepDir        string              `yaml:"keep_dir"`
	PollInterval   time.Duration       `yaml:"poll_interval"`
	SortMethod     string              `yaml:"sort_method"`
	CacheSize      int                 `yaml:"cache_size"`
	SkipUnreadable bool                `yaml:"skip_unreadable"`
	ShowInfo       bool                `yaml:"show_info"`
	Fullscreen     bool                `yaml:"fullscreen"`
	Backend        string              `yaml:"backend"`
	LogLevel       string              `yaml:"log_level"`
	Keybindings    map[string][]string `yaml:"keybindings"`
}

// ConfigLoadResult contains the result of loading configuration
type ConfigLoadResult struct {
	Config   Config
	Path     string
	Warnings []string
	Status   string // "OK", "Default", "Warning", "Error"
}

func defaultConfig() Config {
	return Config{
		KeepDir:      defaultKeepDir,
		PollInterval: defaultPollInterval,
		SortMethod:   SortNatural,
		CacheSize:    defaultCacheSize,
		Backend:      BackendAuto,
		LogLevel:     "info",
		Keybindings:  GetDefaultKeybindings(),
	}
}

// configPath resolves the config file: $KEEPVIEW_CONFIG, then the XDG config dir.
func configPath() string {
	if p := os.Getenv(configPathEnv); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, appName, defaultConfigName)
}

// loadConfig loads .env from the working directory, then the config file.
func loadConfig(path string) ConfigLoadResult {
	if err := godotenv.Load(); err != nil {
		slog.Debug("Could not load .env file", slog.String("error", err.Error()))
	}
	if path == "" {
		path = configPath()
	}
	return loadConfigFromPath(path)
}

func loadConfigFromPath(path string) ConfigLoadResult {
	result := ConfigLoadResult{
		Config:   defaultConfig(),
		Path:     path,
		Warnings: []string{},
		Status:   "OK",
	}

	inFile, err := os.Open(path)
	if err != nil {
		// Config file not found is not an error - use defaults
		result.Status = "Default"
		return result
	}
	defer func(closer io.Closer) {
		if err := closer.Close(); err != nil {
			slog.Error("Failed to close config file", slog.String("error", err.Error()))
		}
	}(inFile)

	config := defaultConfig()
	// Let the file replace the default keybindings map rather than merge into it.
	config.Keybindings = nil
	if err := yaml.NewDecoder(inFile).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		result.Status = "Error"
		result.Warnings = append(result.Warnings, errors.Join(err, errConfigRead).Error())
		return result
	}

	result.Config = validateConfig(config, &result)
	return result
}

// validateConfig clamps or resets out of range values, recording a warning for each.
func validateConfig(config Config, result *ConfigLoadResult) Config {
	warn := func(format string, args ...any) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(format, args...))
		result.Status = "Warning"
	}

	if strings.TrimSpace(config.KeepDir) == "" {
		config.KeepDir = defaultKeepDir
	}

	switch {
	case config.PollInterval == 0:
		config.PollInterval = defaultPollInterval
	case config.PollInterval < minPollInterval:
		warn("poll_interval %s below %s", config.PollInterval, minPollInterval)
		config.PollInterval = minPollInterval
	case config.PollInterval > maxPollInterval:
		warn("poll_interval %s above %s", config.PollInterval, maxPollInterval)
		config.PollInterval = maxPollInterval
	}

	if _, err := GetSortStrategy(config.SortMethod); err != nil {
		warn("%v", err)
		config.SortMethod = SortNatural
	}

	switch {
	case config.CacheSize == 0:
		config.CacheSize = defaultCacheSize
	case config.CacheSize < minCacheSize:
		warn("cache_size %d below %d", config.CacheSize, minCacheSize)
		config.CacheSize = minCacheSize
	case config.CacheSize > maxCacheSize:
		warn("cache_size %d above %d", config.CacheSize, maxCacheSize)
		config.CacheSize = maxCacheSize
	}

	switch config.Backend {
	case "":
		config.Backend = BackendAuto
	case BackendAuto, BackendEbiten, BackendKitty:
	default:
		warn("unknown backend %q", config.Backend)
		config.Backend = BackendAuto
	}

	if _, err := parseLogLevel(config.LogLevel); err != nil {
		warn("%v", err)
		config.LogLevel = "info"
	}

	// Fill in missing keybindings with defaults
	if config.Keybindings == nil {
		config.Keybindings = GetDefaultKeybindings()
	} else {
		for action, defaultKeys := range GetDefaultKeybindings() {
			if _, exists := config.Keybindings[action]; !exists {
				config.Keybindings[action] = defaultKeys
			}
		}

		if err := validateKeybindings(config.Keybindings); err != nil {
			warn("keybinding errors, using defaults: %v", err)
			config.Keybindings = GetDefaultKeybindings()
		}
	}

	return config
}
