package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the runtime settings of the six-cities client.
type Config struct {
	APIURL       string
	Timeout      time.Duration
	TokenFile    string
	LogFile      string
	LogLevel     string
	LogstashAddr string
	DefaultCity  string
}

const (
	defaultConfigPath = "~/.config/sixcities/config.toml"
	defaultAPIURL     = "https://14.design.htmlacademy.pro/six-cities"
	defaultTimeout    = 5 * time.Second
	defaultTokenFile  = "~/.local/state/sixcities/token.toml"
	defaultLogFile    = "~/.local/state/sixcities/sixcities.log"
	defaultLogLevel   = "info"
	defaultCity       = "Amsterdam"
)

// Environment variables that override file values.
const (
	EnvAPIURL       = "SIXCITIES_API_URL"
	EnvTimeout      = "SIXCITIES_TIMEOUT"
	EnvTokenFile    = "SIXCITIES_TOKEN_FILE"
	EnvLogFile      = "SIXCITIES_LOG_FILE"
	EnvLogLevel     = "SIXCITIES_LOG_LEVEL"
	EnvLogstashAddr = "SIXCITIES_LOGSTASH_ADDR"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:      defaultAPIURL,
		Timeout:     defaultTimeout,
		TokenFile:   mustExpand(defaultTokenFile),
		LogFile:     mustExpand(defaultLogFile),
		LogLevel:    defaultLogLevel,
		DefaultCity: defaultCity,
	}
}

// Load reads the config file at path (or the default location), loads a
// .env file next to it when present, and applies environment overrides.
// A missing config file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := cfg.readFile(resolved); err != nil {
		return Config{}, err
	}

	dotenv := filepath.Join(filepath.Dir(resolved), ".env")
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL       string `toml:"api_url"`
		Timeout      string `toml:"timeout"`
		TokenFile    string `toml:"token_file"`
		LogFile      string `toml:"log_file"`
		LogLevel     string `toml:"log_level"`
		LogstashAddr string `toml:"logstash_addr"`
		DefaultCity  string `toml:"default_city"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(raw.Timeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("parse config: invalid timeout %q", raw.Timeout)
		}
		c.Timeout = d
	}
	if v := strings.TrimSpace(raw.TokenFile); v != "" {
		c.TokenFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	c.LogstashAddr = strings.TrimSpace(raw.LogstashAddr)
	if v := strings.TrimSpace(raw.DefaultCity); v != "" {
		c.DefaultCity = v
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("%s: invalid duration %q", EnvTimeout, v)
		}
		c.Timeout = d
	}
	if v := getenv(EnvTokenFile); v != "" {
		c.TokenFile = mustExpand(v)
	}
	if v := getenv(EnvLogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := getenv(EnvLogstashAddr); v != "" {
		c.LogstashAddr = v
	}
	return nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
