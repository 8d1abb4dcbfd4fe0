// Package config reads runtime settings from the environment, after
// loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultAPIURL      = "http://127.0.0.1:8000"
	DefaultHTTPTimeout = 5 * time.Second
)

// Store backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	APIURL      string
	DataDir     string
	Store       string
	DatabaseURL string
	BridgeAddr  string // empty disables the bridge
	HTTPTimeout time.Duration
	Audio       bool
	LogLevel    zapcore.Level
	LogFile     string
}

// Load reads the given dotenv files (".env" when none are named) and then
// the environment. Variables already set win over dotenv values.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv. It does not touch the filesystem.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		APIURL:      strings.TrimRight(get("MINDMAZE_API_URL", DefaultAPIURL), "/"),
		DataDir:     get("MINDMAZE_DATA_DIR", ""),
		Store:       strings.ToLower(get("MINDMAZE_STORE", StoreFile)),
		DatabaseURL: get("MINDMAZE_DATABASE_URL", ""),
		BridgeAddr:  get("MINDMAZE_BRIDGE_ADDR", ""),
		HTTPTimeout: DefaultHTTPTimeout,
		LogFile:     get("MINDMAZE_LOG_FILE", ""),
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Config{}, fmt.Errorf("MINDMAZE_API_URL: %q is not an http(s) URL", cfg.APIURL)
	}

	if cfg.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("MINDMAZE_DATA_DIR unset and no user config dir: %w", err)
		}
		cfg.DataDir = filepath.Join(base, "mindmaze")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "mindmaze.log")
	}

	switch cfg.Store {
	case StoreFile, StoreMemory:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("MINDMAZE_STORE=postgres needs MINDMAZE_DATABASE_URL")
		}
	default:
		return Config{}, fmt.Errorf("MINDMAZE_STORE: unknown backend %q", cfg.Store)
	}

	if v := get("MINDMAZE_HTTP_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("MINDMAZE_HTTP_TIMEOUT: %q is not a positive duration", v)
		}
		cfg.HTTPTimeout = d
	}

	switch strings.ToLower(get("MINDMAZE_AUDIO", "on")) {
	case "on", "true", "1", "yes":
		cfg.Audio = true
	case "off", "false", "0", "no":
		cfg.Audio = false
	default:
		return Config{}, fmt.Errorf("MINDMAZE_AUDIO: want on or off, got %q", getenv("MINDMAZE_AUDIO"))
	}

	lvl, err := zapcore.ParseLevel(get("MINDMAZE_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("MINDMAZE_LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = lvl

	return cfg, nil
}

// ProgressFile is where the file store keeps progress and preferences.
func (c Config) ProgressFile() string {
	return filepath.Join(c.DataDir, "store.json")
}
