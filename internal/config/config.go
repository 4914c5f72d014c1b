package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Render    RenderConfig    `yaml:"render"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type RenderConfig struct {
	Width    int    `yaml:"width"`
	Language string `yaml:"language"`
	FontDir  string `yaml:"font_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// MinRenderWidth keeps the table text legible.
const MinRenderWidth = 600

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Tailscale: TailscaleConfig{
			Hostname: "trainingload",
			StateDir: "/var/lib/trainingload/tsnet",
		},
		Render: RenderConfig{Width: 1200, Language: "en"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads config from a YAML file on top of Default, then applies
// environment variable overrides. Env vars use the prefix TRAININGLOAD_:
//
//	TRAININGLOAD_SERVER_HOST, TRAININGLOAD_SERVER_PORT,
//	TRAININGLOAD_TAILSCALE_ENABLED, TRAININGLOAD_TAILSCALE_HOSTNAME,
//	TRAININGLOAD_TAILSCALE_STATE_DIR,
//	TRAININGLOAD_RENDER_WIDTH, TRAININGLOAD_RENDER_LANGUAGE,
//	TRAININGLOAD_RENDER_FONT_DIR, TRAININGLOAD_LOG_LEVEL
//
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRAININGLOAD_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("TRAININGLOAD_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TRAININGLOAD_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("TRAININGLOAD_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("TRAININGLOAD_TAILSCALE_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
	if v := os.Getenv("TRAININGLOAD_RENDER_WIDTH"); v != "" {
		if width, err := strconv.Atoi(v); err == nil {
			cfg.Render.Width = width
		}
	}
	if v := os.Getenv("TRAININGLOAD_RENDER_LANGUAGE"); v != "" {
		cfg.Render.Language = v
	}
	if v := os.Getenv("TRAININGLOAD_RENDER_FONT_DIR"); v != "" {
		cfg.Render.FontDir = v
	}
	if v := os.Getenv("TRAININGLOAD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Render.Width == 0 {
		c.Render.Width = 1200
	}
	if c.Render.Width < MinRenderWidth {
		return fmt.Errorf("render.width must be at least %d, got %d", MinRenderWidth, c.Render.Width)
	}
	switch c.Render.Language {
	case "":
		c.Render.Language = "en"
	case "en", "nl":
	default:
		return fmt.Errorf("render.language must be en or nl, got %q", c.Render.Language)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level %q is not one of debug, info, warn, error", s)
	}
}
