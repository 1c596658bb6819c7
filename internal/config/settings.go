package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings are process-level knobs read from the environment and an optional
// .env file. Environment variables win over the file.
type Settings struct {
	Port         int           `mapstructure:"EOS_PORT"`
	JournalPath  string        `mapstructure:"EOS_JOURNAL_PATH"` // Empty = no journal
	Seed         int64         `mapstructure:"EOS_SEED"`         // 0 = random
	RulesPath    string        `mapstructure:"EOS_RULES_PATH"`   // Empty = stock rules
	TurnInterval time.Duration `mapstructure:"EOS_TURN_INTERVAL"`
	AdminKey     string        `mapstructure:"EOS_ADMIN_KEY"`
	LogLevel     string        `mapstructure:"EOS_LOG_LEVEL"`
	Players      string        `mapstructure:"EOS_PLAYERS"` // Comma-separated player IDs
}

var settingDefaults = map[string]any{
	"EOS_PORT":          8080,
	"EOS_JOURNAL_PATH":  "data/eos.db",
	"EOS_SEED":          0,
	"EOS_RULES_PATH":    "",
	"EOS_TURN_INTERVAL": "0s",
	"EOS_ADMIN_KEY":     "",
	"EOS_LOG_LEVEL":     "info",
	"EOS_PLAYERS":       "player1",
}

// LoadSettings reads settings from dir/.env (if present) and the environment.
func LoadSettings(dir string) (Settings, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigFile(dir + "/.env")
	v.SetConfigType("env")

	for k, val := range settingDefaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("read .env: %w", err)
		}
	}

	s := Settings{}
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return Settings{}, fmt.Errorf("invalid port %d", s.Port)
	}
	if s.TurnInterval < 0 {
		return Settings{}, fmt.Errorf("negative turn interval %s", s.TurnInterval)
	}
	return s, nil
}

// PlayerIDs splits the configured player list.
func (s Settings) PlayerIDs() []string {
	var out []string
	for _, p := range strings.Split(s.Players, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Level maps the configured log level to a slog level.
func (s Settings) Level() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
