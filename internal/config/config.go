// Package config loads serve settings from flags, BATTLESHIP_* environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"zkbattleship/internal/zk"
)

const EnvPrefix = "BATTLESHIP"

const (
	KeyListen         = "listen"
	KeyMetricsListen  = "metrics-listen"
	KeyDataDir        = "data-dir"
	KeyKeysDir        = "keys-dir"
	KeyBoardVK        = "board-vk"
	KeyHitVK          = "hit-vk"
	KeyHubURL         = "hub-url"
	KeyHubTimeout     = "hub-timeout"
	KeySelfIdentity   = "self-identity"
	KeyAdmin          = "admin"
	KeyLogLevel       = "log-level"
	KeyAllowedOrigins = "allowed-origins"
	KeyEventGames     = "event-games"
)

type Config struct {
	Listen         string
	MetricsListen  string
	DataDir        string // empty keeps state in memory
	KeysDir        string
	BoardVK        string
	HitVK          string
	HubURL         string // empty logs notifications instead of sending them
	HubTimeout     time.Duration
	SelfIdentity   string
	Admin          string // initializes a fresh store at startup when set
	LogLevel       zerolog.Level
	AllowedOrigins []string
	EventGames     int
}

// BindFlags declares every setting on fs with its default.
func BindFlags(fs *pflag.FlagSet) {
	fs.String(KeyListen, ":8080", "API listen address")
	fs.String(KeyMetricsListen, ":9090", "prometheus listen address, empty to disable")
	fs.String(KeyDataDir, "", "badger data directory, empty for an in-memory store")
	fs.String(KeyKeysDir, "./keys", "directory holding board.vk and hit.vk")
	fs.String(KeyBoardVK, "", "board verifying key file (default <keys-dir>/board.vk)")
	fs.String(KeyHitVK, "", "hit verifying key file (default <keys-dir>/hit.vk)")
	fs.String(KeyHubURL, "", "score registry base URL")
	fs.Duration(KeyHubTimeout, 5*time.Second, "score registry request timeout")
	fs.String(KeySelfIdentity, "battleship-host", "identity reported to the score registry")
	fs.String(KeyAdmin, "", "admin identity to initialize a fresh store with")
	fs.String(KeyLogLevel, "info", "log level")
	fs.StringSlice(KeyAllowedOrigins, []string{"*"}, "CORS allowed origins")
	fs.Int(KeyEventGames, 1024, "number of games whose recent events are kept")
}

// Load resolves the settings. file may be empty.
func Load(v *viper.Viper, fs *pflag.FlagSet, file string) (*Config, error) {
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config %s: %w", file, err)
		}
	}

	level, err := zerolog.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}
	c := &Config{
		Listen:         v.GetString(KeyListen),
		MetricsListen:  v.GetString(KeyMetricsListen),
		DataDir:        v.GetString(KeyDataDir),
		KeysDir:        v.GetString(KeyKeysDir),
		BoardVK:        v.GetString(KeyBoardVK),
		HitVK:          v.GetString(KeyHitVK),
		HubURL:         v.GetString(KeyHubURL),
		HubTimeout:     v.GetDuration(KeyHubTimeout),
		SelfIdentity:   v.GetString(KeySelfIdentity),
		Admin:          v.GetString(KeyAdmin),
		LogLevel:       level,
		AllowedOrigins: v.GetStringSlice(KeyAllowedOrigins),
		EventGames:     v.GetInt(KeyEventGames),
	}
	if c.BoardVK == "" {
		_, c.BoardVK = zk.KeyPaths(c.KeysDir, zk.BoardKeyName)
	}
	if c.HitVK == "" {
		_, c.HitVK = zk.KeyPaths(c.KeysDir, zk.HitKeyName)
	}
	return c, c.Validate()
}

func (c *Config) Validate() error {
	switch {
	case c.Listen == "":
		return errors.New("listen address is required")
	case c.SelfIdentity == "":
		return errors.New("self identity is required")
	case c.HubTimeout <= 0:
		return fmt.Errorf("%s must be positive", KeyHubTimeout)
	case c.EventGames <= 0:
		return fmt.Errorf("%s must be positive", KeyEventGames)
	}
	return nil
}
