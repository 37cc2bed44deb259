package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/words.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// Game pacing.
	RoundTimeout time.Duration `env:"ROUND_TIMEOUT" envDefault:"15s"`
	Countdown    time.Duration `env:"COUNTDOWN" envDefault:"3s"`
	WinThreshold int           `env:"WIN_THRESHOLD" envDefault:"10"`
	RoundCap     int           `env:"ROUND_CAP" envDefault:"30"`

	// Unjoined games are evicted after LobbyTTL.
	LobbyTTL time.Duration `env:"LOBBY_TTL" envDefault:"30m"`

	// Only words at or below this frequency rank are drawn; 0 disables
	// the filter.
	MaxWordRank int `env:"MAX_WORD_RANK" envDefault:"0"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
