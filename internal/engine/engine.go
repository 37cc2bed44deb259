// Package engine hosts the live side of a match: the single-owner game
// actor, the code→game registry, and the lobby reaper. All mutation of a
// session happens on its game's goroutine; connection handlers only post
// events and read from their outbound channel.
package engine

import (
	"errors"
	"time"

	"github.com/kanjiduel/api/internal/game"
)

// ErrGameNotFound is returned for unknown, expired, or torn-down game codes.
var ErrGameNotFound = errors.New("game not found")

// Config carries the engine tunables. Zero values fall back to defaults.
type Config struct {
	RoundTimeout time.Duration
	Countdown    time.Duration
	WinThreshold int
	RoundCap     int
	MaxWordRank  int // 0 = no difficulty filter
	LobbyTTL     time.Duration
	ReapInterval time.Duration
}

// DefaultConfig returns the standard duel parameters.
func DefaultConfig() Config {
	return Config{
		RoundTimeout: game.RoundTimeout,
		Countdown:    game.Countdown,
		WinThreshold: game.WinThreshold,
		RoundCap:     game.RoundCap,
		LobbyTTL:     30 * time.Minute,
		ReapInterval: time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RoundTimeout <= 0 {
		c.RoundTimeout = d.RoundTimeout
	}
	if c.Countdown <= 0 {
		c.Countdown = d.Countdown
	}
	if c.WinThreshold <= 0 {
		c.WinThreshold = d.WinThreshold
	}
	if c.RoundCap <= 0 {
		c.RoundCap = d.RoundCap
	}
	if c.LobbyTTL <= 0 {
		c.LobbyTTL = d.LobbyTTL
	}
	if c.ReapInterval <= 0 {
		c.ReapInterval = d.ReapInterval
	}
	return c
}
