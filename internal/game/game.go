// Package game defines the pure match state machine and its value types.
// It does no I/O and starts no goroutines of its own.
// All mutation happens through Session methods invoked by a single owner.
package game

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Defaults for a standard duel. The engine can override the threshold and
// cap per game for tests.
const (
	WinThreshold = 10
	RoundCap     = 30
	RoundTimeout = 15 * time.Second
	Countdown    = 3 * time.Second

	MaxNameLength = 24
)

// Word is an immutable catalog entry. Readings are already canonical
// (normalized hiragana); Normalize folds submissions into the same form.
type Word struct {
	ID       int64
	Kanji    string
	Readings []string
	Rank     int
}

// HasReading reports whether the normalized reading is accepted for this word.
func (w Word) HasReading(reading string) bool {
	for _, r := range w.Readings {
		if r == reading {
			return true
		}
	}
	return false
}

// Player is one of the two seats in a match.
type Player struct {
	ID        string
	Name      string
	Score     int
	Connected bool
	SkipVote  bool
	Rematch   bool
}

// Outcome is the sealed result of a round. A round starts Pending and is
// sealed exactly once; it never changes afterwards.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeWon
	OutcomeSkipped
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeWon:
		return "won"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeTimedOut:
		return "timed_out"
	}
	return "unknown"
}

// Round is one unit of play centered on a single word.
type Round struct {
	Index    int // 1-based
	Word     Word
	Deadline time.Time
	Outcome  Outcome
	Winner   string // player ID, set only when Outcome == OutcomeWon
}

// State is the lifecycle phase of a session.
type State int

const (
	StateWaitingForOpponent State = iota
	StateCountdown
	StateRoundActive
	StateRoundComplete
	StateGameOver
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateWaitingForOpponent:
		return "waiting_for_opponent"
	case StateCountdown:
		return "countdown"
	case StateRoundActive:
		return "round_active"
	case StateRoundComplete:
		return "round_complete"
	case StateGameOver:
		return "game_over"
	case StateAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// Terminal reports whether no further play is possible from s.
func (s State) Terminal() bool {
	return s == StateGameOver || s == StateAbandoned
}

// ValidName reports whether name is acceptable as a display name:
// non-empty after trimming and at most MaxNameLength runes.
func ValidName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && utf8.RuneCountInString(name) <= MaxNameLength
}
