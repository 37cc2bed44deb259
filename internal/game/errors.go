package game

import "errors"

var (
	// ErrInvalidName is returned when a display name is empty or too long.
	ErrInvalidName = errors.New("invalid player name")

	// ErrGameFull is returned when joining a session whose guest seat is taken.
	ErrGameFull = errors.New("game is full")

	// ErrNotInGame is returned when an event names a player the session
	// does not know.
	ErrNotInGame = errors.New("player not in game")

	// ErrBadTransition is returned when an operation is invoked in a state
	// that does not permit it. Preconditions are checked, never assumed.
	ErrBadTransition = errors.New("invalid state transition")
)
